package customers

import (
	"unicode/utf8"

	"kyc-dashboard.gomodule/typespec/common"
)

type CustomerStatus string

const (
	CustomerStatusPending  CustomerStatus = "PENDING"
	CustomerStatusVerified CustomerStatus = "VERIFIED"
	CustomerStatusRejected CustomerStatus = "REJECTED"
)

var ErrCustomerStatusInvalid = common.NewRule("customer_status_invalid", "must be PENDING, VERIFIED, or REJECTED")

const queryMaxLength = 128

var ErrQueryTooLong = common.NewRule("query_too_long", "must be at most 128 characters")

// FilterCustomersRequest is the request body for POST /admin/filter-customers.
type FilterCustomersRequest struct {
	Query         string         `json:"query,omitempty"`
	Status        CustomerStatus `json:"status,omitempty"`
	PaginationKey string         `json:"paginationKey,omitempty"`
}

func (r FilterCustomersRequest) Validate() []common.ValidationError {
	var errs []common.ValidationError

	if utf8.RuneCountInString(r.Query) > queryMaxLength {
		errs = append(errs, common.NewValidationError("query", ErrQueryTooLong))
	}
	switch r.Status {
	case "", CustomerStatusPending, CustomerStatusVerified, CustomerStatusRejected:
	default:
		errs = append(errs, common.NewValidationError("status", ErrCustomerStatusInvalid))
	}
	if err := common.ValidatePaginationKey(r.PaginationKey); err != nil {
		errs = append(errs, common.NewValidationError("paginationKey", err))
	}

	return errs
}

// GetCustomerRequest is the request body for POST /admin/get-customer.
type GetCustomerRequest struct {
	CustomerID common.CustomerID `json:"customerId"`
}

func (r GetCustomerRequest) Validate() []common.ValidationError {
	var errs []common.ValidationError
	if err := r.CustomerID.Validate(); err != nil {
		errs = append(errs, common.NewValidationError("customerId", err))
	}
	return errs
}

type Customer struct {
	CustomerID  common.CustomerID `json:"customerId"`
	FullName    string            `json:"fullName"`
	Email       string            `json:"email,omitempty"`
	Status      CustomerStatus    `json:"status"`
	CountryCode string            `json:"countryCode,omitempty"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
}
