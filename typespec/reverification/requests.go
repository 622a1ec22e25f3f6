package reverification

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"kyc-dashboard.gomodule/typespec/common"
)

type CancelRequestType string

const (
	CancelRequestTypeRequest        CancelRequestType = "CANCEL_REQUEST"
	CancelRequestTypeNextOccurrence CancelRequestType = "CANCEL_NEXT_OCCURRENCE"
)

var (
	ErrCancelRequestTypeInvalid       = common.NewRule("cancel_request_type_invalid", "must be CANCEL_REQUEST or CANCEL_NEXT_OCCURRENCE")
	ErrReverificationRequestIDMissing = common.NewRule("reverification_request_id_required", "Reverification request is required")
)

// ListReverificationTypesRequest is the request body for POST /admin/list-reverification-types.
type ListReverificationTypesRequest struct {
	// Refresh bypasses the catalog cache.
	Refresh bool `json:"refresh,omitempty"`
}

type ListReverificationTypesResponse struct {
	Types Catalog `json:"types"`
}

// ReverificationFormRequest is the request body for POST /admin/reverification-form.
// Without an edit the draft is only viewed and validated.
type ReverificationFormRequest struct {
	Draft Draft `json:"draft"`
	Edit  *Edit `json:"edit,omitempty"`
}

type ReverificationFormResponse = EditResult

// ValidateReverificationRequest is the request body for POST /admin/validate-reverification.
type ValidateReverificationRequest struct {
	CustomerID common.CustomerID `json:"customerId"`
	Draft      Draft             `json:"draft"`
}

func (r ValidateReverificationRequest) Validate() []common.ValidationError {
	var errs []common.ValidationError
	if err := r.CustomerID.Validate(); err != nil {
		errs = append(errs, common.NewValidationError("customerId", err))
	}
	return errs
}

type ValidateReverificationResponse struct {
	Payload Payload `json:"payload"`
}

// RequestReverificationRequest is the request body for POST /admin/request-reverification.
type RequestReverificationRequest struct {
	CustomerID common.CustomerID `json:"customerId"`
	Draft      Draft             `json:"draft"`
}

func (r RequestReverificationRequest) Validate() []common.ValidationError {
	var errs []common.ValidationError
	if err := r.CustomerID.Validate(); err != nil {
		errs = append(errs, common.NewValidationError("customerId", err))
	}
	return errs
}

type RequestReverificationResponse struct {
	ReverificationRequestID string `json:"reverificationRequestId"`
	Status                  string `json:"status,omitempty"`
}

// CancelReverificationRequest is the request body for POST /admin/cancel-reverification.
type CancelReverificationRequest struct {
	CustomerID              common.CustomerID `json:"customerId"`
	ReverificationRequestID string            `json:"reverificationRequestId"`
	CancelRequestType       CancelRequestType `json:"cancelRequestType"`
}

func (r CancelReverificationRequest) Validate() []common.ValidationError {
	var errs []common.ValidationError

	if err := r.CustomerID.Validate(); err != nil {
		errs = append(errs, common.NewValidationError("customerId", err))
	}
	if r.ReverificationRequestID == "" {
		errs = append(errs, common.NewValidationError("reverificationRequestId", ErrReverificationRequestIDMissing))
	}
	switch r.CancelRequestType {
	case CancelRequestTypeRequest, CancelRequestTypeNextOccurrence:
	case "":
		errs = append(errs, common.NewValidationError("cancelRequestType", common.ErrRequired))
	default:
		errs = append(errs, common.NewValidationError("cancelRequestType", ErrCancelRequestTypeInvalid))
	}

	return errs
}

// CancelBody is the wire body the backend accepts for a cancellation.
type CancelBody struct {
	CancelRequestType CancelRequestType `json:"cancelRequestType"`
}

type CancelReverificationResponse struct {
	Status string `json:"status,omitempty"`
}

// ListReverificationsRequest is the request body for POST /admin/list-reverifications.
type ListReverificationsRequest struct {
	CustomerID    common.CustomerID `json:"customerId"`
	PaginationKey string            `json:"paginationKey,omitempty"`
}

func (r ListReverificationsRequest) Validate() []common.ValidationError {
	var errs []common.ValidationError
	if err := r.CustomerID.Validate(); err != nil {
		errs = append(errs, common.NewValidationError("customerId", err))
	}
	if err := common.ValidatePaginationKey(r.PaginationKey); err != nil {
		errs = append(errs, common.NewValidationError("paginationKey", err))
	}
	return errs
}

const (
	AuditListDefaultLimit = 20
	AuditListMaxLimit     = 100
)

var (
	ErrAuditLimitInvalid         = common.NewRule("audit_limit_invalid", "must be between 1 and 100")
	ErrAuditPaginationKeyInvalid = common.NewRule("audit_pagination_key_invalid", "must be a key returned by a previous call")
)

// AuditCursor is the position after which the next audit page starts. It
// carries the sort key itself so a page can be continued after the row it
// was taken from has been pruned.
type AuditCursor struct {
	CreatedAt time.Time
	AuditID   uuid.UUID
}

var errMalformedCursor = errors.New("malformed audit cursor")

// Encode returns the opaque pagination key for c.
func (c AuditCursor) Encode() string {
	raw := strconv.FormatInt(c.CreatedAt.UnixMicro(), 10) + ":" + c.AuditID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseAuditCursor decodes a key produced by AuditCursor.Encode.
func ParseAuditCursor(key string) (AuditCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return AuditCursor{}, errMalformedCursor
	}
	micros, id, ok := strings.Cut(string(raw), ":")
	if !ok {
		return AuditCursor{}, errMalformedCursor
	}
	us, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return AuditCursor{}, errMalformedCursor
	}
	auditID, err := uuid.Parse(id)
	if err != nil {
		return AuditCursor{}, errMalformedCursor
	}
	return AuditCursor{CreatedAt: time.UnixMicro(us).UTC(), AuditID: auditID}, nil
}

// ListReverificationAuditRequest is the request body for POST /admin/list-reverification-audit.
type ListReverificationAuditRequest struct {
	CustomerID    common.CustomerID `json:"customerId"`
	PaginationKey string            `json:"paginationKey,omitempty"`
	Limit         *int32            `json:"limit,omitempty"`
}

func (r ListReverificationAuditRequest) Validate() []common.ValidationError {
	var errs []common.ValidationError
	if err := r.CustomerID.Validate(); err != nil {
		errs = append(errs, common.NewValidationError("customerId", err))
	}
	if r.PaginationKey != "" {
		if _, err := ParseAuditCursor(r.PaginationKey); err != nil {
			errs = append(errs, common.NewValidationError("paginationKey", ErrAuditPaginationKeyInvalid))
		}
	}
	if r.Limit != nil && (*r.Limit < 1 || *r.Limit > AuditListMaxLimit) {
		errs = append(errs, common.NewValidationError("limit", ErrAuditLimitInvalid))
	}
	return errs
}

// EffectiveLimit returns the requested page size or the default.
func (r ListReverificationAuditRequest) EffectiveLimit() int32 {
	if r.Limit == nil {
		return AuditListDefaultLimit
	}
	return *r.Limit
}

// AuditEntry is one recorded submission or cancellation.
type AuditEntry struct {
	AuditID                 string          `json:"auditId"`
	RequestID               string          `json:"requestId"`
	CustomerID              string          `json:"customerId"`
	Action                  string          `json:"action"`
	ReverificationRequestID string          `json:"reverificationRequestId,omitempty"`
	Payload                 json.RawMessage `json:"payload,omitempty"`
	Outcome                 string          `json:"outcome"`
	ErrorMessage            string          `json:"errorMessage,omitempty"`
	CreatedAt               string          `json:"createdAt"`
	CompletedAt             string          `json:"completedAt,omitempty"`
}

type ListReverificationAuditResponse struct {
	Entries           []AuditEntry `json:"entries"`
	NextPaginationKey string       `json:"nextPaginationKey,omitempty"`
}
