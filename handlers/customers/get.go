package customers

import (
	"encoding/json"
	"net/http"

	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/typespec/customers"
)

// GetCustomer handles POST /admin/get-customer
func GetCustomer(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx := r.Context()
		log := s.Logger(ctx)

		var req customers.GetCustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Debug("failed to decode request", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if errs := req.Validate(); len(errs) > 0 {
			log.Debug("validation failed", "errors", errs)
			server.WriteValidationErrors(w, r, errs)
			return
		}

		customer, err := s.Backend.GetCustomer(ctx, string(req.CustomerID))
		if err != nil {
			s.WriteBackendError(w, r, err)
			return
		}

		json.NewEncoder(w).Encode(customer)
	}
}
