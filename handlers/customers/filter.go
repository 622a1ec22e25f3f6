package customers

import (
	"encoding/json"
	"net/http"

	"kyc-dashboard.gomodule/internal/proxy"
	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/typespec/customers"
)

// FilterCustomers handles POST /admin/filter-customers
func FilterCustomers(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := s.Logger(ctx)

		bodyBytes, err := proxy.BufferBody(r)
		if err != nil {
			log.Debug("failed to read request body", "error", err)
			http.Error(w, "", http.StatusBadRequest)
			return
		}

		var req customers.FilterCustomersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Debug("failed to decode request", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if errs := req.Validate(); len(errs) > 0 {
			log.Debug("validation failed", "errors", errs)
			w.Header().Set("Content-Type", "application/json")
			server.WriteValidationErrors(w, r, errs)
			return
		}

		proxy.ToBackend(w, r, log, s.Backend.BaseURL(), "/v1/customers/search", bodyBytes, s.Backend.Authorize)
	}
}
