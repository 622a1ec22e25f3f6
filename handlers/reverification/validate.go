package reverification

import (
	"encoding/json"
	"net/http"

	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/typespec/reverification"
)

// ValidateReverification handles POST /admin/validate-reverification
func ValidateReverification(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx := r.Context()
		log := s.Logger(ctx)

		var req reverification.ValidateReverificationRequest
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

		catalog, err := s.Catalog(ctx, false)
		if err != nil {
			log.Error("failed to load verification types", "error", err)
			http.Error(w, "", http.StatusBadGateway)
			return
		}

		payload, errs := s.Validator(catalog).Validate(req.Draft)
		if len(errs) > 0 {
			log.Debug("draft validation failed", "errors", errs)
			server.WriteValidationErrors(w, r, errs)
			return
		}

		json.NewEncoder(w).Encode(reverification.ValidateReverificationResponse{Payload: payload})
	}
}
