package reverification

import (
	"encoding/json"
	"net/http"

	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/typespec/reverification"
)

// ListReverificationTypes handles POST /admin/list-reverification-types
func ListReverificationTypes(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx := r.Context()
		log := s.Logger(ctx)

		var req reverification.ListReverificationTypesRequest
		if err := server.DecodeJSON(r, &req); err != nil {
			log.Debug("failed to decode request", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		catalog, err := s.Catalog(ctx, req.Refresh)
		if err != nil {
			log.Error("failed to load verification types", "error", err)
			http.Error(w, "", http.StatusBadGateway)
			return
		}

		json.NewEncoder(w).Encode(reverification.ListReverificationTypesResponse{Types: catalog})
	}
}
