package reverification

import (
	"encoding/json"
	"net/http"
	"net/url"

	"kyc-dashboard.gomodule/internal/proxy"
	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/typespec/reverification"
)

type listReverificationsBody struct {
	PaginationKey string `json:"paginationKey,omitempty"`
}

// ListReverifications handles POST /admin/list-reverifications. The request
// is validated here and the page is served by the backend as-is.
func ListReverifications(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := s.Logger(ctx)

		var req reverification.ListReverificationsRequest
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

		body, err := json.Marshal(listReverificationsBody{PaginationKey: req.PaginationKey})
		if err != nil {
			log.Error("failed to encode backend body", "error", err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		path := "/v1/customers/" + url.PathEscape(string(req.CustomerID)) + "/reverifications/list"
		proxy.ToBackend(w, r, log, s.Backend.BaseURL(), path, body, s.Backend.Authorize)
	}
}
