package reverification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"kyc-dashboard.gomodule/internal/db/dashboarddb"
	"kyc-dashboard.gomodule/internal/middleware"
	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/typespec/reverification"
)

var cancelActions = map[reverification.CancelRequestType]dashboarddb.AuditAction{
	reverification.CancelRequestTypeRequest:        dashboarddb.AuditActionCancelRequest,
	reverification.CancelRequestTypeNextOccurrence: dashboarddb.AuditActionCancelNextOccurrence,
}

// CancelReverification handles POST /admin/cancel-reverification
func CancelReverification(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx := r.Context()
		log := s.Logger(ctx)

		var req reverification.CancelReverificationRequest
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

		body := reverification.CancelBody{CancelRequestType: req.CancelRequestType}
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			log.Error("failed to encode cancel body", "error", err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		entry, err := s.Audit.CreateAuditEntry(ctx, dashboarddb.CreateAuditEntryParams{
			AuditID:                 uuid.New(),
			RequestID:               middleware.RequestIDFromContext(ctx),
			CustomerID:              string(req.CustomerID),
			Action:                  cancelActions[req.CancelRequestType],
			ReverificationRequestID: pgtype.Text{String: req.ReverificationRequestID, Valid: true},
			Payload:                 bodyJSON,
		})
		if err != nil {
			log.Error("failed to create audit entry", "error", err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		err = s.Backend.CancelReverification(ctx, string(req.CustomerID), req.ReverificationRequestID, body)
		completeCtx := context.WithoutCancel(ctx)
		if err != nil {
			completeAudit(completeCtx, s, entry.AuditID, dashboarddb.AuditOutcomeFailed, "", err.Error())
			s.WriteBackendError(w, r, err)
			return
		}
		completeAudit(completeCtx, s, entry.AuditID, dashboarddb.AuditOutcomeSubmitted, "", "")

		log.Info("reverification cancelled",
			"customer_id", req.CustomerID,
			"reverification_request_id", req.ReverificationRequestID,
			"cancel_request_type", req.CancelRequestType)

		json.NewEncoder(w).Encode(reverification.CancelReverificationResponse{Status: "CANCELLED"})
	}
}
