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

// RequestReverification handles POST /admin/request-reverification.
// The draft is validated, recorded as a pending audit entry and submitted to
// the backend. A failed submission leaves the draft with the caller, who may
// resubmit.
func RequestReverification(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx := r.Context()
		log := s.Logger(ctx)

		var req reverification.RequestReverificationRequest
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

		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			log.Error("failed to encode payload", "error", err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		idempotencyKey := uuid.New()
		entry, err := s.Audit.CreateAuditEntry(ctx, dashboarddb.CreateAuditEntryParams{
			AuditID:        uuid.New(),
			RequestID:      middleware.RequestIDFromContext(ctx),
			CustomerID:     string(req.CustomerID),
			Action:         dashboarddb.AuditActionRequest,
			IdempotencyKey: pgtype.UUID{Bytes: idempotencyKey, Valid: true},
			Payload:        payloadJSON,
		})
		if err != nil {
			log.Error("failed to create audit entry", "error", err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		res, err := s.Backend.CreateReverification(ctx, string(req.CustomerID), payload, idempotencyKey)

		// The backend outcome is recorded even if the caller has gone away.
		completeCtx := context.WithoutCancel(ctx)
		if err != nil {
			completeAudit(completeCtx, s, entry.AuditID, dashboarddb.AuditOutcomeFailed, "", err.Error())
			s.WriteBackendError(w, r, err)
			return
		}
		completeAudit(completeCtx, s, entry.AuditID, dashboarddb.AuditOutcomeSubmitted, res.ID, "")

		log.Info("reverification requested",
			"customer_id", req.CustomerID,
			"reverification_request_id", res.ID,
			"frequency", payload.Frequency())

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(reverification.RequestReverificationResponse{
			ReverificationRequestID: res.ID,
			Status:                  res.Status,
		})
	}
}

// completeAudit closes an audit entry. Failures are logged, never returned.
func completeAudit(ctx context.Context, s *server.Server, auditID uuid.UUID, outcome dashboarddb.AuditOutcome, requestID, message string) {
	err := s.Audit.CompleteAuditEntry(ctx, dashboarddb.CompleteAuditEntryParams{
		AuditID:                 auditID,
		Outcome:                 outcome,
		ReverificationRequestID: pgtype.Text{String: requestID, Valid: requestID != ""},
		ErrorMessage:            pgtype.Text{String: message, Valid: message != ""},
	})
	if err != nil {
		s.Logger(ctx).Error("failed to complete audit entry", "audit_id", auditID, "error", err)
	}
}
