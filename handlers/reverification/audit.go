package reverification

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"kyc-dashboard.gomodule/internal/db/dashboarddb"
	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/typespec/reverification"
)

// ListReverificationAudit handles POST /admin/list-reverification-audit
func ListReverificationAudit(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx := r.Context()
		log := s.Logger(ctx)

		var req reverification.ListReverificationAuditRequest
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

		var cursorCreatedAt pgtype.Timestamp
		var cursorAuditID pgtype.UUID
		if req.PaginationKey != "" {
			// Already checked by Validate
			cursor, _ := reverification.ParseAuditCursor(req.PaginationKey)
			cursorCreatedAt = pgtype.Timestamp{Time: cursor.CreatedAt, Valid: true}
			cursorAuditID = pgtype.UUID{Bytes: cursor.AuditID, Valid: true}
		}

		limit := req.EffectiveLimit()

		// Fetch one extra row to know whether another page exists
		rows, err := s.Audit.ListAuditEntries(ctx, dashboarddb.ListAuditEntriesParams{
			CustomerID:      string(req.CustomerID),
			CursorCreatedAt: cursorCreatedAt,
			CursorAuditID:   cursorAuditID,
			LimitCount:      limit + 1,
		})
		if err != nil {
			log.Error("failed to list audit entries", "error", err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		resp := reverification.ListReverificationAuditResponse{
			Entries: make([]reverification.AuditEntry, 0, len(rows)),
		}
		if len(rows) > int(limit) {
			rows = rows[:limit]
			last := rows[len(rows)-1]
			resp.NextPaginationKey = reverification.AuditCursor{
				CreatedAt: last.CreatedAt.Time,
				AuditID:   last.AuditID,
			}.Encode()
		}
		for _, row := range rows {
			resp.Entries = append(resp.Entries, auditEntry(row))
		}

		json.NewEncoder(w).Encode(resp)
	}
}

func auditEntry(row dashboarddb.ReverificationAudit) reverification.AuditEntry {
	e := reverification.AuditEntry{
		AuditID:                 row.AuditID.String(),
		RequestID:               row.RequestID,
		CustomerID:              row.CustomerID,
		Action:                  string(row.Action),
		ReverificationRequestID: row.ReverificationRequestID.String,
		Payload:                 row.Payload,
		Outcome:                 string(row.Outcome),
		ErrorMessage:            row.ErrorMessage.String,
	}
	if row.CreatedAt.Valid {
		e.CreatedAt = row.CreatedAt.Time.UTC().Format(time.RFC3339)
	}
	if row.CompletedAt.Valid {
		e.CompletedAt = row.CompletedAt.Time.UTC().Format(time.RFC3339)
	}
	return e
}
