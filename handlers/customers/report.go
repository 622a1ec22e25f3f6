package customers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/internal/storage"
	"kyc-dashboard.gomodule/typespec/common"
)

// Reports larger than this are streamed without being archived
const maxArchivedReportSize = 32 << 20

// VerificationReport handles GET /admin/verification-report?customerId=...
// Today's archived copy is served when one exists. Otherwise the report is
// downloaded from the backend, archived and returned.
func VerificationReport(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := s.Logger(ctx)

		customerID := common.CustomerID(r.URL.Query().Get("customerId"))
		if err := customerID.Validate(); err != nil {
			log.Debug("invalid customer id", "error", err)
			w.Header().Set("Content-Type", "application/json")
			server.WriteValidationErrors(w, r, []common.ValidationError{
				common.NewValidationError("customerId", err),
			})
			return
		}

		key := storage.ReportKey(string(customerID), s.Today())

		if s.Reports != nil {
			archived, err := s.Reports.Get(ctx, key)
			switch {
			case err == nil:
				defer archived.Body.Close()
				log.Debug("serving archived report", "key", key)
				writeReport(w, customerID, archived.ContentType, archived.Size, archived.Body)
				return
			case errors.Is(err, storage.ErrNotArchived):
			default:
				log.Warn("failed to read report archive", "key", key, "error", err)
			}
		}

		report, err := s.Backend.DownloadReport(ctx, string(customerID))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			s.WriteBackendError(w, r, err)
			return
		}
		defer report.Body.Close()

		if s.Reports == nil || report.Size > maxArchivedReportSize {
			writeReport(w, customerID, report.ContentType, report.Size, report.Body)
			return
		}

		data, err := io.ReadAll(io.LimitReader(report.Body, maxArchivedReportSize+1))
		if err != nil {
			log.Error("failed to read report from backend", "error", err)
			http.Error(w, "", http.StatusBadGateway)
			return
		}
		if len(data) <= maxArchivedReportSize {
			if err := s.Reports.Put(ctx, key, report.ContentType, data); err != nil {
				log.Warn("failed to archive report", "key", key, "error", err)
			}
		}

		rest := io.MultiReader(bytes.NewReader(data), report.Body)
		size := report.Size
		if len(data) <= maxArchivedReportSize {
			size = int64(len(data))
		}
		writeReport(w, customerID, report.ContentType, size, rest)
	}
}

func writeReport(w http.ResponseWriter, customerID common.CustomerID, contentType string, size int64, body io.Reader) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "verification-report-"+string(customerID)+".pdf"))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}
