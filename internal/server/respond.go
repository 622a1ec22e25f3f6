package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"kyc-dashboard.gomodule/internal/i18n"
	"kyc-dashboard.gomodule/internal/kycapi"
	"kyc-dashboard.gomodule/typespec/common"
)

// DecodeJSON decodes the request body into dst. An empty body leaves dst at
// its zero value.
func DecodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// WriteValidationErrors writes errs with status 400, localised for the
// caller's Accept-Language.
func WriteValidationErrors(w http.ResponseWriter, r *http.Request, errs []common.ValidationError) {
	lang := i18n.Match(r.Header.Get("Accept-Language"))
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(i18n.Localize(lang, errs))
}

type backendRejection struct {
	Message string `json:"message"`
}

// WriteBackendError maps a kycapi error onto the response. 404 stays 404,
// other backend rejections keep their status and message, everything else
// is reported as 502.
func (s *Server) WriteBackendError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.Logger(r.Context())

	if errors.Is(err, kycapi.ErrNotFound) {
		log.Debug("backend resource not found", "error", err)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var apiErr *kycapi.APIError
	if errors.As(err, &apiErr) {
		log.Debug("backend rejected request", "status", apiErr.StatusCode, "message", apiErr.Message)
		w.WriteHeader(apiErr.StatusCode)
		json.NewEncoder(w).Encode(backendRejection{Message: apiErr.Message})
		return
	}

	log.Error("backend call failed", "error", err)
	http.Error(w, "", http.StatusBadGateway)
}
