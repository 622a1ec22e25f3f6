package reverification

import (
	"encoding/json"
	"net/http"

	"kyc-dashboard.gomodule/internal/i18n"
	"kyc-dashboard.gomodule/internal/server"
	"kyc-dashboard.gomodule/typespec/common"
	"kyc-dashboard.gomodule/typespec/reverification"
)

// ReverificationForm handles POST /admin/reverification-form. It applies one
// field edit to the draft and returns the resulting draft, what the form
// should render, and the validation errors.
func ReverificationForm(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx := r.Context()
		log := s.Logger(ctx)

		var req reverification.ReverificationFormRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Debug("failed to decode request", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		catalog, err := s.Catalog(ctx, false)
		if err != nil {
			log.Error("failed to load verification types", "error", err)
			http.Error(w, "", http.StatusBadGateway)
			return
		}
		v := s.Validator(catalog)

		var result reverification.ReverificationFormResponse
		if req.Edit == nil {
			_, errs := v.Validate(req.Draft)
			result = reverification.EditResult{
				Draft:  req.Draft,
				View:   reverification.View(req.Draft, catalog, s.Policy),
				Errors: errs,
			}
		} else {
			result, err = v.Edit(req.Draft, *req.Edit)
			if err != nil {
				log.Debug("edit rejected", "field", req.Edit.Field, "error", err)
				server.WriteValidationErrors(w, r, []common.ValidationError{
					common.NewValidationError(req.Edit.Field, err),
				})
				return
			}
		}

		lang := i18n.Match(r.Header.Get("Accept-Language"))
		result.Errors = i18n.Localize(lang, result.Errors)
		if result.FieldError != nil {
			localized := i18n.Localize(lang, []common.ValidationError{*result.FieldError})[0]
			result.FieldError = &localized
		}

		json.NewEncoder(w).Encode(result)
	}
}
