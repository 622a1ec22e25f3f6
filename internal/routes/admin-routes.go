package routes

import (
	"net/http"

	"kyc-dashboard.gomodule/handlers/customers"
	"kyc-dashboard.gomodule/handlers/reverification"
	"kyc-dashboard.gomodule/internal/server"
)

// RegisterAdminRoutes registers the dashboard routes. Authentication is
// handled in front of this service.
func RegisterAdminRoutes(mux *http.ServeMux, s *server.Server) {
	// Reverification scheduling
	mux.HandleFunc("POST /admin/list-reverification-types", reverification.ListReverificationTypes(s))
	mux.HandleFunc("POST /admin/reverification-form", reverification.ReverificationForm(s))
	mux.HandleFunc("POST /admin/validate-reverification", reverification.ValidateReverification(s))
	mux.HandleFunc("POST /admin/request-reverification", reverification.RequestReverification(s))
	mux.HandleFunc("POST /admin/cancel-reverification", reverification.CancelReverification(s))
	mux.HandleFunc("POST /admin/list-reverifications", reverification.ListReverifications(s))
	mux.HandleFunc("POST /admin/list-reverification-audit", reverification.ListReverificationAudit(s))

	// Customers
	mux.HandleFunc("POST /admin/filter-customers", customers.FilterCustomers(s))
	mux.HandleFunc("POST /admin/get-customer", customers.GetCustomer(s))
	mux.HandleFunc("GET /admin/verification-report", customers.VerificationReport(s))
}
