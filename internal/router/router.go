package router

import (
	"net/http"

	"bistro/internal/auth"
	"bistro/internal/handler"
	"bistro/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Menu        *handler.MenuHandler
	Cart        *handler.CartHandler
	Order       *handler.OrderHandler
	Payment     *handler.PaymentHandler
	Reservation *handler.ReservationHandler
	Customer    *handler.CustomerHandler
	Auth        *handler.AuthHandler
	Staff       *handler.StaffHandler
	Dashboard   *handler.DashboardHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, tokens *auth.TokenManager, roles middleware.RoleChecker, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	staff := guard(middleware.RequireStaff(roles, logger))
	manager := guard(middleware.RequireManager(roles, logger))
	owner := guard(middleware.RequireOwner(roles, logger))
	customer := guard(middleware.RequireAuth)

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	// Public menu
	mux.HandleFunc("GET /api/menu", h.Menu.Menu)
	mux.HandleFunc("GET /api/menu/{slug}", h.Menu.Dish)

	// Cart, identified by the X-Cart-Session header
	mux.HandleFunc("GET /api/cart", h.Cart.Get)
	mux.HandleFunc("DELETE /api/cart", h.Cart.Clear)
	mux.HandleFunc("POST /api/cart/items", h.Cart.Add)
	mux.HandleFunc("PUT /api/cart/items/{key}", h.Cart.Update)
	mux.HandleFunc("DELETE /api/cart/items/{key}", h.Cart.Remove)
	mux.HandleFunc("POST /api/cart/promo", h.Cart.ApplyPromo)
	mux.HandleFunc("DELETE /api/cart/promo", h.Cart.RemovePromo)

	// Customer accounts and checkout
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.Handle("POST /api/checkout", customer(h.Order.Checkout))
	mux.HandleFunc("GET /api/checkout/success", h.Payment.CheckoutSuccess)
	mux.HandleFunc("POST /api/payments/webhook", h.Payment.Webhook)
	mux.Handle("GET /api/orders/history", customer(h.Order.History))
	mux.HandleFunc("GET /api/orders/{id}", h.Order.GetByID)

	// Reservations
	mux.HandleFunc("POST /api/reservations", h.Reservation.Create)
	mux.HandleFunc("GET /api/reservations/{id}", h.Reservation.GetByID)

	// Dashboard: any active staff
	mux.HandleFunc("POST /api/dashboard/login", h.Auth.StaffLogin)
	mux.Handle("GET /api/dashboard/summary", staff(h.Dashboard.Summary))
	mux.Handle("GET /api/dashboard/orders", staff(h.Order.List))
	mux.Handle("GET /api/dashboard/orders/{id}", staff(h.Order.Detail))
	mux.Handle("POST /api/dashboard/orders/{id}/advance", staff(h.Order.Advance))
	mux.Handle("POST /api/dashboard/orders/{id}/cancel", staff(h.Order.Cancel))
	mux.Handle("GET /api/dashboard/orders/{id}/receipt", staff(h.Order.Receipt))
	mux.Handle("GET /api/dashboard/reservations", staff(h.Reservation.List))
	mux.Handle("GET /api/dashboard/reservations/{id}", staff(h.Reservation.GetByID))
	mux.Handle("POST /api/dashboard/reservations/{id}/approve", staff(h.Reservation.Approve))
	mux.Handle("POST /api/dashboard/reservations/{id}/reject", staff(h.Reservation.Reject))
	mux.Handle("POST /api/dashboard/reservations/{id}/cancel", staff(h.Reservation.Cancel))
	mux.Handle("PUT /api/dashboard/reservations/{id}/note", staff(h.Reservation.AddNote))
	mux.Handle("GET /api/dashboard/customers", staff(h.Customer.List))
	mux.Handle("GET /api/dashboard/customers/{email}", staff(h.Customer.Detail))

	// Dashboard: managers and owners
	mux.Handle("POST /api/dashboard/customers/blocked", manager(h.Customer.Block))
	mux.Handle("DELETE /api/dashboard/customers/blocked/{email}", manager(h.Customer.Unblock))
	mux.Handle("GET /api/dashboard/payments", manager(h.Payment.List))
	mux.Handle("GET /api/dashboard/payments/export", manager(h.Payment.Export))
	mux.Handle("GET /api/dashboard/payments/{id}", manager(h.Payment.Detail))
	mux.Handle("POST /api/dashboard/payments/{id}/refund", manager(h.Payment.Refund))
	mux.Handle("GET /api/dashboard/menu", manager(h.Menu.ListItems))
	mux.Handle("POST /api/dashboard/menu", manager(h.Menu.CreateItem))
	mux.Handle("POST /api/dashboard/menu/import", manager(h.Menu.ImportCSV))
	mux.Handle("GET /api/dashboard/menu/import/template", manager(h.Menu.CSVTemplate))
	mux.Handle("GET /api/dashboard/menu/{id}", manager(h.Menu.GetItem))
	mux.Handle("PUT /api/dashboard/menu/{id}", manager(h.Menu.UpdateItem))
	mux.Handle("DELETE /api/dashboard/menu/{id}", manager(h.Menu.DeleteItem))
	mux.Handle("POST /api/dashboard/menu/{id}/toggle", manager(h.Menu.ToggleAvailability))
	mux.Handle("POST /api/dashboard/menu/{id}/image", manager(h.Menu.UploadImage))
	mux.Handle("POST /api/dashboard/menu/{id}/addons", manager(h.Menu.AddAddOn))
	mux.Handle("DELETE /api/dashboard/menu/{id}/addons/{addon}", manager(h.Menu.RemoveAddOn))
	mux.Handle("GET /api/dashboard/categories", manager(h.Menu.ListCategories))
	mux.Handle("POST /api/dashboard/categories", manager(h.Menu.CreateCategory))
	mux.Handle("DELETE /api/dashboard/categories/{id}", manager(h.Menu.DeleteCategory))
	mux.Handle("GET /api/dashboard/tags", manager(h.Menu.ListTags))
	mux.Handle("GET /api/dashboard/promos", manager(h.Dashboard.ListPromos))
	mux.Handle("POST /api/dashboard/promos", manager(h.Dashboard.CreatePromo))
	mux.Handle("POST /api/dashboard/promos/{id}/toggle", manager(h.Dashboard.TogglePromo))

	// Dashboard: owner only
	mux.Handle("GET /api/dashboard/staff", owner(h.Staff.List))
	mux.Handle("POST /api/dashboard/staff", owner(h.Staff.Add))
	mux.Handle("PUT /api/dashboard/staff/{id}", owner(h.Staff.Edit))
	mux.Handle("DELETE /api/dashboard/staff/{id}", owner(h.Staff.Delete))
	mux.Handle("POST /api/dashboard/staff/{id}/toggle", owner(h.Staff.ToggleActive))
	mux.Handle("POST /api/dashboard/staff/{id}/password", owner(h.Staff.ResetPassword))

	// Apply middleware in order: RequestID -> Recovery -> Logging -> CORS -> Authenticate -> Metrics.
	// Metrics wraps the mux directly so it sees the matched pattern.
	var handler http.Handler = mux
	handler = middleware.Metrics(handler)
	handler = middleware.Authenticate(tokens, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.WithRequestID(handler)

	return handler
}

func guard(mw func(http.Handler) http.Handler) func(http.HandlerFunc) http.Handler {
	return func(fn http.HandlerFunc) http.Handler {
		return mw(fn)
	}
}
