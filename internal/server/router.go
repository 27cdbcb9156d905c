package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	accountctrl "storefront/internal/account/controller"
	carrierctrl "storefront/internal/carrier/controller"
	cartctrl "storefront/internal/cart/controller"
	catalogctrl "storefront/internal/catalog/controller"
	customerctrl "storefront/internal/customer/controller"
	"storefront/internal/domain"
	"storefront/internal/infrastructure/metrics"
	orderctrl "storefront/internal/order/controller"
	"storefront/internal/server/httpx"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Controllers struct {
	Account  *accountctrl.Controller
	Customer *customerctrl.Controller
	Carrier  *carrierctrl.Controller
	Catalog  *catalogctrl.Controller
	Cart     *cartctrl.Controller
	Order    *orderctrl.Controller
}

func NewRouter(c Controllers, verifier httpx.TokenVerifier, accounts httpx.AccountReader, db Pinger, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.Trace)
	r.Use(httpx.RequestLog(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(db, logger))
	r.Handle("/metrics", metrics.Handler())

	authenticate := httpx.Authenticate(verifier, accounts, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", c.Account.Login)
		r.Post("/auth/register", c.Account.Register)
		r.With(authenticate).Put("/auth/password", c.Account.ChangePassword)

		r.Get("/categories", c.Catalog.ListCategories)
		r.Get("/products", c.Catalog.ListProducts)
		r.Get("/products/{productId}", c.Catalog.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, httpx.RequireRole(logger, domain.AccountTypeCustomer))

			r.Get("/me", c.Customer.GetMe)
			r.Put("/me", c.Customer.UpdateMe)

			r.Get("/cart", c.Cart.Get)
			r.Delete("/cart", c.Cart.Clear)
			r.Post("/cart/items", c.Cart.AddItem)
			r.Put("/cart/items/{productId}", c.Cart.UpdateItem)
			r.Delete("/cart/items/{productId}", c.Cart.RemoveItem)

			r.Post("/orders/checkout", c.Order.Checkout)
			r.Get("/orders", c.Order.ListMine)
			r.Get("/orders/{orderId}", c.Order.GetMine)
			r.Post("/orders/{orderId}/cancel", c.Order.CancelMine)
		})

		r.Route("/carrier", func(r chi.Router) {
			r.Use(authenticate, httpx.RequireRole(logger, domain.AccountTypeCarrier))

			r.Get("/me", c.Carrier.GetMe)
			r.Put("/availability", c.Carrier.SetMyAvailability)
			r.Get("/orders", c.Order.ListAssigned)
			r.Put("/orders/{orderId}/status", c.Order.UpdateAssignedStatus)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate, httpx.RequireRole(logger, domain.AccountTypeAdmin))

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", c.Customer.List)
				r.Post("/", c.Customer.Create)
				r.Get("/{customerId}", c.Customer.Get)
				r.Put("/{customerId}", c.Customer.Update)
				r.Delete("/{customerId}", c.Customer.Deactivate)
			})

			r.Route("/carriers", func(r chi.Router) {
				r.Get("/", c.Carrier.List)
				r.Post("/", c.Carrier.Create)
				r.Get("/{carrierId}", c.Carrier.Get)
				r.Put("/{carrierId}", c.Carrier.Update)
				r.Delete("/{carrierId}", c.Carrier.Deactivate)
				r.Put("/{carrierId}/availability", c.Carrier.SetAvailability)
			})

			r.Route("/admins", func(r chi.Router) {
				r.Get("/", c.Account.ListAdmins)
				r.Post("/", c.Account.CreateAdmin)
				r.Get("/{adminId}", c.Account.GetAdmin)
				r.Put("/{adminId}", c.Account.UpdateAdmin)
				r.Delete("/{adminId}", c.Account.DeactivateAdmin)
			})
			r.Put("/accounts/{accountId}/active", c.Account.SetActive)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", c.Catalog.AdminListCategories)
				r.Post("/", c.Catalog.CreateCategory)
				r.Get("/{categoryId}", c.Catalog.GetCategory)
				r.Put("/{categoryId}", c.Catalog.UpdateCategory)
				r.Delete("/{categoryId}", c.Catalog.DeleteCategory)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", c.Catalog.AdminListProducts)
				r.Post("/", c.Catalog.CreateProduct)
				r.Get("/{productId}", c.Catalog.AdminGetProduct)
				r.Put("/{productId}", c.Catalog.UpdateProduct)
				r.Delete("/{productId}", c.Catalog.DeactivateProduct)
				r.Put("/{productId}/stock", c.Catalog.SetStock)
				r.Get("/{productId}/images", c.Catalog.ListImages)
				r.Post("/{productId}/images", c.Catalog.AddImage)
				r.Delete("/{productId}/images/{imageId}", c.Catalog.DeleteImage)
				r.Put("/{productId}/images/{imageId}/primary", c.Catalog.SetPrimaryImage)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", c.Order.List)
				r.Get("/{orderId}", c.Order.Get)
				r.Put("/{orderId}/status", c.Order.UpdateStatus)
				r.Put("/{orderId}/carrier", c.Order.AssignCarrier)
				r.Post("/{orderId}/cancel", c.Order.Cancel)
			})
			r.Get("/statistics", c.Order.Statistics)
		})
	})

	return r
}

func healthz(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			httpx.Logger(r, logger).Error("health check failed", zap.Error(err))
			httpx.WriteJSON(w, logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	}
}
