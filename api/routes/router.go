package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vancetran/medisupply-backend/api/controllers"
	"github.com/vancetran/medisupply-backend/api/middleware"
	"github.com/vancetran/medisupply-backend/internal/analytics"
	"github.com/vancetran/medisupply-backend/internal/authn"
	"github.com/vancetran/medisupply-backend/internal/catalog"
	"github.com/vancetran/medisupply-backend/internal/categories"
	"github.com/vancetran/medisupply-backend/internal/coupons"
	"github.com/vancetran/medisupply-backend/internal/customers"
	"github.com/vancetran/medisupply-backend/internal/inventory"
	"github.com/vancetran/medisupply-backend/internal/orders"
	"github.com/vancetran/medisupply-backend/internal/payments"
	"github.com/vancetran/medisupply-backend/pkg/auth/session"
	"github.com/vancetran/medisupply-backend/pkg/config"
	"github.com/vancetran/medisupply-backend/pkg/db"
	"github.com/vancetran/medisupply-backend/pkg/enums"
	"github.com/vancetran/medisupply-backend/pkg/logger"
	"github.com/vancetran/medisupply-backend/pkg/metrics"
	"github.com/vancetran/medisupply-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Sessions session.AccessSessionChecker
	Metrics  *metrics.RequestMetrics

	Auth       authn.Service
	Catalog    catalog.Service
	Categories categories.Service
	Inventory  inventory.Service
	Orders     orders.Service
	Coupons    coupons.Service
	Customers  customers.Service
	Payments   payments.Service
	Analytics  analytics.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOriginList()),
		controllers.CountRequest,
		middleware.Logging(logg),
	)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	staffRoles := []enums.UserRole{enums.UserRoleAdmin, enums.UserRoleManager, enums.UserRoleStaff}
	managerRoles := []enums.UserRole{enums.UserRoleAdmin, enums.UserRoleManager}
	adminOnly := []enums.UserRole{enums.UserRoleAdmin}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Provider-facing return and notify URLs. These are registered with the
	// gateways verbatim and carry their own signatures; they cannot send
	// bearer tokens. VNPay delivers both the browser return and the IPN as
	// signed GET query strings, MoMo POSTs a signed JSON body.
	r.Route("/payment", func(r chi.Router) {
		r.Get("/callback/vnpay", controllers.VNPayCallback(deps.Payments, logg))
		r.Post("/callback/momo", controllers.MoMoIPN(deps.Payments, logg))
		r.Get("/ipn/vnpay", controllers.VNPayCallback(deps.Payments, logg))
		r.Post("/ipn/momo", controllers.MoMoIPN(deps.Payments, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
				r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
				r.With(middleware.RequireRoles(logg, adminOnly...)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			})
		})

		// Aliases for the provider callbacks under the versioned API prefix.
		r.Get("/payments/callback/vnpay", controllers.VNPayCallback(deps.Payments, logg))
		r.Post("/payments/callback/momo", controllers.MoMoIPN(deps.Payments, logg))

		r.Get("/stats", controllers.Stats(cfg))

		// Storefront reads are public.
		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/products/{productId}", controllers.GetProduct(deps.Catalog, logg))
		r.Get("/categories", controllers.CategoryTree(deps.Categories, logg))
		r.Get("/categories/{categoryId}", controllers.GetCategory(deps.Categories, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

			r.Route("/products", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, managerRoles...))
				r.Post("/", controllers.CreateProduct(deps.Catalog, logg))
				r.Patch("/{productId}", controllers.UpdateProduct(deps.Catalog, logg))
				r.Delete("/{productId}", controllers.DeleteProduct(deps.Catalog, logg))
				r.Post("/{productId}/variants", controllers.AddVariant(deps.Catalog, logg))
				r.Post("/{productId}/images", controllers.AddProductImage(deps.Catalog, logg))
				r.Delete("/{productId}/images/{imageId}", controllers.DeleteProductImage(deps.Catalog, logg))
				r.Put("/{productId}/attributes", controllers.SetProductAttributes(deps.Catalog, logg))
			})
			r.Route("/variants", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, managerRoles...))
				r.Patch("/{variantId}", controllers.UpdateVariant(deps.Catalog, logg))
				r.Delete("/{variantId}", controllers.DeleteVariant(deps.Catalog, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, managerRoles...))
				r.Post("/", controllers.CreateCategory(deps.Categories, logg))
				r.Patch("/{categoryId}", controllers.UpdateCategory(deps.Categories, logg))
				r.Delete("/{categoryId}", controllers.DeleteCategory(deps.Categories, logg))
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, staffRoles...))
				r.Get("/warehouses", controllers.ListWarehouses(deps.Inventory, logg))
				r.With(middleware.RequireRoles(logg, managerRoles...)).Post("/warehouses", controllers.CreateWarehouse(deps.Inventory, logg))
				r.Get("/warehouses/{warehouseId}/stock", controllers.ListWarehouseStock(deps.Inventory, logg))
				r.Post("/adjust", controllers.AdjustStock(deps.Inventory, logg))
				r.Post("/transfer", controllers.TransferStock(deps.Inventory, logg))
				r.Get("/transactions", controllers.ListInventoryTransactions(deps.Inventory, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.CreateOrder(deps.Orders, logg))
				r.Get("/", controllers.ListOrders(deps.Orders, logg))
				r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
				r.With(middleware.RequireRoles(logg, staffRoles...)).Post("/{orderId}/transition", controllers.TransitionOrder(deps.Orders, logg))
				r.Get("/{orderId}/payments", controllers.ListOrderPayments(deps.Payments, logg))
			})

			r.Post("/payments", controllers.CreatePayment(deps.Payments, logg))

			r.Route("/coupons", func(r chi.Router) {
				r.Post("/validate", controllers.ValidateCoupon(deps.Coupons, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRoles(logg, managerRoles...))
					r.Post("/", controllers.CreateCoupon(deps.Coupons, logg))
					r.Get("/", controllers.ListCoupons(deps.Coupons, logg))
					r.Get("/{couponId}", controllers.GetCoupon(deps.Coupons, logg))
					r.Patch("/{couponId}", controllers.UpdateCoupon(deps.Coupons, logg))
					r.Delete("/{couponId}", controllers.DeleteCoupon(deps.Coupons, logg))
				})
			})

			r.Route("/customers", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, staffRoles...))
				r.Post("/", controllers.CreateCustomer(deps.Customers, logg))
				r.Get("/", controllers.ListCustomers(deps.Customers, logg))
				r.Get("/{customerId}", controllers.GetCustomer(deps.Customers, logg))
				r.Patch("/{customerId}", controllers.UpdateCustomer(deps.Customers, logg))
				r.With(middleware.RequireRoles(logg, managerRoles...)).Delete("/{customerId}", controllers.DeactivateCustomer(deps.Customers, logg))
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, managerRoles...))
				r.Get("/summary", controllers.SalesSummary(deps.Analytics, logg))
				r.Get("/revenue-by-day", controllers.RevenueByDay(deps.Analytics, logg))
				r.Get("/top-products", controllers.TopProducts(deps.Analytics, logg))
				r.Get("/low-stock", controllers.LowStock(deps.Analytics, logg))
			})
		})
	})

	return r
}
