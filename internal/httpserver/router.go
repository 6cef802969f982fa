package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	catalogsvc "storefront/internal/service/catalog"
	categorysvc "storefront/internal/service/category"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
)

// Deps carries the services the router needs.
type Deps struct {
	CatalogSvc  *catalogsvc.Service
	CategorySvc *categorysvc.Service
	CheckoutSvc *checkoutsvc.Service
	CustomerSvc *customersvc.Service
	OrderSvc    orderService
	Registry    *prometheus.Registry
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	router.POST("/signup", signupHandler(deps.CustomerSvc))
	router.POST("/auth/token", loginHandler(deps.CustomerSvc))

	router.GET("/products", listProductsHandler(deps.CatalogSvc))
	router.GET("/products/:id", getProductHandler(deps.CatalogSvc))
	router.GET("/categories", listCategoriesHandler(deps.CategorySvc))

	authed := router.Group("/")
	authed.Use(authMiddleware(deps.CustomerSvc))
	authed.POST("/checkout", checkoutHandler(deps.CheckoutSvc, logger))
	authed.GET("/orders", listOrdersHandler(deps.OrderSvc))
	authed.GET("/orders/:id", getOrderHandler(deps.OrderSvc))

	admin := router.Group("/admin")
	admin.Use(authMiddleware(deps.CustomerSvc), requireAdmin())
	admin.POST("/products", upsertProductHandler(deps.CatalogSvc))
	admin.POST("/products/:id/restock", restockHandler(deps.CatalogSvc))
	admin.POST("/categories", upsertCategoryHandler(deps.CategorySvc))
	admin.PATCH("/orders/:id/status", updateOrderStatusHandler(deps.OrderSvc))

	return router, nil
}
