package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-listings/internal/config"
	"github.com/ignatzorin/marketplace-listings/internal/http/handlers"
	"github.com/ignatzorin/marketplace-listings/internal/http/middleware"
	listingHandler "github.com/ignatzorin/marketplace-listings/internal/interface/http/handler"
	"github.com/ignatzorin/marketplace-listings/internal/service"
)

// Handlers - все HTTP обработчики сервиса. Auth и Media могут быть nil.
type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Catalog   *handlers.CatalogHandler
	Media     *handlers.MediaHandler
	WS        *handlers.WSHandler
	Form      *listingHandler.FormHandler
	Product   *listingHandler.ProductHandler
	Admin     *listingHandler.AdminHandler
	Dashboard *listingHandler.DashboardHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	if h.Media != nil {
		r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))
	}

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	api.GET("/ws", h.WS.Handle)

	if h.Auth != nil && cfg.Env == "development" {
		api.POST("/dev/token", h.Auth.DevToken)
	}

	v1 := api.Group("/v1")

	// Каталог (публичный)
	v1.GET("/catalog/categories", h.Catalog.ListCategories)
	v1.GET("/catalog/categories/:name/subcategories", h.Catalog.ListSubcategories)

	// Защищённые маршруты
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		issuanceLimit := middleware.SellerRateLimitMiddleware(cfg.IssuanceRateLimit, cfg.RateLimitPeriod)

		protected.POST("/listing-forms", h.Form.Open)
		protected.GET("/listing-forms/:id", middleware.UUIDValidator("id"), h.Form.Get)
		protected.PATCH("/listing-forms/:id", middleware.UUIDValidator("id"), h.Form.Patch)
		protected.POST("/listing-forms/:id/payment", middleware.UUIDValidator("id"), issuanceLimit, h.Form.AcknowledgePayment)
		protected.GET("/listing-forms/:id/credential", middleware.UUIDValidator("id"), h.Form.Credential)
		protected.POST("/listing-forms/:id/submit", middleware.UUIDValidator("id"), h.Form.Submit)
		protected.DELETE("/listing-forms/:id", middleware.UUIDValidator("id"), h.Form.Close)

		protected.GET("/products", h.Product.ListMyProducts)
		protected.GET("/products/:id", middleware.UUIDValidator("id"), h.Product.GetProduct)
		protected.PATCH("/products/:id", middleware.UUIDValidator("id"), h.Product.PatchProduct)
		protected.DELETE("/products/:id", middleware.UUIDValidator("id"), h.Product.DeleteProduct)
		protected.POST("/products/:id/submit", middleware.UUIDValidator("id"), h.Product.SubmitForReview)
		protected.POST("/products/:id/unpublish", middleware.UUIDValidator("id"), h.Product.Unpublish)

		protected.GET("/dashboard", h.Dashboard.GetDashboard)

		if h.Media != nil {
			protected.POST("/media/images", h.Media.UploadImage)
			protected.DELETE("/media/images", h.Media.DeleteImage)
		}
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(service.RoleAdmin))
	{
		admin.POST("/products/:id/approve", middleware.UUIDValidator("id"), h.Admin.Approve)
		admin.POST("/products/:id/reject", middleware.UUIDValidator("id"), h.Admin.Reject)
		admin.POST("/products/:id/archive", middleware.UUIDValidator("id"), h.Admin.Archive)
	}

	return r
}
