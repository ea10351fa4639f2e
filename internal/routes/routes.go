package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/cache"
	"github.com/example/greenbasket/internal/config"
	"github.com/example/greenbasket/internal/handlers"
	"github.com/example/greenbasket/internal/middleware"
	"github.com/example/greenbasket/internal/models"
	"github.com/example/greenbasket/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	catalogCache := cache.New(5 * time.Minute)

	gateway := services.NewRazorpayService(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)
	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	sms := services.NewSMSService(db, cfg.SMSAPIKey, cfg.SMSBaseURL, cfg.OTPTestBypass)
	media := services.NewCloudinaryService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	orders := services.NewOrderService(db, gateway, telegram, cfg.Currency, services.DeliveryRules{
		FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		DeliveryCharge:        cfg.DeliveryCharge,
	})

	authHandler := handlers.NewAuthHandler(db, cfg, sms)
	catalogHandler := handlers.NewCatalogHandler(db, catalogCache)
	productHandler := handlers.NewProductHandler(db, catalogCache)
	cartHandler := handlers.NewCartHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, orders)
	wishlistHandler := handlers.NewWishlistHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db, media)
	webhookHandler := handlers.NewWebhookHandler(orders)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/request-code", authHandler.RequestCode)
	auth.Post("/verify-code", authHandler.VerifyCode)
	auth.Post("/refresh-token", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", middleware.Auth(cfg), authHandler.LogoutAll)

	// Webhooks are authenticated by signature only, never by session.
	api.Post("/webhooks/razorpay", middleware.RazorpayWebhookAuth(gateway), webhookHandler.HandleRazorpay)

	// Public catalog reads
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Get("/:productId/reviews", reviewHandler.ListByProduct)

	// Catalog management
	manage := api.Group("", middleware.Auth(cfg), middleware.RequireRoles(models.RoleAdmin, models.RoleVendor))
	manage.Post("/categories", catalogHandler.CreateCategory)
	manage.Put("/categories/:id", catalogHandler.UpdateCategory)
	manage.Delete("/categories/:id", catalogHandler.DeleteCategory)
	manage.Post("/products", productHandler.CreateProduct)
	manage.Put("/products/:id", productHandler.UpdateProduct)
	manage.Delete("/products/:id", productHandler.DeleteProduct)
	manage.Put("/products/:id/activate-freshness", productHandler.ActivateFreshness)
	manage.Put("/variants/:variantId", productHandler.UpdateVariant)

	// Authenticated customer routes
	protected := api.Group("", middleware.Auth(cfg))

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/items", cartHandler.AddItem)
	cart.Put("/items/:itemId", cartHandler.UpdateItem)
	cart.Delete("/items/:itemId", cartHandler.RemoveItem)
	cart.Delete("/", cartHandler.ClearCart)
	cart.Post("/coupon", cartHandler.ApplyCoupon)
	cart.Delete("/coupon", cartHandler.RemoveCoupon)

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListMyOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Put("/orders/:id/cancel", orderHandler.CancelOrder)
	protected.Post("/orders/verify-payment", orderHandler.VerifyPayment)

	wishlist := protected.Group("/wishlist")
	wishlist.Get("/", wishlistHandler.GetWishlist)
	wishlist.Post("/", wishlistHandler.AddToWishlist)
	wishlist.Delete("/:productId", wishlistHandler.RemoveFromWishlist)

	reviews := protected.Group("/reviews")
	reviews.Post("/", reviewHandler.CreateReview)
	reviews.Put("/:id", reviewHandler.UpdateReview)
	reviews.Delete("/:id", reviewHandler.DeleteReview)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Put("/profile/addresses/:id", profileHandler.UpdateAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	// Staff order operations
	staff := api.Group("/staff", middleware.Auth(cfg), middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))
	staff.Get("/orders", orderHandler.ListAllOrders)
	staff.Put("/orders/:id/status", orderHandler.UpdateStatus)

	// Admin back office
	admin := api.Group("/admin", middleware.Auth(cfg), middleware.RequireRoles(models.RoleAdmin))
	admin.Get("/dashboard", adminHandler.Dashboard)
	admin.Get("/settings", adminHandler.GetSettings)
	admin.Put("/settings", adminHandler.UpdateSettings)
	admin.Get("/coupons", adminHandler.ListCoupons)
	admin.Post("/coupons", adminHandler.CreateCoupon)
	admin.Put("/coupons/:id", adminHandler.UpdateCoupon)
	admin.Delete("/coupons/:id", adminHandler.DeleteCoupon)
	admin.Post("/media", adminHandler.UploadImage)
	admin.Delete("/media", adminHandler.DeleteImage)
	admin.Put("/users/:id/role", adminHandler.UpdateUserRole)
}
