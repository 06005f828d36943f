package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/ganzorig/qpaygate/internal/server/http/handlers"
	"github.com/ganzorig/qpaygate/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
// Webhook and check endpoints stay public: the provider and the customer
// browser call them without merchant credentials.
func Setup(facade handlers.GatewayFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)

	api := engine.Group("/api")
	merchant := api.Group("/merchant")
	merchant.POST("/register", authHandler.Register)
	merchant.POST("/login", authHandler.Login)

	qpayGroup := api.Group("/qpay")
	qpayGroup.POST("/webhook", paymentHandler.Webhook)
	qpayGroup.POST("/check", paymentHandler.Check)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(facade))
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:number", orderHandler.Get)
	orders.POST("/:number/invoice", orderHandler.CreateInvoice)

	return engine
}
