package main

import (
	"log"
	"os"

	_ "procurement-backend/api/swagger" // swagger docs
	"procurement-backend/internal/database"
	"procurement-backend/internal/handler"
	"procurement-backend/internal/middleware"
	"procurement-backend/internal/repository"
	"procurement-backend/internal/service"
	"procurement-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Procurement API
// @version         1.0
// @description     Back-office API for purchase requisitions, RFQs, purchase orders, goods receipts and vendor invoices.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	requisitionRepo := repository.NewRequisitionRepository(db)
	rfqRepo := repository.NewRFQRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	grnRepo := repository.NewGoodsReceiptRepository(db)
	invoiceRepo := repository.NewVendorInvoiceRepository(db)
	delegationRepo := repository.NewDelegationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	approvalRouter := service.NewApprovalRouter(userRepo, delegationRepo)
	notificationService := service.NewNotificationService(notificationRepo, wsHub)

	userService := service.NewUserService(userRepo, refreshTokenRepo)
	vendorService := service.NewVendorService(vendorRepo, auditRepo, txManager)
	requisitionService := service.NewRequisitionService(requisitionRepo, auditRepo, approvalRouter, notificationService, txManager)
	rfqService := service.NewRFQService(rfqRepo, vendorRepo, requisitionRepo, auditRepo, notificationService, txManager)
	poService := service.NewPurchaseOrderService(poRepo, vendorRepo, requisitionRepo, rfqRepo, auditRepo, notificationService, txManager)
	grnService := service.NewGoodsReceiptService(grnRepo, poRepo, auditRepo, notificationService, txManager)
	invoiceService := service.NewVendorInvoiceService(invoiceRepo, poRepo, grnRepo, vendorRepo, auditRepo, notificationService, txManager)
	delegationService := service.NewDelegationService(delegationRepo, userRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	vendorHandler := handler.NewVendorHandler(vendorService)
	requisitionHandler := handler.NewRequisitionHandler(requisitionService)
	rfqHandler := handler.NewRFQHandler(rfqService)
	poHandler := handler.NewPurchaseOrderHandler(poService)
	grnHandler := handler.NewGoodsReceiptHandler(grnService)
	invoiceHandler := handler.NewVendorInvoiceHandler(invoiceService)
	delegationHandler := handler.NewDelegationHandler(delegationService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api/v1")
	userHandler.RegisterRoutes(api)
	vendorHandler.RegisterRoutes(api)
	requisitionHandler.RegisterRoutes(api)
	rfqHandler.RegisterRoutes(api)
	poHandler.RegisterRoutes(api)
	grnHandler.RegisterRoutes(api)
	invoiceHandler.RegisterRoutes(api)
	delegationHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
