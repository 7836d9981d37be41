package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/handler"
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/database"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto migrate; production deployments should run a dedicated migration tool.
	db.AutoMigrate(&model.Product{}, &model.Sale{}, &model.SoldItem{}, &model.User{}, &model.Privilege{}, &model.Role{})

	// 3. Seed privileges, roles, admin user, and a starter catalog
	seedPrivilegesRolesAndAdmin(db)
	seedSampleProducts(db)

	// 4. WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	cartStore := cart.NewStore(taxRateFromEnv())

	catalogService := service.NewCatalogService(productRepo, db, wsHub)
	checkoutService := service.NewCheckoutService(productRepo, saleRepo, db, wsHub)
	dashService := service.NewDashboardService(productRepo, saleRepo)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	catalogHandler := handler.NewCatalogHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartStore, catalogService)
	checkoutHandler := handler.NewCheckoutHandler(cartStore, checkoutService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Register v1.0",
	})

	app.Use(logger.New())  // Request logging
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Catalog
	protected.Get("/products", catalogHandler.GetProducts)
	protected.Get("/products/:id", catalogHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), catalogHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), catalogHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), catalogHandler.DeleteProduct)

	// Register cart (one per authenticated session)
	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/lines", cartHandler.AddLine)
	protected.Put("/cart/lines/:productId", cartHandler.SetLineQuantity)
	protected.Delete("/cart/lines/:productId", cartHandler.RemoveLine)
	protected.Delete("/cart", cartHandler.ClearCart)

	// Checkout and sales ledger
	protected.Post("/checkout", middleware.RequirePrivilege("checkout:create"), checkoutHandler.Checkout)
	protected.Get("/sales", middleware.RequirePrivilege("sale:view"), checkoutHandler.GetSales)
	protected.Get("/sales/:id", middleware.RequirePrivilege("sale:view"), checkoutHandler.GetSale)

	// Dashboard
	protected.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	protected.Get("/dashboard/sales-summary", dashHandler.GetSalesSummary)

	// User management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles and privileges
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
		}
		return c.JSON(privileges)
	})

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// taxRateFromEnv reads TAX_RATE (e.g. "0.08"); the default jurisdiction-free
// rate is zero.
func taxRateFromEnv() decimal.Decimal {
	raw := os.Getenv("TAX_RATE")
	if raw == "" {
		return decimal.Zero
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsNegative() {
		log.Printf("Warning: invalid TAX_RATE %q, using 0", raw)
		return decimal.Zero
	}
	return rate
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and the
// admin user when they don't exist yet.
func seedPrivilegesRolesAndAdmin(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	allPrivileges, _ := privilegeRepo.FindAll()

	// ADMIN gets everything
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		db.Model(adminRole).Association("Privileges").Replace(allPrivileges)
		log.Println("ADMIN role assigned all privileges")
	}

	// CASHIER runs the register but does not manage users
	cashierRole, err := roleRepo.FindByCode(model.RoleCashier)
	if err == nil && len(cashierRole.Privileges) == 0 {
		cashierPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			switch p.Code {
			case "user:create", "user:update", "user:delete", "user:update_privilege":
				continue
			}
			cashierPrivileges = append(cashierPrivileges, p)
		}
		db.Model(cashierRole).Association("Privileges").Replace(cashierPrivileges)
		log.Println("CASHIER role assigned register privileges")
	}

	if _, err := userRepo.FindByEmail("admin@example.com"); err != nil {
		adminRole, _ := roleRepo.FindByCode(model.RoleAdmin)

		admin := &model.User{
			Email:      "admin@example.com",
			FullName:   "Administrator",
			RoleID:     &adminRole.ID,
			IsActive:   true,
			Privileges: adminRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("Admin user created: admin@example.com / admin123 (ADMIN)")
		}
	}
}

// seedSampleProducts loads a small starter catalog the first time the system
// boots with an empty product table.
func seedSampleProducts(db *gorm.DB) {
	productRepo := repository.NewProductRepo(db)

	count, err := productRepo.Count()
	if err != nil || count > 0 {
		return
	}

	samples := []model.Product{
		{ProductCode: "ESP-1001", Name: "Espresso Shot", Price: decimal.NewFromFloat(3.00), StockQuantity: 30},
		{ProductCode: "CAP-2002", Name: "Cappuccino", Price: decimal.NewFromFloat(4.50), StockQuantity: 24},
		{ProductCode: "BG-3003", Name: "Fresh Bagel", Price: decimal.NewFromFloat(2.25), StockQuantity: 50},
	}
	for i := range samples {
		samples[i].CreatedBy = "system"
		samples[i].UpdatedBy = "system"
		if err := productRepo.Create(&samples[i]); err != nil {
			log.Printf("Warning: Failed to seed product %s: %v", samples[i].ProductCode, err)
		}
	}
	log.Printf("Seeded %d sample products", len(samples))
}
