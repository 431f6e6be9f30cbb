package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/joho/godotenv"

	"github.com/ordercore/shop-backend/internal/address"
	"github.com/ordercore/shop-backend/internal/cart"
	"github.com/ordercore/shop-backend/internal/config"
	"github.com/ordercore/shop-backend/internal/coupon"
	"github.com/ordercore/shop-backend/internal/db"
	"github.com/ordercore/shop-backend/internal/loyalty"
	"github.com/ordercore/shop-backend/internal/mailer"
	"github.com/ordercore/shop-backend/internal/notification"
	"github.com/ordercore/shop-backend/internal/order"
	"github.com/ordercore/shop-backend/internal/product"
	"github.com/ordercore/shop-backend/internal/shipment"
	"github.com/ordercore/shop-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
		log.Fatal(err)
	}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	userService := user.NewService(user.NewPostgresRepository(conn))
	userHandler := user.NewHandler(userService)

	productService := product.NewService(product.NewPostgresRepository(conn))
	productHandler := product.NewHandler(productService)

	cartService := cart.NewService(cart.NewPostgresRepository(conn), productService)
	cartHandler := cart.NewHandler(cartService)

	couponService := coupon.NewService(coupon.NewPostgresRepository(conn), cartService)
	couponHandler := coupon.NewHandler(couponService)

	loyaltyService := loyalty.NewService(loyalty.NewPostgresRepository(conn))
	loyaltyHandler := loyalty.NewHandler(loyaltyService)

	notificationService := notification.NewService(notification.NewPostgresRepository(conn))
	notificationHandler := notification.NewHandler(notificationService)

	mailQueue := mailer.NewPostgresQueue(conn)

	orderService := order.NewService(order.NewPostgresRepository(conn), cartService)
	orderService.OnDelivered(shipment.NewDeliveredMailer(mailQueue, userService))
	orderHandler := order.NewHandler(orderService)

	shipmentService := shipment.NewService(shipment.NewPostgresRepository(conn), orderService)
	shipmentHandler := shipment.NewHandler(shipmentService)

	// public routes go in before the JWT middleware so it never sees them
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	addressHandler := address.NewHandler(address.NewService(address.NewPostgresRepository(conn)))
	addressHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	couponHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	loyaltyHandler.RegisterProtectedRoutes(app)
	notificationHandler.RegisterProtectedRoutes(app)

	admin := app.Group("/api/v1/admin", user.RequireAdmin)
	productHandler.RegisterAdminRoutes(admin)
	couponHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	shipmentHandler.RegisterAdminRoutes(admin)

	sender := mailer.NewBreakerSender(&mailer.LogSender{From: cfg.MailFrom})
	poller := mailer.NewPoller(mailQueue, sender, 5*time.Second, 20)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	log.Fatal(app.Listen(cfg.Addr))
}
