package config

import (
	"Go-Shopping-Sync/internal/api/handlers"
	"Go-Shopping-Sync/internal/api/routes"
	"Go-Shopping-Sync/internal/middleware"
	"Go-Shopping-Sync/internal/utils"
	"Go-Shopping-Sync/internal/utils/mailing"
	"Go-Shopping-Sync/internal/utils/storage"
	"Go-Shopping-Sync/pkg/access"
	"Go-Shopping-Sync/pkg/broadcast"
	"Go-Shopping-Sync/pkg/deconfliction"
	"Go-Shopping-Sync/pkg/food"
	"Go-Shopping-Sync/pkg/history"
	"Go-Shopping-Sync/pkg/jwt"
	"Go-Shopping-Sync/pkg/recipe"
	"Go-Shopping-Sync/pkg/shoppinglist"
	"Go-Shopping-Sync/pkg/units"
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// NewApp wires the HTTP app. relayPool may be nil, in which case live
// updates stay within this process. The returned hub must be closed on
// shutdown.
func NewApp(db *gorm.DB, relayPool *pgxpool.Pool) (*fiber.App, *broadcast.Hub, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
		// live connections and scrapes are long lived or periodic
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Get(fiber.HeaderUpgrade) != ""
		},
	}))

	// utils
	s3, err := storage.NewAwsS3(context.Background())
	if err != nil {
		return nil, nil, err
	}
	mailer := mailing.NewMailer(mailing.LoadMailConfig())

	// Repository
	accessRepository := access.NewAccessRepository(db)
	foodRepository := food.NewFoodRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	shoppingListRepository := shoppinglist.NewShoppingListRepository(db)
	purchaseHistoryRepository := history.NewPurchaseHistoryRepository(db)

	// live updates
	hubConfig := broadcast.Config{
		Buffer:    utils.GetConfigInt("VIEWER_BUFFER", 64),
		Snapshots: shoppinglist.NewSnapshotSource(shoppingListRepository),
		Metrics:   broadcast.NewMetrics(prometheus.DefaultRegisterer),
	}
	if relayPool != nil {
		relay := broadcast.NewPostgresRelay(relayPool)
		hubConfig.Relay = relay
		log.Infow("live update relay enabled", "instance_id", relay.InstanceID())
	}
	hub := broadcast.NewHub(hubConfig)

	// Service
	jwtService := jwt.NewJWTService()
	accessService := access.NewAccessService(accessRepository)
	foodService := food.NewFoodService(foodRepository)
	recipeService := recipe.NewRecipeService(recipeRepository)
	engine := deconfliction.NewEngine(units.Default())
	shoppingListService := shoppinglist.NewShoppingListService(
		shoppingListRepository,
		accessService,
		hub,
		engine,
		recipeService,
		foodService,
	)
	purchaseHistoryService := history.NewPurchaseHistoryService(
		purchaseHistoryRepository,
		accessService,
		shoppingListService,
		s3,
		mailer,
	)

	// Handler
	shoppingListHandler := handlers.NewShoppingListHandler(shoppingListService, validator)
	purchaseHistoryHandler := handlers.NewPurchaseHistoryHandler(purchaseHistoryService, validator)
	liveHandler := handlers.NewLiveHandler(accessService, hub)

	// routes
	routesConfig := routes.Config{
		App:                    app,
		ShoppingListHandler:    shoppingListHandler,
		PurchaseHistoryHandler: purchaseHistoryHandler,
		LiveHandler:            liveHandler,
		Middleware:             middlewares,
		JWTService:             jwtService,
		MetricsHandler:         adaptor.HTTPHandler(promhttp.Handler()),
	}
	routesConfig.Setup()
	return app, hub, nil
}
