package routes

import (
	"Go-Shopping-Sync/internal/api/handlers"
	"Go-Shopping-Sync/internal/middleware"
	"Go-Shopping-Sync/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                    *fiber.App
	ShoppingListHandler    handlers.ShoppingListHandler
	PurchaseHistoryHandler handlers.PurchaseHistoryHandler
	LiveHandler            handlers.LiveHandler
	Middleware             middleware.Middleware
	JWTService             jwt.JWTService
	MetricsHandler         fiber.Handler
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.ShoppingList()
	c.Live()
	c.GuestRoute()
}

func (c *Config) ShoppingList() {
	store := c.App.Group("/api/v1/stores/:id", c.Middleware.AuthMiddleware(c.JWTService))
	// list routes
	{
		store.Get("/list", c.ShoppingListHandler.GetList)
		store.Put("/list", c.ShoppingListHandler.ReplaceList)
		store.Post("/list/items", c.ShoppingListHandler.AddItem)
		store.Patch("/list/items/:foodItemId", c.ShoppingListHandler.UpdateItem)
		store.Delete("/list/items/:foodItemId", c.ShoppingListHandler.DeleteItem)
		store.Post("/list/items/:foodItemId/toggle", c.ShoppingListHandler.ToggleItem)
		store.Post("/list/resolve", c.ShoppingListHandler.ResolveConflict)
		store.Post("/list/generate", c.ShoppingListHandler.GenerateList)
	}

	// purchase history
	{
		store.Post("/list/finish", c.PurchaseHistoryHandler.FinishShop)
		store.Get("/history", c.PurchaseHistoryHandler.GetHistory)
	}
}

func (c *Config) Live() {
	c.App.Get("/api/v1/stores/:id/live",
		c.Middleware.AuthMiddleware(c.JWTService),
		c.LiveHandler.Upgrade,
		c.LiveHandler.Stream(),
	)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong, its works. test"})
	})
	if c.MetricsHandler != nil {
		c.App.Get("/metrics", c.MetricsHandler)
	}
}
