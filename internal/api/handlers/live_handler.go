package handlers

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/internal/api/presenters"
	"Go-Shopping-Sync/pkg/access"
	"Go-Shopping-Sync/pkg/broadcast"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const (
	liveStoreIDKey  = "live_store_id"
	liveViewerIDKey = "live_viewer_id"
)

type (
	LiveHandler interface {
		// Upgrade checks access before the websocket handshake.
		Upgrade(c *fiber.Ctx) error
		Stream() fiber.Handler
	}

	liveHandler struct {
		accessService access.AccessService
		hub           *broadcast.Hub
	}
)

func NewLiveHandler(accessService access.AccessService, hub *broadcast.Hub) LiveHandler {
	return &liveHandler{
		accessService: accessService,
		hub:           hub,
	}
}

func (h *liveHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return presenters.ErrorResponse(c, fiber.StatusUpgradeRequired, domain.MessageFailedOpenLiveConnection, fiber.ErrUpgradeRequired)
	}

	principal := principalFrom(c)
	store, err := h.accessService.Authorize(c.Context(), c.Params("id"), principal.UserID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedOpenLiveConnection, err)
	}

	viewerID := c.Query("viewer_id")
	if viewerID == "" {
		viewerID = c.Get(domain.ViewerIDHeader)
	}

	c.Locals(liveStoreIDKey, store.ID.String())
	c.Locals(liveViewerIDKey, viewerID)
	return c.Next()
}

func (h *liveHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		storeID, _ := conn.Locals(liveStoreIDKey).(string)
		viewerID, _ := conn.Locals(liveViewerIDKey).(string)
		principal, _ := conn.Locals(domain.PrincipalLocalsKey).(domain.Principal)

		viewer, err := h.hub.Subscribe(storeID, viewerID, principal)
		if err != nil {
			log.Warnw("failed to subscribe live viewer", "store_id", storeID, "error", err)
			_ = conn.Close()
			return
		}

		log.Infow("live viewer connected", "store_id", storeID, "viewer_id", viewer.ID, "user_id", principal.UserID)
		h.hub.Serve(conn, viewer)
		log.Infow("live viewer disconnected", "store_id", storeID, "viewer_id", viewer.ID)
	})
}
