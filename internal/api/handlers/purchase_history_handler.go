package handlers

import (
	"Go-Shopping-Sync/domain"
	"Go-Shopping-Sync/internal/api/presenters"
	"Go-Shopping-Sync/pkg/history"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	PurchaseHistoryHandler interface {
		FinishShop(c *fiber.Ctx) error
		GetHistory(c *fiber.Ctx) error
	}

	purchaseHistoryHandler struct {
		purchaseHistoryService history.PurchaseHistoryService
		validator              *validator.Validate
	}
)

func NewPurchaseHistoryHandler(purchaseHistoryService history.PurchaseHistoryService, validator *validator.Validate) PurchaseHistoryHandler {
	return &purchaseHistoryHandler{
		purchaseHistoryService: purchaseHistoryService,
		validator:              validator,
	}
}

// FinishShop answers with the bare {success, remainingItems} body viewer UIs
// expect rather than the usual envelope.
func (h *purchaseHistoryHandler) FinishShop(c *fiber.Ctx) error {
	req := new(domain.FinishShopRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if len(req.CheckedItems) == 0 {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedFinishShop, domain.ErrEmptyPurchase)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedFinishShop, err)
	}

	res, err := h.purchaseHistoryService.FinishShop(c.Context(), c.Params("id"), actorFrom(c), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedFinishShop, err)
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

func (h *purchaseHistoryHandler) GetHistory(c *fiber.Ctx) error {
	// Parse pagination parameters
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	items, count, err := h.purchaseHistoryService.GetHistory(c.Context(), c.Params("id"), principalFrom(c), page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetHistory, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"items": items,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetHistory)
}
