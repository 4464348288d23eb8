package http

import (
	"github.com/cristianortiz/harvestBid/internal/notification/application"
	"github.com/cristianortiz/harvestBid/internal/shared/httpserver"
	"github.com/gofiber/fiber/v2"
)

// NotificationHandler serves the caller's own inbox only.
type NotificationHandler struct {
	inbox *application.Service
}

func NewNotificationHandler(inbox *application.Service) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

func (h *NotificationHandler) Register(r fiber.Router) {
	g := r.Group("/notifications")
	g.Get("/", h.list)
	g.Put("/read-all", h.markAllRead)
	g.Put("/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	me, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	inbox, err := h.inbox.List(c.UserContext(), me, c.QueryBool("unread"))
	if err != nil {
		return err
	}
	return c.JSON(inbox)
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	me, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.inbox.MarkRead(c.UserContext(), me, id)
	if err != nil {
		return err
	}
	return c.JSON(n)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	me, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	count, err := h.inbox.MarkAllRead(c.UserContext(), me)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updated": count})
}
