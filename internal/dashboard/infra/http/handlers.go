package http

import (
	"github.com/cristianortiz/harvestBid/internal/dashboard/application"
	"github.com/cristianortiz/harvestBid/internal/shared/httpserver"
	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboards *application.Service
}

func NewDashboardHandler(dashboards *application.Service) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

func (h *DashboardHandler) Register(r fiber.Router) {
	g := r.Group("/dashboard")
	g.Get("/owner", h.owner)
	g.Get("/bidder", h.bidder)
	g.Get("/recommendations", h.recommendations)

	r.Get("/bids/mine", h.bidHistory)
}

func (h *DashboardHandler) owner(c *fiber.Ctx) error {
	me, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	stats, err := h.dashboards.OwnerStatistics(c.UserContext(), me)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *DashboardHandler) bidder(c *fiber.Ctx) error {
	me, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	stats, err := h.dashboards.BidderStatistics(c.UserContext(), me)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *DashboardHandler) recommendations(c *fiber.Ctx) error {
	me, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	recs, err := h.dashboards.Recommendations(c.UserContext(), me, c.QueryInt("limit"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"auctions": recs})
}

func (h *DashboardHandler) bidHistory(c *fiber.Ctx) error {
	me, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	history, err := h.dashboards.BidHistory(c.UserContext(), me)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"bids": history})
}
