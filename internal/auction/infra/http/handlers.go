package http

import (
	"github.com/cristianortiz/harvestBid/internal/auction/application"
	"github.com/cristianortiz/harvestBid/internal/shared/httpserver"
	"github.com/gofiber/fiber/v2"
)

// AuctionHandler exposes the auction use cases over REST. It only translates requests, every
// rule lives in the application layer.
type AuctionHandler struct {
	auctionService application.AuctionService
}

func NewAuctionHandler(auctionService application.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionService: auctionService}
}

func (h *AuctionHandler) Register(r fiber.Router) {
	auctions := r.Group("/auctions")
	auctions.Get("/", h.list)
	auctions.Post("/", h.create)
	auctions.Get("/:id", h.get)
	auctions.Put("/:id", h.update)
	auctions.Delete("/:id", h.delete)
	auctions.Post("/:id/resolve", h.resolve)
	auctions.Post("/:id/result", h.decide)
	auctions.Get("/:id/bids", h.bids)

	bids := r.Group("/bids")
	bids.Post("/", h.placeBid)
	bids.Delete("/:id", h.withdrawBid)
}

func (h *AuctionHandler) list(c *fiber.Ctx) error {
	var q application.ListAuctionsDTO
	if err := httpserver.BindQuery(c, &q); err != nil {
		return err
	}
	// "mine" narrows the listing to the caller's own auctions
	if c.QueryBool("mine") {
		owner, err := httpserver.UserID(c)
		if err != nil {
			return err
		}
		q.OwnerID = owner
	}
	views, err := h.auctionService.ListAuctions(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"auctions": views, "count": len(views)})
}

func (h *AuctionHandler) create(c *fiber.Ctx) error {
	owner, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	var cmd application.CreateAuctionDTO
	if err := httpserver.BindJSON(c, &cmd); err != nil {
		return err
	}
	cmd.OwnerID = owner
	view, err := h.auctionService.CreateAuction(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

func (h *AuctionHandler) get(c *fiber.Ctx) error {
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.auctionService.GetAuctionView(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *AuctionHandler) update(c *fiber.Ctx) error {
	owner, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	var cmd application.UpdateAuctionDTO
	if err := httpserver.BindJSON(c, &cmd); err != nil {
		return err
	}
	cmd.AuctionID, cmd.OwnerID = id, owner
	view, err := h.auctionService.UpdateAuction(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (h *AuctionHandler) delete(c *fiber.Ctx) error {
	owner, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.auctionService.DeleteAuction(c.UserContext(), id, owner); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuctionHandler) resolve(c *fiber.Ctx) error {
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.auctionService.ResolveAuction(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *AuctionHandler) decide(c *fiber.Ctx) error {
	owner, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	var cmd application.DecideResultDTO
	if err := httpserver.BindJSON(c, &cmd); err != nil {
		return err
	}
	cmd.AuctionID, cmd.OwnerID = id, owner
	out, err := h.auctionService.DecideAuctionResult(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *AuctionHandler) bids(c *fiber.Ctx) error {
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.auctionService.GetAuctionBids(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// placeBid answers 201 for an accepted bid and 422 with the rejection for a refused one.
func (h *AuctionHandler) placeBid(c *fiber.Ctx) error {
	bidder, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	var cmd application.PlaceBidDTO
	if err := httpserver.BindJSON(c, &cmd); err != nil {
		return err
	}
	cmd.BidderID = bidder
	res, err := h.auctionService.PlaceBid(c.UserContext(), cmd)
	if err != nil {
		return err
	}
	if !res.Accepted {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(res)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *AuctionHandler) withdrawBid(c *fiber.Ctx) error {
	bidder, err := httpserver.UserID(c)
	if err != nil {
		return err
	}
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.auctionService.WithdrawBid(c.UserContext(), id, bidder); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
