package websocket

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cristianortiz/harvestBid/internal/auction/application"
	"github.com/cristianortiz/harvestBid/internal/shared/apperr"
	"github.com/cristianortiz/harvestBid/internal/shared/httpserver"
	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	sharedws "github.com/cristianortiz/harvestBid/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	localAuctionID = "ws_auction_id"
	localUserID    = "ws_user_id"
)

// AuctionWSHandler serves live auction rooms: it greets watchers, turns client_bid frames into
// PlaceBid calls and lets the hub fan out the resulting updates.
type AuctionWSHandler struct {
	auctionService application.AuctionService
	hub            *sharedws.Hub
}

func NewAuctionWSHandler(auctionService application.AuctionService, hub *sharedws.Hub) *AuctionWSHandler {
	return &AuctionWSHandler{
		auctionService: auctionService,
		hub:            hub,
	}
}

func (h *AuctionWSHandler) Register(r fiber.Router) {
	r.Get("/ws/auctions/:id", h.upgrade, websocket.New(h.serve))
}

// upgrade rejects plain HTTP calls and unknown auctions before the handshake. Browsers cannot
// set headers on a websocket, so the identity may also come as ?user_id=.
func (h *AuctionWSHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	id, err := httpserver.ParamID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.auctionService.GetAuctionView(c.UserContext(), id); err != nil {
		return err
	}

	user := c.Get(httpserver.UserHeader)
	if user == "" {
		user = c.Query("user_id")
	}
	if user != "" {
		if _, err := uuid.Parse(user); err != nil {
			return apperr.New(apperr.ErrValidation, "user_id must be a uuid")
		}
	}
	c.Locals(localAuctionID, id.String())
	c.Locals(localUserID, user)
	return c.Next()
}

func (h *AuctionWSHandler) serve(conn *websocket.Conn) {
	auctionID, _ := conn.Locals(localAuctionID).(string)
	userID, _ := conn.Locals(localUserID).(string)
	client := sharedws.NewClient(h.hub, conn, auctionID, userID, uuid.NewString())

	// queued before registration so no broadcast can close the queue under us
	if data, err := h.initialState(context.Background(), auctionID); err != nil {
		log.Warn("initial state failed", zap.String("auction_id", auctionID), zap.Error(err))
	} else {
		client.Send <- data
	}

	h.hub.RegisterClient(client)
	// pumps end when the peer leaves or the hub shuts down and closes the queue
	ctx := context.Background()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func (h *AuctionWSHandler) initialState(ctx context.Context, auctionID string) ([]byte, error) {
	id, err := uuid.Parse(auctionID)
	if err != nil {
		return nil, err
	}
	view, err := h.auctionService.GetAuctionView(ctx, id)
	if err != nil {
		return nil, err
	}
	bids, err := h.auctionService.GetAuctionBids(ctx, id)
	if err != nil {
		return nil, err
	}
	msg := ServerInitialStateMessage{BaseMessage: BaseMessage{Type: MessageTypeServerInitialState}}
	msg.Payload.View = view
	msg.Payload.Bids = bids.Bids
	return json.Marshal(msg)
}

// ListenForMessages drains the hub inbound queue until ctx is done.
func (h *AuctionWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("auction websocket handler listening")
	for {
		select {
		case <-ctx.Done():
			log.Info("auction websocket handler stopped")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *AuctionWSHandler) processMessage(ctx context.Context, client *sharedws.Client, data []byte) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		h.sendError(client, "invalid message format")
		return
	}
	switch base.Type {
	case MessageTypeClientBid:
		h.handleClientBid(ctx, client, data)
	default:
		h.sendError(client, "unknown message type")
	}
}

func (h *AuctionWSHandler) handleClientBid(ctx context.Context, client *sharedws.Client, data []byte) {
	bidder, err := uuid.Parse(client.UserID)
	if err != nil {
		h.sendError(client, "identify yourself with user_id to bid")
		return
	}
	var msg ClientBidMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(client, "invalid bid message format")
		return
	}
	auctionID := msg.Payload.AuctionID
	if auctionID == uuid.Nil {
		auctionID, _ = uuid.Parse(client.AuctionID)
	}
	if auctionID.String() != client.AuctionID {
		h.sendError(client, "auction id does not match this room")
		return
	}

	res, err := h.auctionService.PlaceBid(ctx, application.PlaceBidDTO{
		AuctionID: auctionID,
		BidderID:  bidder,
		Amount:    msg.Payload.Amount,
	})
	if err != nil {
		if apperr.HTTPStatus(err) == http.StatusInternalServerError {
			log.Error("websocket bid failed", zap.String("auction_id", client.AuctionID), zap.Error(err))
			h.sendError(client, "internal error")
			return
		}
		h.sendError(client, err.Error())
		return
	}

	// accepted bids reach the whole room through the broadcaster, the bidder also gets a receipt
	if res.Accepted {
		h.send(client, ServerBidAcceptedMessage{
			BaseMessage: BaseMessage{Type: MessageTypeServerBidAccepted},
			Payload:     res.Bid,
		})
		return
	}
	h.send(client, ServerBidRejectedMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerBidRejected},
		Payload:     res.Rejection,
	})
}

func (h *AuctionWSHandler) sendError(client *sharedws.Client, message string) {
	msg := ServerErrorMessage{BaseMessage: BaseMessage{Type: MessageTypeServerError}}
	msg.Payload.Error = message
	h.send(client, msg)
}

func (h *AuctionWSHandler) send(client *sharedws.Client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("marshal websocket message", zap.Error(err))
		return
	}
	h.hub.SendToClient(client, data)
}

// HubBroadcaster publishes auction views to the room of each auction.
type HubBroadcaster struct {
	hub *sharedws.Hub
}

func NewHubBroadcaster(hub *sharedws.Hub) *HubBroadcaster {
	return &HubBroadcaster{hub: hub}
}

func (b *HubBroadcaster) AuctionUpdated(view *application.AuctionViewDTO) {
	if view == nil || view.Auction == nil {
		return
	}
	data, err := json.Marshal(ServerAuctionUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerAuctionUpdate},
		Payload:     view,
	})
	if err != nil {
		log.Error("marshal auction update", zap.Error(err))
		return
	}
	b.hub.BroadcastMessageToAuction(view.Auction.ID.String(), data)
}
