package websocket

import (
	"github.com/cristianortiz/harvestBid/internal/auction/application"
	"github.com/google/uuid"
)

// MessageType tags every frame exchanged with auction watchers.
type MessageType string

const (
	MessageTypeClientBid           MessageType = "client_bid"
	MessageTypeServerAuctionUpdate MessageType = "server_auction_update"
	MessageTypeServerInitialState  MessageType = "server_initial_state"
	MessageTypeServerBidAccepted   MessageType = "server_bid_accepted"
	MessageTypeServerBidRejected   MessageType = "server_bid_rejected"
	MessageTypeServerError         MessageType = "server_error"
)

type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is a bid sent over the socket. The bidder is the connection's user, never
// a payload field.
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		AuctionID uuid.UUID `json:"auction_id"`
		Amount    int64     `json:"amount"`
	} `json:"payload"`
}

type ServerAuctionUpdateMessage struct {
	BaseMessage
	Payload *application.AuctionViewDTO `json:"payload"`
}

// ServerInitialStateMessage greets a new watcher with the current view and bid ladder.
type ServerInitialStateMessage struct {
	BaseMessage
	Payload struct {
		View *application.AuctionViewDTO `json:"view"`
		Bids []*application.BidDTO       `json:"bids"`
	} `json:"payload"`
}

type ServerBidAcceptedMessage struct {
	BaseMessage
	Payload *application.BidDTO `json:"payload"`
}

type ServerBidRejectedMessage struct {
	BaseMessage
	Payload *application.RejectionDTO `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
	} `json:"payload"`
}
