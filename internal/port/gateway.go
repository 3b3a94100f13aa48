package port

import (
	"context"

	"github.com/rl1809/trade-bot/internal/core/domain"
)

// Status is the bot's presence on the trading network.
type Status string

const (
	StatusOffline        Status = "offline"
	StatusLookingToTrade Status = "looking_to_trade"
	StatusBusy           Status = "busy"
)

type Presence interface {
	// SetStatus publishes the bot's availability to the network.
	SetStatus(ctx context.Context, status Status) error
}

type Messenger interface {
	// SendChat sends a plain friend-chat message to a partner.
	SendChat(ctx context.Context, partner, text string) error

	// AcceptFriend accepts a pending friend request.
	AcceptFriend(ctx context.Context, partner string) error
}

type Proposals interface {
	// AcceptTrade accepts a pending trade proposal from a partner.
	AcceptTrade(ctx context.Context, partner string) error

	// DeclineTrade declines a pending trade proposal from a partner.
	DeclineTrade(ctx context.Context, partner string) error
}

// TradeChannel drives the single active negotiation. All methods act on the
// trade most recently accepted via Proposals.
type TradeChannel interface {
	// Open enters the negotiation window with the partner.
	Open(ctx context.Context) error

	// AddItem places one of the bot's items into the offer.
	AddItem(ctx context.Context, item domain.Item) error

	// Chat sends a message inside the negotiation window.
	Chat(ctx context.Context, text string) error

	// SetReady signals the bot's readiness to finalize.
	SetReady(ctx context.Context) error

	// Confirm issues the final confirmation after mutual readiness.
	Confirm(ctx context.Context) error

	// Cancel aborts the negotiation.
	Cancel(ctx context.Context) error
}

type Inventory interface {
	// Load captures the bot's current holdings. Called once per session.
	Load(ctx context.Context) (domain.Snapshot, error)
}
