package port

import "github.com/rl1809/trade-bot/internal/core/domain"

// EventKind discriminates the events delivered by the trading network.
type EventKind string

const (
	EventFriendRequest EventKind = "friend_request"
	EventFriendChat    EventKind = "friend_chat"
	EventTradeProposed EventKind = "trade_proposed"
	EventTradeChat     EventKind = "trade_chat"
	EventTradeItem     EventKind = "trade_item"
	EventTradeReady    EventKind = "trade_ready"
	EventTradeUnready  EventKind = "trade_unready"
	EventTradeEnded    EventKind = "trade_ended"
)

// TradeResult is the channel's own classification of an ended negotiation.
type TradeResult string

const (
	TradeResultComplete  TradeResult = "complete"
	TradeResultCancelled TradeResult = "cancelled"
	TradeResultTimedOut  TradeResult = "timed_out"
	TradeResultFailed    TradeResult = "failed"
)

// Event is one decoded frame from the trading network. Fields beyond Kind are
// populated per kind: Partner for friend and proposal events, Text for chat,
// Mine/Added/Item for offer changes, Result for session end.
type Event struct {
	Kind    EventKind
	Partner string
	Text    string
	Mine    bool
	Added   bool
	Item    domain.Item
	Result  TradeResult
}
