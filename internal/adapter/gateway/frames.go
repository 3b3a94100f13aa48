package gateway

import (
	"encoding/json"

	"github.com/rl1809/trade-bot/internal/core/domain"
	"github.com/rl1809/trade-bot/internal/port"
)

type frameType string

const (
	frameLogOn       frameType = "logon"
	frameLogOnResult frameType = "logon_result"

	framePresence      frameType = "presence"
	frameFriendRequest frameType = "friend_request"
	frameFriendAccept  frameType = "friend_accept"
	frameFriendChat    frameType = "friend_chat"

	frameTradeProposed frameType = "trade_proposed"
	frameTradeAccept   frameType = "trade_accept"
	frameTradeDecline  frameType = "trade_decline"
	frameTradeOpen     frameType = "trade_open"
	frameTradeChat     frameType = "trade_chat"
	frameTradeAddItem  frameType = "trade_add_item"
	frameTradeItem     frameType = "trade_item"
	frameTradeReady    frameType = "trade_ready"
	frameTradeUnready  frameType = "trade_unready"
	frameTradeConfirm  frameType = "trade_confirm"
	frameTradeCancel   frameType = "trade_cancel"
	frameTradeEnded    frameType = "trade_ended"

	frameInventoryGet frameType = "inventory_get"
	frameInventory    frameType = "inventory"
)

// frame is the wire envelope. Payload is kept raw so it can be decoded per
// type.
type frame struct {
	ID      string          `json:"id,omitempty"`
	Type    frameType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type logOnPayload struct {
	Account      string `json:"account"`
	Password     string `json:"password"`
	GuardCode    string `json:"guard_code,omitempty"`
	MachineToken string `json:"machine_token,omitempty"`
}

const (
	logOnResultOK            = "ok"
	logOnResultGuardRequired = "guard_required"
	logOnResultInvalid       = "invalid_credentials"
)

type logOnResultPayload struct {
	Result       string `json:"result"`
	MachineToken string `json:"machine_token,omitempty"`
	Message      string `json:"message,omitempty"`
}

type presencePayload struct {
	Status string `json:"status"`
}

type partnerPayload struct {
	Partner string `json:"partner"`
}

type chatPayload struct {
	Partner string `json:"partner,omitempty"`
	Text    string `json:"text"`
}

type wireItem struct {
	AssetID string   `json:"asset_id"`
	Name    string   `json:"name"`
	Tags    []string `json:"tags,omitempty"`
}

func (w wireItem) item() domain.Item {
	return domain.Item{AssetID: w.AssetID, Name: w.Name, Tags: w.Tags}
}

type tradeItemPayload struct {
	Added bool     `json:"added"`
	Mine  bool     `json:"mine"`
	Item  wireItem `json:"item"`
}

type addItemPayload struct {
	AssetID string `json:"asset_id"`
}

type endedPayload struct {
	Result string `json:"result"`
}

type inventoryPayload struct {
	Items []wireItem `json:"items"`
}

func tradeResult(s string) port.TradeResult {
	switch port.TradeResult(s) {
	case port.TradeResultComplete, port.TradeResultCancelled, port.TradeResultTimedOut:
		return port.TradeResult(s)
	default:
		return port.TradeResultFailed
	}
}
