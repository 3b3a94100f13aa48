// Package gateway implements the WebSocket client for the trading network:
// the authentication handshake, presence and friend operations, the single
// negotiation channel, and the decoded event stream the bot loop consumes.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rl1809/trade-bot/internal/core/domain"
	"github.com/rl1809/trade-bot/internal/port"
)

var (
	ErrGuardRequired      = errors.New("guard code required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrClosed             = errors.New("gateway connection closed")
)

const (
	eventBuffer  = 64
	writeTimeout = 10 * time.Second
	logOnTimeout = 30 * time.Second
)

// Credentials carries everything LogOn may need. GuardCode and MachineToken
// are optional; the server decides whether the token is still trusted.
type Credentials struct {
	Account      string
	Password     string
	GuardCode    string
	MachineToken string
}

type Client struct {
	conn *websocket.Conn
	log  *slog.Logger

	events chan port.Event
	done   chan struct{}

	writeMu sync.Mutex

	invMu     sync.Mutex
	invWaiter chan domain.Snapshot
}

// Dial connects to the first reachable server in the list.
func Dial(ctx context.Context, servers []string, log *slog.Logger) (*Client, error) {
	var lastErr error
	for _, url := range servers {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			log.Warn("gateway dial failed", "server", url, "error", err)
			lastErr = err
			continue
		}
		log.Info("gateway connected", "server", url)
		return &Client{
			conn:   conn,
			log:    log,
			events: make(chan port.Event, eventBuffer),
			done:   make(chan struct{}),
		}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no servers configured")
	}
	return nil, fmt.Errorf("gateway dial: %w", lastErr)
}

// LogOn performs the authentication handshake and returns the device-trust
// token granted by the server, which may be empty. It must be called before
// Start; the caller handles ErrGuardRequired by soliciting a code and calling
// LogOn again.
func (c *Client) LogOn(ctx context.Context, creds Credentials) (string, error) {
	err := c.send(ctx, frameLogOn, logOnPayload{
		Account:      creds.Account,
		Password:     creds.Password,
		GuardCode:    creds.GuardCode,
		MachineToken: creds.MachineToken,
	})
	if err != nil {
		return "", fmt.Errorf("send logon: %w", err)
	}

	deadline := time.Now().Add(logOnTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return "", err
	}
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("read logon result: %w", err)
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.log.Warn("undecodable frame during logon", "error", err)
			continue
		}
		if f.Type != frameLogOnResult {
			continue
		}

		var result logOnResultPayload
		if err := json.Unmarshal(f.Payload, &result); err != nil {
			return "", fmt.Errorf("decode logon result: %w", err)
		}

		switch result.Result {
		case logOnResultOK:
			return result.MachineToken, nil
		case logOnResultGuardRequired:
			return "", ErrGuardRequired
		case logOnResultInvalid:
			return "", ErrInvalidCredentials
		default:
			return "", fmt.Errorf("logon rejected: %s", result.Message)
		}
	}
}

// Start launches the read loop. Events() yields decoded events until the
// connection drops, then closes.
func (c *Client) Start() {
	go c.readLoop()
}

func (c *Client) Events() <-chan port.Event {
	return c.events
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.events)
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("gateway read failed", "error", err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.log.Warn("undecodable frame", "error", err)
			continue
		}

		c.dispatch(f)
	}
}

func (c *Client) dispatch(f frame) {
	switch f.Type {
	case frameFriendRequest, frameTradeProposed:
		var p partnerPayload
		if !c.decode(f, &p) {
			return
		}
		kind := port.EventFriendRequest
		if f.Type == frameTradeProposed {
			kind = port.EventTradeProposed
		}
		c.emit(port.Event{Kind: kind, Partner: p.Partner})

	case frameFriendChat:
		var p chatPayload
		if !c.decode(f, &p) {
			return
		}
		c.emit(port.Event{Kind: port.EventFriendChat, Partner: p.Partner, Text: p.Text})

	case frameTradeChat:
		var p chatPayload
		if !c.decode(f, &p) {
			return
		}
		c.emit(port.Event{Kind: port.EventTradeChat, Text: p.Text})

	case frameTradeItem:
		var p tradeItemPayload
		if !c.decode(f, &p) {
			return
		}
		c.emit(port.Event{Kind: port.EventTradeItem, Added: p.Added, Mine: p.Mine, Item: p.Item.item()})

	case frameTradeReady:
		c.emit(port.Event{Kind: port.EventTradeReady})

	case frameTradeUnready:
		c.emit(port.Event{Kind: port.EventTradeUnready})

	case frameTradeEnded:
		var p endedPayload
		if !c.decode(f, &p) {
			return
		}
		c.emit(port.Event{Kind: port.EventTradeEnded, Result: tradeResult(p.Result)})

	case frameInventory:
		var p inventoryPayload
		if !c.decode(f, &p) {
			return
		}
		c.deliverInventory(p)

	default:
		c.log.Warn("unhandled frame", "type", f.Type)
	}
}

func (c *Client) decode(f frame, into any) bool {
	if err := json.Unmarshal(f.Payload, into); err != nil {
		c.log.Warn("bad frame payload", "type", f.Type, "error", err)
		return false
	}
	return true
}

// emit never drops: losing a session-lifecycle frame (an ended, a ready
// toggle) could strand the session gate forever. A full buffer means the
// consumer is gone or wedged, so the connection is torn down and the read
// loop exits, closing the event stream.
func (c *Client) emit(ev port.Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Error("event buffer overflow, closing connection", "kind", ev.Kind)
		c.conn.Close()
	}
}

func (c *Client) send(ctx context.Context, typ frameType, payload any) error {
	f := frame{ID: uuid.New().String(), Type: typ}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", typ, err)
		}
		f.Payload = raw
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal %s frame: %w", typ, err)
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s frame: %w", typ, err)
	}
	return nil
}

// SetStatus implements port.Presence.
func (c *Client) SetStatus(ctx context.Context, status port.Status) error {
	return c.send(ctx, framePresence, presencePayload{Status: string(status)})
}

// AcceptFriend implements port.Messenger.
func (c *Client) AcceptFriend(ctx context.Context, partner string) error {
	return c.send(ctx, frameFriendAccept, partnerPayload{Partner: partner})
}

// SendChat implements port.Messenger.
func (c *Client) SendChat(ctx context.Context, partner, text string) error {
	return c.send(ctx, frameFriendChat, chatPayload{Partner: partner, Text: text})
}

// AcceptTrade implements port.Proposals.
func (c *Client) AcceptTrade(ctx context.Context, partner string) error {
	return c.send(ctx, frameTradeAccept, partnerPayload{Partner: partner})
}

// DeclineTrade implements port.Proposals.
func (c *Client) DeclineTrade(ctx context.Context, partner string) error {
	return c.send(ctx, frameTradeDecline, partnerPayload{Partner: partner})
}

// Open implements port.TradeChannel.
func (c *Client) Open(ctx context.Context) error {
	return c.send(ctx, frameTradeOpen, nil)
}

// AddItem implements port.TradeChannel.
func (c *Client) AddItem(ctx context.Context, item domain.Item) error {
	return c.send(ctx, frameTradeAddItem, addItemPayload{AssetID: item.AssetID})
}

// Chat implements port.TradeChannel.
func (c *Client) Chat(ctx context.Context, text string) error {
	return c.send(ctx, frameTradeChat, chatPayload{Text: text})
}

// SetReady implements port.TradeChannel.
func (c *Client) SetReady(ctx context.Context) error {
	return c.send(ctx, frameTradeReady, nil)
}

// Confirm implements port.TradeChannel.
func (c *Client) Confirm(ctx context.Context) error {
	return c.send(ctx, frameTradeConfirm, nil)
}

// Cancel implements port.TradeChannel.
func (c *Client) Cancel(ctx context.Context) error {
	return c.send(ctx, frameTradeCancel, nil)
}

// Load implements port.Inventory: it requests the bot's holdings and waits
// for the inventory frame. One request may be outstanding at a time, which
// the one-session invariant already guarantees.
func (c *Client) Load(ctx context.Context) (domain.Snapshot, error) {
	waiter := make(chan domain.Snapshot, 1)

	c.invMu.Lock()
	if c.invWaiter != nil {
		c.invMu.Unlock()
		return nil, errors.New("inventory request already in flight")
	}
	c.invWaiter = waiter
	c.invMu.Unlock()

	defer func() {
		c.invMu.Lock()
		c.invWaiter = nil
		c.invMu.Unlock()
	}()

	if err := c.send(ctx, frameInventoryGet, nil); err != nil {
		return nil, fmt.Errorf("request inventory: %w", err)
	}

	select {
	case snapshot := <-waiter:
		return snapshot, nil
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) deliverInventory(p inventoryPayload) {
	snapshot := make(domain.Snapshot, 0, len(p.Items))
	for _, it := range p.Items {
		snapshot = append(snapshot, it.item())
	}

	c.invMu.Lock()
	waiter := c.invWaiter
	c.invMu.Unlock()

	if waiter == nil {
		c.log.Warn("unsolicited inventory frame", "items", len(snapshot))
		return
	}

	select {
	case waiter <- snapshot:
	default:
	}
}
