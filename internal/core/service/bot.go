package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/trade-bot/internal/core/domain"
	"github.com/rl1809/trade-bot/internal/port"
)

var ErrSessionBusy = errors.New("session busy")

const (
	msgBusy         = "I'm in the middle of another trade right now, try again in a bit."
	msgFriendlyHint = "Hi! Send me a trade and ask for crates with: !add <series> <amount>"
)

// Bot is the single logical thread of control: it consumes the gateway event
// stream and an internal action queue on one goroutine, so handlers for a
// session never interleave. The gate is the only state shared outside the
// loop.
type Bot struct {
	events    <-chan port.Event
	channel   port.TradeChannel
	inventory port.Inventory
	messenger port.Messenger
	proposals port.Proposals
	presence  port.Presence
	gate      port.Gate
	log       *slog.Logger

	categoryTag string

	actions chan func()
	session *TradeSession
}

func NewBot(
	events <-chan port.Event,
	channel port.TradeChannel,
	inventory port.Inventory,
	messenger port.Messenger,
	proposals port.Proposals,
	presence port.Presence,
	gate port.Gate,
	categoryTag string,
	log *slog.Logger,
) *Bot {
	return &Bot{
		events:      events,
		channel:     channel,
		inventory:   inventory,
		messenger:   messenger,
		proposals:   proposals,
		presence:    presence,
		gate:        gate,
		categoryTag: categoryTag,
		log:         log,
		actions:     make(chan func(), 16),
	}
}

// Run dispatches events until the context is cancelled or the event stream
// closes. Scheduled continuations (the confirm delay) arrive through the
// action queue and run on this same goroutine.
func (b *Bot) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-b.actions:
			fn()
		case ev, ok := <-b.events:
			if !ok {
				b.log.Info("event stream closed")
				if b.session != nil {
					b.session.HandleEnded(ctx, port.TradeResultFailed)
				}
				return nil
			}
			b.handle(ctx, ev)
		}
	}
}

func (b *Bot) handle(ctx context.Context, ev port.Event) {
	switch ev.Kind {
	case port.EventFriendRequest:
		if err := b.messenger.AcceptFriend(ctx, ev.Partner); err != nil {
			b.log.Warn("accept friend failed", "partner", ev.Partner, "error", err)
			return
		}
		b.log.Info("friend accepted", "partner", ev.Partner)

	case port.EventFriendChat:
		if err := b.messenger.SendChat(ctx, ev.Partner, msgFriendlyHint); err != nil {
			b.log.Warn("greeting failed", "partner", ev.Partner, "error", err)
		}

	case port.EventTradeProposed:
		b.handleProposal(ctx, ev.Partner)

	case port.EventTradeChat:
		if b.session == nil {
			return
		}
		b.session.HandleChat(ctx, ev.Text)

	case port.EventTradeItem:
		if b.session == nil {
			return
		}
		b.session.HandleOfferChange(ev.Added, ev.Mine, ev.Item)

	case port.EventTradeReady:
		if b.session == nil {
			return
		}
		b.session.HandleReady(ctx)

	case port.EventTradeUnready:
		if b.session == nil {
			return
		}
		b.session.HandleUnready(ctx)

	case port.EventTradeEnded:
		if b.session == nil {
			return
		}
		b.session.HandleEnded(ctx, ev.Result)

	default:
		b.log.Warn("unhandled event", "kind", ev.Kind)
	}
}

// handleProposal is the gate's sole caller: a proposal while a session is
// live is declined with the busy notice and the live session is untouched.
func (b *Bot) handleProposal(ctx context.Context, partner string) {
	held, err := b.gate.TryAcquire(ctx)
	if err != nil {
		b.log.Error("gate acquire failed", "partner", partner, "error", err)
		b.decline(ctx, partner)
		return
	}
	if !held {
		b.log.Info("proposal declined", "partner", partner, "reason", ErrSessionBusy)
		b.decline(ctx, partner)
		if chatErr := b.messenger.SendChat(ctx, partner, msgBusy); chatErr != nil {
			b.log.Warn("busy notice failed", "partner", partner, "error", chatErr)
		}
		return
	}

	if err := b.proposals.AcceptTrade(ctx, partner); err != nil {
		b.log.Error("accept trade failed", "partner", partner, "error", err)
		b.releaseGate(ctx)
		return
	}

	if err := b.presence.SetStatus(ctx, port.StatusBusy); err != nil {
		b.log.Warn("set busy status failed", "error", err)
	}

	id := uuid.New().String()
	b.session = NewTradeSession(
		id, partner, b.categoryTag,
		b.channel, b.inventory, b.messenger,
		b.scheduleAction,
		func(domain.Outcome) { b.endSession(ctx) },
		b.log,
	)
	b.log.Info("session opened", "session", id, "partner", partner)

	if err := b.session.Open(ctx); err != nil {
		// The session has already terminated and released the gate.
		b.log.Error("session setup failed", "session", id, "error", err)
	}
}

// endSession runs inside terminate, on the loop goroutine. It releases
// exclusivity and reverts presence regardless of outcome.
func (b *Bot) endSession(ctx context.Context) {
	b.session = nil
	b.releaseGate(ctx)
	if err := b.presence.SetStatus(ctx, port.StatusLookingToTrade); err != nil {
		b.log.Warn("restore status failed", "error", err)
	}
}

func (b *Bot) releaseGate(ctx context.Context) {
	if err := b.gate.Release(ctx); err != nil {
		b.log.Error("gate release failed", "error", err)
	}
}

func (b *Bot) decline(ctx context.Context, partner string) {
	if err := b.proposals.DeclineTrade(ctx, partner); err != nil {
		b.log.Warn("decline trade failed", "partner", partner, "error", err)
	}
}

// scheduleAction posts fn into the action queue after d, keeping scheduled
// work on the loop goroutine. The send blocks until the loop drains it: a
// dropped continuation would leave a session waiting on work that never runs.
func (b *Bot) scheduleAction(d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() {
		b.actions <- fn
	})
}
