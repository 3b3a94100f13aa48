package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rl1809/trade-bot/internal/core/domain"
	"github.com/rl1809/trade-bot/internal/port"
)

var (
	ErrInventoryUnavailable = errors.New("inventory unavailable")
	ErrConfirmationFailed   = errors.New("confirmation failed")
)

// confirmDelay absorbs counterpart-side latency between mutual readiness and
// the confirmation actually being accepted by the channel.
const confirmDelay = 1500 * time.Millisecond

const (
	msgGreeting      = "Hi! Tell me which crates you want: !add <series> <amount>"
	msgUsage         = "I only understand: !add <series> <amount>"
	msgInventoryFail = "Sorry, I couldn't read my inventory. Cancelling the trade."
	msgConfirmFail   = "Something went wrong confirming the trade, sorry."
	msgReadyFail     = "Something broke on my side, I have to cancel. Sorry!"
	msgTimedOut      = "Our trade timed out. Message me again if you still want those crates."
)

// TradeSession owns one negotiation with a single partner: lifecycle phase,
// offer mutation log, readiness handshake and termination. All methods must
// be called from the bot's event loop; the session does no locking of its
// own.
type TradeSession struct {
	id      string
	partner string

	channel   port.TradeChannel
	inventory port.Inventory
	messenger port.Messenger
	log       *slog.Logger

	categoryTag string

	phase        domain.Phase
	snapshot     domain.Snapshot
	offer        domain.OfferState
	selfReady    bool
	partnerReady bool
	confirmTimer *time.Timer

	// schedule posts fn back into the owning event loop after d. The posted
	// closure runs on the loop goroutine, never concurrently with handlers.
	schedule func(d time.Duration, fn func()) *time.Timer

	// onEnd is invoked exactly once, from terminate, on every terminal path.
	onEnd func(outcome domain.Outcome)
}

func NewTradeSession(
	id, partner, categoryTag string,
	channel port.TradeChannel,
	inventory port.Inventory,
	messenger port.Messenger,
	schedule func(time.Duration, func()) *time.Timer,
	onEnd func(domain.Outcome),
	log *slog.Logger,
) *TradeSession {
	return &TradeSession{
		id:          id,
		partner:     partner,
		categoryTag: categoryTag,
		channel:     channel,
		inventory:   inventory,
		messenger:   messenger,
		schedule:    schedule,
		onEnd:       onEnd,
		log:         log.With("session", id, "partner", partner),
		phase:       domain.PhaseIdle,
	}
}

func (s *TradeSession) Phase() domain.Phase { return s.phase }

// Open enters the negotiation window and captures the inventory snapshot.
// Load failure is terminal: the partner is notified, the window cancelled and
// the session released. It is never retried.
func (s *TradeSession) Open(ctx context.Context) error {
	s.phase = domain.PhaseOpening

	if err := s.channel.Open(ctx); err != nil {
		s.terminate(domain.OutcomeError)
		return fmt.Errorf("open trade window: %w", err)
	}

	snapshot, err := s.inventory.Load(ctx)
	if err == nil && len(snapshot) == 0 {
		err = ErrInventoryUnavailable
	}
	if err != nil {
		s.log.Error("inventory load failed", "error", err)
		s.say(ctx, msgInventoryFail)
		if cancelErr := s.channel.Cancel(ctx); cancelErr != nil {
			s.log.Warn("cancel after load failure", "error", cancelErr)
		}
		s.terminate(domain.OutcomeError)
		return fmt.Errorf("load inventory: %w", err)
	}

	s.snapshot = snapshot
	s.phase = domain.PhaseInventoryLoaded
	s.log.Info("inventory loaded", "items", len(snapshot))

	s.phase = domain.PhaseNegotiating
	s.say(ctx, msgGreeting)
	return nil
}

// HandleChat parses a partner message and applies the resulting allocation.
// Unrecognized input gets the fixed guidance reply and changes nothing.
func (s *TradeSession) HandleChat(ctx context.Context, text string) {
	if s.phase != domain.PhaseNegotiating && s.phase != domain.PhaseAwaitingConfirm {
		return
	}

	query, err := ParseCommand(text)
	if err != nil {
		s.say(ctx, msgUsage)
		return
	}

	chosen, shortfall := Allocate(s.snapshot, s.categoryTag, query)
	if shortfall > 0 {
		s.say(ctx, fmt.Sprintf("I only have %d of series %s.", len(chosen), query.Series))
	}

	// OfferState is only mutated when the channel echoes the add back as an
	// offer-change event, so bot placements and partner edits share one path.
	for _, item := range chosen {
		if err := s.channel.AddItem(ctx, item); err != nil {
			s.log.Warn("add item failed", "asset", item.AssetID, "error", err)
		}
	}

	s.log.Info("allocation applied",
		"series", query.Series,
		"requested", query.Quantity,
		"placed", len(chosen),
		"shortfall", shortfall)
}

// HandleOfferChange observes an add/remove by either party. Changes are
// logged and mirrored into OfferState but never rejected, including partner
// removals of the bot's items.
func (s *TradeSession) HandleOfferChange(added, mine bool, item domain.Item) {
	if added {
		s.offer.Add(mine, item)
	} else {
		s.offer.Remove(mine, item)
	}
	s.log.Info("offer changed", "added", added, "mine", mine, "asset", item.AssetID, "name", item.Name)
}

// HandleReady records partner readiness and immediately signals the bot's
// own; the bot accepts whatever offer has accumulated. Once both flags are
// set the confirmation is scheduled after the compensating delay.
func (s *TradeSession) HandleReady(ctx context.Context) {
	if s.phase != domain.PhaseNegotiating {
		return
	}
	s.partnerReady = true

	if !s.selfReady {
		if err := s.channel.SetReady(ctx); err != nil {
			// A session that cannot signal readiness can never confirm;
			// leaving it open would hold the gate until the window times out.
			s.log.Error("set ready failed", "error", err)
			s.say(ctx, msgReadyFail)
			if cancelErr := s.channel.Cancel(ctx); cancelErr != nil {
				s.log.Warn("cancel after ready failure", "error", cancelErr)
			}
			s.terminate(domain.OutcomeError)
			return
		}
		s.selfReady = true
	}

	s.phase = domain.PhaseAwaitingConfirm
	s.confirmTimer = s.schedule(confirmDelay, func() {
		s.fireConfirm(ctx)
	})
	s.log.Info("mutual readiness, confirm scheduled", "delay", confirmDelay)
}

// HandleUnready reverts readiness without discarding the offer. A pending
// scheduled confirm is cancelled.
func (s *TradeSession) HandleUnready(ctx context.Context) {
	if s.phase != domain.PhaseAwaitingConfirm {
		return
	}
	s.partnerReady = false
	s.phase = domain.PhaseNegotiating
	s.stopConfirmTimer()
	s.log.Info("partner no longer ready")
}

// fireConfirm runs on the event loop after the compensating delay. The
// readiness and phase re-check makes a late timer harmless: an unready or a
// session end during the delay suppresses the confirm.
func (s *TradeSession) fireConfirm(ctx context.Context) {
	if s.phase != domain.PhaseAwaitingConfirm || !s.selfReady || !s.partnerReady {
		return
	}

	if err := s.channel.Confirm(ctx); err != nil {
		s.log.Error("confirmation failed", "error", fmt.Errorf("%w: %v", ErrConfirmationFailed, err))
		s.say(ctx, msgConfirmFail)
		s.terminate(domain.OutcomeError)
		return
	}

	s.terminate(domain.OutcomeComplete)
}

// HandleEnded processes the channel's own termination event.
func (s *TradeSession) HandleEnded(ctx context.Context, result port.TradeResult) {
	if s.phase == domain.PhaseTerminal {
		return
	}

	switch result {
	case port.TradeResultComplete:
		s.terminate(domain.OutcomeComplete)
	case port.TradeResultTimedOut:
		if err := s.messenger.SendChat(ctx, s.partner, msgTimedOut); err != nil {
			s.log.Warn("timeout notice failed", "error", err)
		}
		s.terminate(domain.OutcomeTimedOut)
	case port.TradeResultCancelled:
		s.terminate(domain.OutcomeCancelled)
	default:
		s.terminate(domain.OutcomeError)
	}
}

// terminate is the single exit point: it drops the snapshot and offer, stops
// any pending confirm and reports the outcome upstream. Safe to reach from
// any phase; only the first call has effect.
func (s *TradeSession) terminate(outcome domain.Outcome) {
	if s.phase == domain.PhaseTerminal {
		return
	}
	s.phase = domain.PhaseTerminal
	s.stopConfirmTimer()

	mine, theirs := s.offer.Counts()
	s.log.Info("session ended", "outcome", outcome, "offered", mine, "received", theirs)

	s.snapshot = nil
	s.offer = domain.OfferState{}

	s.onEnd(outcome)
}

func (s *TradeSession) stopConfirmTimer() {
	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
		s.confirmTimer = nil
	}
}

func (s *TradeSession) say(ctx context.Context, text string) {
	if err := s.channel.Chat(ctx, text); err != nil {
		s.log.Warn("trade chat failed", "error", err)
	}
}
