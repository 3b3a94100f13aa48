package domain

type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseOpening         Phase = "opening"
	PhaseInventoryLoaded Phase = "inventory_loaded"
	PhaseNegotiating     Phase = "negotiating"
	PhaseAwaitingConfirm Phase = "awaiting_confirm"
	PhaseTerminal        Phase = "terminal"
)

// Outcome classifies how a session terminated.
type Outcome string

const (
	OutcomeComplete  Outcome = "complete"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeError     Outcome = "error"
)

// SeriesQuery is a parsed partner request: which crate series, how many.
type SeriesQuery struct {
	Series   string
	Quantity int
}

// OfferState tracks the items both parties have placed into the negotiation.
// It is mutated only by explicit add/remove events and discarded with the
// session.
type OfferState struct {
	Mine   []Item
	Theirs []Item
}

// Add records an item placed into the offer by the given side.
func (o *OfferState) Add(mine bool, item Item) {
	if mine {
		o.Mine = append(o.Mine, item)
	} else {
		o.Theirs = append(o.Theirs, item)
	}
}

// Remove drops an item from the offer by asset ID. Removing an item that was
// never placed is a no-op; removals are observed, not enforced.
func (o *OfferState) Remove(mine bool, item Item) {
	side := &o.Theirs
	if mine {
		side = &o.Mine
	}
	for i, it := range *side {
		if it.AssetID == item.AssetID {
			*side = append((*side)[:i], (*side)[i+1:]...)
			return
		}
	}
}

// Counts returns the number of items each side currently has in the offer.
func (o *OfferState) Counts() (mine, theirs int) {
	return len(o.Mine), len(o.Theirs)
}
