package domain

import "strings"

// Item is one holdable asset in the bot's backpack. Items are captured into a
// Snapshot at session start and never mutated afterwards.
type Item struct {
	AssetID string
	Name    string
	Tags    []string
}

// HasTag reports whether the item carries the given category tag,
// case-insensitively.
func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Snapshot is a point-in-time view of the bot's holdings, in backpack order.
// It belongs to exactly one trade session and is dropped when that session
// ends.
type Snapshot []Item
