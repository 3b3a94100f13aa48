package service

import (
	"strings"

	"github.com/rl1809/trade-bot/internal/core/domain"
)

// Allocate selects the items from snapshot that satisfy the query: they must
// carry the category tag and name the requested series. The first
// min(quantity, available) matches are returned in snapshot order, so
// identical snapshots yield identical allocations. Shortfall is how many
// requested items could not be covered; a partial allocation is not an error.
func Allocate(snapshot domain.Snapshot, categoryTag string, query domain.SeriesQuery) (chosen []domain.Item, shortfall int) {
	var matching []domain.Item
	for _, item := range snapshot {
		if item.HasTag(categoryTag) && hasSeriesMarker(item.Name, query.Series) {
			matching = append(matching, item)
		}
	}

	take := query.Quantity
	if take > len(matching) {
		take = len(matching)
	}

	return matching[:take], query.Quantity - take
}

// hasSeriesMarker reports whether name contains the token "#<series>" bounded
// on the right by a non-digit or end of string, case-insensitively. The bound
// check keeps series "2" from matching "Series #82" or "#23".
func hasSeriesMarker(name, series string) bool {
	lower := strings.ToLower(name)
	marker := "#" + strings.ToLower(series)

	for start := 0; start < len(lower); {
		i := strings.Index(lower[start:], marker)
		if i < 0 {
			return false
		}
		end := start + i + len(marker)
		if end >= len(lower) || !isDigit(lower[end]) {
			return true
		}
		start += i + 1
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
