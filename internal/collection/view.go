package collection

import (
	"slices"
	"strings"

	"github.com/and161185/gamevault/internal/model"
)

// Partition selects the tab a view is derived for.
type Partition string

const (
	PartitionCollection Partition = "collection"
	PartitionFavorites  Partition = "favorites" // favorite AND NOT wishlist
	PartitionWishlist   Partition = "wishlist"
)

// SortKey orders a view. Every key breaks ties by title, case-insensitively.
type SortKey string

const (
	SortAlphabetical SortKey = "alphabetical"
	SortPlatform     SortKey = "platform"
	SortPriceHigh    SortKey = "price-high"
	SortPriceLow     SortKey = "price-low"
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
)

// SortKeys lists the accepted sort keys in menu order.
var SortKeys = []SortKey{SortAlphabetical, SortPlatform, SortPriceHigh, SortPriceLow, SortNewest, SortOldest}

// ParsePartition accepts a partition name case-insensitively.
func ParsePartition(s string) (Partition, bool) {
	switch Partition(strings.ToLower(strings.TrimSpace(s))) {
	case PartitionCollection, "":
		return PartitionCollection, true
	case PartitionFavorites, "favourites", "fav":
		return PartitionFavorites, true
	case PartitionWishlist:
		return PartitionWishlist, true
	}
	return "", false
}

// ParseSortKey accepts a sort key case-insensitively; empty means alphabetical.
func ParseSortKey(s string) (SortKey, bool) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return SortAlphabetical, true
	}
	if slices.Contains(SortKeys, k) {
		return k, true
	}
	return "", false
}

// Filter describes one derived view.
type Filter struct {
	Partition Partition
	Search    string // case-insensitive title substring
	Platform  string // exact match; model.PlatformAll or empty disables it
	Sort      SortKey
}

// View filters and orders games. It never modifies its input and returns the
// same sequence for the same (games, filter).
func View(games []model.Game, f Filter) []model.Game {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	allPlatforms := model.IsAllPlatforms(f.Platform)

	out := make([]model.Game, 0, len(games))
	for _, g := range games {
		if !inPartition(g, f.Partition) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(g.Title), q) {
			continue
		}
		if !allPlatforms && g.Platform != f.Platform {
			continue
		}
		out = append(out, g)
	}

	// Canonical order first so the keyed sort never depends on the input order.
	slices.SortStableFunc(out, byTitle)
	if cmp := comparator(f.Sort); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func inPartition(g model.Game, p Partition) bool {
	switch p {
	case PartitionWishlist:
		return g.IsWishlist
	case PartitionFavorites:
		return g.IsFavorite && !g.IsWishlist
	default:
		return !g.IsWishlist
	}
}

func comparator(k SortKey) func(a, b model.Game) int {
	switch k {
	case SortPlatform:
		return func(a, b model.Game) int {
			if c := strings.Compare(a.Platform, b.Platform); c != 0 {
				return c
			}
			return byTitle(a, b)
		}
	case SortPriceHigh:
		return byPrice(true)
	case SortPriceLow:
		return byPrice(false)
	case SortNewest:
		return byYear(true)
	case SortOldest:
		return byYear(false)
	default:
		return nil
	}
}

// byPrice orders by current value. Wishlist items carry no meaningful price:
// whenever either side is one, the pair is ordered by title alone.
func byPrice(desc bool) func(a, b model.Game) int {
	return func(a, b model.Game) int {
		if a.IsWishlist || b.IsWishlist {
			return byTitle(a, b)
		}
		if c := compareInt(int64(a.CurrentValue), int64(b.CurrentValue), desc); c != 0 {
			return c
		}
		return byTitle(a, b)
	}
}

func byYear(desc bool) func(a, b model.Game) int {
	return func(a, b model.Game) int {
		if c := compareInt(int64(a.ReleaseYear), int64(b.ReleaseYear), desc); c != 0 {
			return c
		}
		return byTitle(a, b)
	}
}

func compareInt(a, b int64, desc bool) int {
	switch {
	case a == b:
		return 0
	case (a < b) != desc:
		return -1
	default:
		return 1
	}
}

// byTitle compares titles case-insensitively; exact title and id settle the rest.
func byTitle(a, b model.Game) int {
	if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}
