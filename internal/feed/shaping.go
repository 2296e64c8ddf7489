package feed

import (
	"math/rand/v2"
	"slices"
)

// IntN returns a uniform value in [0, n). It must be safe for concurrent use.
type IntN func(n int) int

// DefaultIntN is the unseeded package-level generator from math/rand/v2.
func DefaultIntN(n int) int {
	return rand.IntN(n)
}

// Shuffle returns a uniformly permuted copy of items. nil stays nil.
func Shuffle[T any](items []T, intN IntN) []T {
	if items == nil {
		return nil
	}
	if intN == nil {
		intN = DefaultIntN
	}

	out := slices.Clone(items)
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// OverlayVariety returns base with its featured article and picture of the day
// replaced by the ones from variety, where variety has them. News, most-read
// and on-this-day always stay with base.
func OverlayVariety(base, variety FeaturedBundle) FeaturedBundle {
	out := base
	if variety.FeaturedArticle != nil {
		a := *variety.FeaturedArticle
		out.FeaturedArticle = &a
	}
	if variety.PictureOfDay != nil {
		img := *variety.PictureOfDay
		out.PictureOfDay = &img
	}
	return out
}

// Reorder shuffles the news, on-this-day and most-read lists independently.
func Reorder(b FeaturedBundle, intN IntN) FeaturedBundle {
	out := b
	out.InTheNews = Shuffle(b.InTheNews, intN)
	out.OnThisDay = Shuffle(b.OnThisDay, intN)
	out.MostRead = Shuffle(b.MostRead, intN)
	return out
}
