// Package scoring computes weighted band scores and the sort/filter helpers
// the booking views are built from.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/stagedoor/backend/internal/models"
)

// Score returns round-half-up(Σ component × weight).
func Score(c models.Components, w models.Components) int {
	sum := c.GrowthMomentum*w.GrowthMomentum +
		c.FanEngagement*w.FanEngagement +
		c.DigitalPopularity*w.DigitalPopularity +
		c.LivePotential*w.LivePotential +
		c.VenueFit*w.VenueFit +
		c.GeographicFit*w.GeographicFit +
		c.CostEffectiveness*w.CostEffectiveness
	// Products like 85*0.15 land a hair under .5; nudge before flooring.
	return int(math.Floor(sum + 0.5 + 1e-9))
}

// ApplyWeights returns copies of bands scored under the focus profile. An
// unknown focus returns bands as given.
func (ps Profiles) ApplyWeights(bands []models.Band, focus ProfileKey) []models.Band {
	profile, ok := ps[focus]
	if !ok {
		return bands
	}
	out := make([]models.Band, len(bands))
	for i, b := range bands {
		b.OverallScore = Score(b.Components, profile.Weights)
		out[i] = b
	}
	return out
}

// SortKey selects the ordering of a band list.
type SortKey string

const (
	SortScore      SortKey = "score"
	SortName       SortKey = "name"
	SortPopularity SortKey = "popularity"
)

// Sort returns a stably sorted copy. Unknown keys keep the input order.
func Sort(bands []models.Band, key SortKey) []models.Band {
	out := append([]models.Band(nil), bands...)
	var less func(a, b models.Band) bool
	switch key {
	case SortScore:
		less = func(a, b models.Band) bool { return a.OverallScore > b.OverallScore }
	case SortName:
		less = func(a, b models.Band) bool { return a.Name < b.Name }
	case SortPopularity:
		less = func(a, b models.Band) bool { return a.Popularity > b.Popularity }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Filter holds independent predicates; zero fields do not constrain.
type Filter struct {
	Recommendation models.Recommendation
	BookingStatus  models.BookingStatus
	Query          string
}

// Match reports whether b passes every set predicate.
func (f Filter) Match(b models.Band) bool {
	if f.Recommendation != "" && b.Recommendation != f.Recommendation {
		return false
	}
	if f.BookingStatus != "" && b.BookingStatus != f.BookingStatus {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" &&
		!strings.Contains(strings.ToLower(b.Name), strings.ToLower(q)) {
		return false
	}
	return true
}

// Apply returns the bands that match, preserving order.
func (f Filter) Apply(bands []models.Band) []models.Band {
	out := make([]models.Band, 0, len(bands))
	for _, b := range bands {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out
}

// RankOptions bundles one view request.
type RankOptions struct {
	Focus  ProfileKey
	Sort   SortKey
	Filter Filter
	Limit  int
}

// Rank weighs, filters, sorts and truncates.
func (ps Profiles) Rank(bands []models.Band, opts RankOptions) []models.Band {
	out := opts.Filter.Apply(ps.ApplyWeights(bands, opts.Focus))
	out = Sort(out, opts.Sort)
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// Recommend returns the top n bands by score under focus, skipping anything
// already marked PASS.
func (ps Profiles) Recommend(bands []models.Band, focus ProfileKey, n int) []models.Band {
	scored := ps.ApplyWeights(bands, focus)
	candidates := make([]models.Band, 0, len(scored))
	for _, b := range scored {
		if b.Recommendation != models.RecommendPass {
			candidates = append(candidates, b)
		}
	}
	candidates = Sort(candidates, SortScore)
	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}
