package scoring

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stagedoor/backend/internal/models"
)

func band(id, name string, c models.Components) models.Band {
	return models.Band{ID: id, Name: name, Components: c}
}

func flat(v float64) models.Components {
	return models.Components{
		GrowthMomentum: v, FanEngagement: v, DigitalPopularity: v, LivePotential: v,
		VenueFit: v, GeographicFit: v, CostEffectiveness: v,
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	for _, p := range DefaultProfiles().List() {
		if err := p.Validate(); err != nil {
			t.Errorf("%s: %v", p.Key, err)
		}
	}
	if len(DefaultProfiles()) != 5 {
		t.Errorf("want 5 built-in profiles")
	}
}

func TestApplyWeights(t *testing.T) {
	ps := DefaultProfiles()
	in := []models.Band{
		band("a", "Flat Eighty", flat(80)),
		band("b", "Growth Only", models.Components{GrowthMomentum: 100}),
	}

	out := ps.ApplyWeights(in, RisingStars)

	if out[0].OverallScore != 80 {
		t.Errorf("flat band score = %d, want 80", out[0].OverallScore)
	}
	if out[1].OverallScore != 40 {
		t.Errorf("growth band score = %d, want 40", out[1].OverallScore)
	}
	if in[0].OverallScore != 0 || in[1].OverallScore != 0 {
		t.Error("input bands were mutated")
	}
}

func TestApplyWeightsDeterministic(t *testing.T) {
	ps := DefaultProfiles()
	in := []models.Band{band("a", "A", models.Components{
		GrowthMomentum: 67, FanEngagement: 43, DigitalPopularity: 91, LivePotential: 12,
		VenueFit: 55, GeographicFit: 78, CostEffectiveness: 30,
	})}
	first := ps.ApplyWeights(in, HiddenGems)[0].OverallScore
	for i := 0; i < 20; i++ {
		if got := ps.ApplyWeights(in, HiddenGems)[0].OverallScore; got != first {
			t.Fatalf("run %d score %d != %d", i, got, first)
		}
	}
}

func TestApplyWeightsUnknownFocus(t *testing.T) {
	in := []models.Band{{ID: "a", OverallScore: 17}}
	out := DefaultProfiles().ApplyWeights(in, "loudest")
	if len(out) != 1 || out[0].OverallScore != 17 {
		t.Errorf("unknown focus should be identity, got %+v", out)
	}
}

func TestScoreRoundsHalfUp(t *testing.T) {
	w := models.Components{GrowthMomentum: 0.5, FanEngagement: 0.5}
	if got := Score(models.Components{GrowthMomentum: 1, FanEngagement: 0}, w); got != 1 {
		t.Errorf("0.5 rounds to %d, want 1", got)
	}
	if got := Score(models.Components{GrowthMomentum: 85, FanEngagement: 0}, models.Components{GrowthMomentum: 0.15}); got != 13 {
		t.Errorf("12.75 rounds to %d, want 13", got)
	}
}

func TestSortStable(t *testing.T) {
	in := []models.Band{
		{ID: "1", Name: "Charlie", OverallScore: 50, Popularity: 10},
		{ID: "2", Name: "alpha", OverallScore: 70, Popularity: 10},
		{ID: "3", Name: "Bravo", OverallScore: 50, Popularity: 30},
		{ID: "4", Name: "Alpha", OverallScore: 70, Popularity: 5},
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortScore, []string{"2", "4", "1", "3"}},
		{SortName, []string{"4", "3", "1", "2"}},
		{SortPopularity, []string{"3", "1", "2", "4"}},
		{"random", []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := Sort(in, tt.key)
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("order = %v, want %v", ids(got), tt.want)
				}
			}
		})
	}
	if in[0].ID != "1" {
		t.Error("Sort mutated its input")
	}
}

func ids(bands []models.Band) []string {
	out := make([]string, len(bands))
	for i, b := range bands {
		out[i] = b.ID
	}
	return out
}

func TestFilterComposes(t *testing.T) {
	in := []models.Band{
		{ID: "1", Name: "Whiskey Myers", Recommendation: models.RecommendBookSoon, BookingStatus: models.StatusContacted},
		{ID: "2", Name: "Midland", Recommendation: models.RecommendBookSoon, BookingStatus: models.StatusBooked},
		{ID: "3", Name: "Whiskey Shivers", Recommendation: models.RecommendPass, BookingStatus: models.StatusContacted},
	}

	byRec := Filter{Recommendation: models.RecommendBookSoon}
	byStatus := Filter{BookingStatus: models.StatusContacted}
	byName := Filter{Query: "WHISKEY"}
	all := Filter{Recommendation: models.RecommendBookSoon, BookingStatus: models.StatusContacted, Query: "whiskey"}

	a := byName.Apply(byStatus.Apply(byRec.Apply(in)))
	b := byRec.Apply(byName.Apply(byStatus.Apply(in)))
	c := all.Apply(in)

	for _, got := range [][]models.Band{a, b, c} {
		if len(got) != 1 || got[0].ID != "1" {
			t.Errorf("filter result = %v, want [1]", ids(got))
		}
	}
	if got := (Filter{}).Apply(in); len(got) != 3 {
		t.Errorf("empty filter kept %d, want 3", len(got))
	}
}

func TestRankAndRecommend(t *testing.T) {
	ps := DefaultProfiles()
	in := []models.Band{
		{ID: "low", Name: "Low", Components: flat(20)},
		{ID: "high", Name: "High", Components: flat(90)},
		{ID: "pass", Name: "Passed", Components: flat(99), Recommendation: models.RecommendPass},
		{ID: "mid", Name: "Mid", Components: flat(50)},
	}

	ranked := ps.Rank(in, RankOptions{Focus: ProvenDraw, Sort: SortScore, Limit: 2})
	if got := ids(ranked); len(got) != 2 || got[0] != "pass" || got[1] != "high" {
		t.Errorf("Rank = %v", got)
	}

	rec := ps.Recommend(in, ProvenDraw, 2)
	if got := ids(rec); len(got) != 2 || got[0] != "high" || got[1] != "mid" {
		t.Errorf("Recommend = %v", got)
	}
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	os.WriteFile(good, []byte(`
profiles:
  - key: late_night
    label: Late Night
    weights:
      livePotential: 0.6
      fanEngagement: 0.4
`), 0o644)

	ps, err := LoadProfiles(good)
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if _, ok := ps["late_night"]; !ok {
		t.Error("override profile missing")
	}
	if _, ok := ps[HiddenGems]; !ok {
		t.Error("defaults should survive overrides")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte(`
profiles:
  - key: hidden_gems
    weights:
      growthMomentum: 0.5
      fanEngagement: 0.2
`), 0o644)

	if _, err := LoadProfiles(bad); !errors.Is(err, ErrWeightSum) {
		t.Errorf("err = %v, want ErrWeightSum", err)
	}

	if ps, err := LoadProfiles(""); err != nil || len(ps) != 5 {
		t.Errorf("empty path = %d profiles, %v", len(ps), err)
	}
}
