package scoring

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/stagedoor/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// ProfileKey names a ranking focus.
type ProfileKey string

const (
	HiddenGems  ProfileKey = "hidden_gems"
	GenreFit    ProfileKey = "genre_fit"
	ProvenDraw  ProfileKey = "proven_draw"
	LocalBuzz   ProfileKey = "local_buzz"
	RisingStars ProfileKey = "rising_stars"
)

// weightTolerance is how far a profile's weight sum may drift from 1.0.
const weightTolerance = 0.01

var ErrWeightSum = errors.New("profile weights must sum to 1.0")

// Profile is a named weighting over the component scores. The weights reuse
// the Components shape so every profile covers the same seven components.
type Profile struct {
	Key         ProfileKey        `json:"key" yaml:"key"`
	Label       string            `json:"label" yaml:"label"`
	Description string            `json:"description" yaml:"description"`
	Weights     models.Components `json:"weights" yaml:"weights"`
}

// Sum returns the total of the profile's weights.
func (p Profile) Sum() float64 {
	w := p.Weights
	return w.GrowthMomentum + w.FanEngagement + w.DigitalPopularity + w.LivePotential +
		w.VenueFit + w.GeographicFit + w.CostEffectiveness
}

// Validate checks the weight sum invariant.
func (p Profile) Validate() error {
	if math.Abs(p.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("%s: %w (got %.3f)", p.Key, ErrWeightSum, p.Sum())
	}
	return nil
}

// Profiles is the set of ranking focuses keyed by name.
type Profiles map[ProfileKey]Profile

// Validate checks every profile in the set.
func (ps Profiles) Validate() error {
	var errs []error
	for _, key := range ps.Keys() {
		if err := ps[key].Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Keys returns the profile keys in a stable order.
func (ps Profiles) Keys() []ProfileKey {
	keys := make([]ProfileKey, 0, len(ps))
	for k := range ps {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// List returns the profiles in key order.
func (ps Profiles) List() []Profile {
	out := make([]Profile, 0, len(ps))
	for _, k := range ps.Keys() {
		out = append(out, ps[k])
	}
	return out
}

// DefaultProfiles are the built-in ranking focuses.
func DefaultProfiles() Profiles {
	return Profiles{
		HiddenGems: {
			Key:         HiddenGems,
			Label:       "Hidden Gems",
			Description: "Fast growing acts that fit the room before everyone else books them",
			Weights: models.Components{
				GrowthMomentum: 0.30, FanEngagement: 0.20, DigitalPopularity: 0.05,
				LivePotential: 0.15, VenueFit: 0.15, GeographicFit: 0.10, CostEffectiveness: 0.05,
			},
		},
		GenreFit: {
			Key:         GenreFit,
			Label:       "Genre Fit",
			Description: "Acts that sound like the venue",
			Weights: models.Components{
				GrowthMomentum: 0.05, FanEngagement: 0.10, DigitalPopularity: 0.05,
				LivePotential: 0.20, VenueFit: 0.40, GeographicFit: 0.10, CostEffectiveness: 0.10,
			},
		},
		ProvenDraw: {
			Key:         ProvenDraw,
			Label:       "Proven Draw",
			Description: "Acts with the audience to sell the room today",
			Weights: models.Components{
				GrowthMomentum: 0.05, FanEngagement: 0.25, DigitalPopularity: 0.25,
				LivePotential: 0.30, VenueFit: 0.05, GeographicFit: 0.05, CostEffectiveness: 0.05,
			},
		},
		LocalBuzz: {
			Key:         LocalBuzz,
			Label:       "Local Buzz",
			Description: "Acts with a following close to the venue",
			Weights: models.Components{
				GrowthMomentum: 0.10, FanEngagement: 0.25, DigitalPopularity: 0.10,
				LivePotential: 0.10, VenueFit: 0.10, GeographicFit: 0.30, CostEffectiveness: 0.05,
			},
		},
		RisingStars: {
			Key:         RisingStars,
			Label:       "Rising Stars",
			Description: "Momentum first",
			Weights: models.Components{
				GrowthMomentum: 0.40, FanEngagement: 0.15, DigitalPopularity: 0.20,
				LivePotential: 0.10, VenueFit: 0.05, GeographicFit: 0.05, CostEffectiveness: 0.05,
			},
		},
	}
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles starts from the defaults and applies the overrides in the
// YAML file at path. Overrides replace whole profiles and may add new keys.
// An empty path returns the defaults. The result is validated.
func LoadProfiles(path string) (Profiles, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking profiles: %w", err)
	}
	var file profileFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse ranking profiles: %w", err)
	}
	for _, p := range file.Profiles {
		if p.Key == "" {
			return nil, errors.New("ranking profile without key")
		}
		if p.Label == "" {
			p.Label = string(p.Key)
		}
		profiles[p.Key] = p
	}

	if err := profiles.Validate(); err != nil {
		return nil, err
	}
	return profiles, nil
}
