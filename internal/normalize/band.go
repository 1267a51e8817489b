package normalize

import (
	"strconv"
	"strings"

	"github.com/stagedoor/backend/internal/models"
	"github.com/tidwall/gjson"
)

// BandFields is the mapping table for band rows.
var BandFields = FieldMap{
	{Name: "id", Keys: []string{"id", "ID", "bandId", "band_id", "record_id", "recordId"}},
	{Name: "name", Keys: []string{"name", "Band Name", "bandName", "band_name", "Name"}},
	{Name: "genre", Keys: []string{"genre", "Genre", "genres", "Genres"}},
	{Name: "location", Keys: []string{"location", "Location", "hometown", "Hometown", "city"}},
	{Name: "growthMomentum", Keys: []string{"growthMomentum", "Growth Momentum", "growth_momentum", "growthMomentumScore"}},
	{Name: "fanEngagement", Keys: []string{"fanEngagement", "Fan Engagement", "fan_engagement", "fanEngagementScore"}},
	{Name: "digitalPopularity", Keys: []string{"digitalPopularity", "Digital Popularity", "digital_popularity", "digitalPopularityScore"}},
	{Name: "livePotential", Keys: []string{"livePotential", "Live Potential", "live_potential", "livePotentialScore"}},
	{Name: "venueFit", Keys: []string{"venueFit", "Venue Fit", "venue_fit", "genreFit", "Genre Fit"}},
	{Name: "geographicFit", Keys: []string{"geographicFit", "Geographic Fit", "geographic_fit", "localFit"}},
	{Name: "costEffectiveness", Keys: []string{"costEffectiveness", "Cost Effectiveness", "cost_effectiveness"}},
	{Name: "recommendation", Keys: []string{"recommendation", "Recommendation", "bookingRecommendation"}},
	{Name: "bookingStatus", Keys: []string{"bookingStatus", "Booking Status", "booking_status", "status"}},
	{Name: "hasPlayed", Keys: []string{"hasPlayed", "Has Played", "has_played", "played", "Played"}},
	{Name: "popularity", Keys: []string{"monthlyListeners", "Monthly Listeners", "spotifyMonthlyListeners", "followers", "Followers", "popularity"}},
	{Name: "hasYouTube", Keys: []string{"hasYouTube", "hasYoutubeChannel", "Has YouTube", "youtube_channel"}},
}

// Band normalizes one raw band row.
func Band(record gjson.Result) models.Band {
	get := func(name string) gjson.Result { return BandFields.Get(record, name) }

	b := models.Band{
		ID:       String(get("id"), ""),
		Name:     String(get("name"), "Unknown Band"),
		Genre:    String(get("genre"), ""),
		Location: String(get("location"), ""),
		Components: models.Components{
			GrowthMomentum:    Number(get("growthMomentum")),
			FanEngagement:     Number(get("fanEngagement")),
			DigitalPopularity: Number(get("digitalPopularity")),
			LivePotential:     Number(get("livePotential")),
			VenueFit:          Number(get("venueFit")),
			GeographicFit:     Number(get("geographicFit")),
			CostEffectiveness: Number(get("costEffectiveness")),
		},
		Recommendation: Recommendation(String(get("recommendation"), "")),
		BookingStatus:  BookingStatus(String(get("bookingStatus"), "")),
		HasPlayed:      Played(get("hasPlayed")),
		Popularity:     Number(get("popularity")),
		HasYouTube:     Flag(get("hasYouTube")),
	}
	return b
}

// Bands normalizes a whole band payload. Rows without an id get a
// positional one so they stay addressable.
func Bands(payload []byte) []models.Band {
	rows := Records(payload)
	out := make([]models.Band, 0, len(rows))
	for i, row := range rows {
		b := Band(row)
		if b.ID == "" {
			b.ID = "row-" + strconv.Itoa(i)
		}
		out = append(out, b)
	}
	return out
}

func enumKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "_")
}

// Recommendation maps free text like "Book Soon" onto the enum; unknown
// values become MAYBE.
func Recommendation(s string) models.Recommendation {
	switch r := models.Recommendation(enumKey(s)); r {
	case models.RecommendBookSoon, models.RecommendStrongConsider, models.RecommendMaybe, models.RecommendPass:
		return r
	}
	return models.RecommendMaybe
}

// BookingStatus maps free text onto the enum; unknown values become
// NOT_CONTACTED.
func BookingStatus(s string) models.BookingStatus {
	switch st := models.BookingStatus(enumKey(s)); st {
	case models.StatusNotContacted, models.StatusContacted, models.StatusNegotiating, models.StatusBooked, models.StatusPassed:
		return st
	}
	return models.StatusNotContacted
}

// Played maps the raw played marker onto the tri-state.
func Played(raw gjson.Result) models.PlayedState {
	v, ok := Unwrap(raw)
	if !ok {
		return models.PlayedNo
	}
	if v.Type == gjson.True {
		return models.PlayedYes
	}
	if v.Type != gjson.String {
		return models.PlayedNo
	}
	switch enumKey(v.Str) {
	case "YES", "TRUE", "PLAYED":
		return models.PlayedYes
	case "REMOVED", "BAND_REMOVED":
		return models.PlayedRemoved
	}
	return models.PlayedNo
}

// Views is the three-way split of the band list.
type Views struct {
	Discovery []models.Band `json:"discovery"`
	History   []models.Band `json:"history"`
	Rejected  []models.Band `json:"rejected"`
}

// Partition routes every band to exactly one view by its played state.
func Partition(bands []models.Band) Views {
	v := Views{
		Discovery: []models.Band{},
		History:   []models.Band{},
		Rejected:  []models.Band{},
	}
	for _, b := range bands {
		switch b.HasPlayed {
		case models.PlayedYes:
			v.History = append(v.History, b)
		case models.PlayedRemoved:
			v.Rejected = append(v.Rejected, b)
		default:
			v.Discovery = append(v.Discovery, b)
		}
	}
	return v
}

// View returns the named view; unknown names mean discovery.
func (v Views) View(name string) []models.Band {
	switch strings.ToLower(name) {
	case "history":
		return v.History
	case "rejected":
		return v.Rejected
	}
	return v.Discovery
}
