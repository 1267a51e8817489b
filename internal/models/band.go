package models

// Recommendation is the booking recommendation category for a band.
type Recommendation string

const (
	RecommendBookSoon       Recommendation = "BOOK_SOON"
	RecommendStrongConsider Recommendation = "STRONG_CONSIDER"
	RecommendMaybe          Recommendation = "MAYBE"
	RecommendPass           Recommendation = "PASS"
)

// BookingStatus tracks where the venue is in talks with a band.
type BookingStatus string

const (
	StatusNotContacted BookingStatus = "NOT_CONTACTED"
	StatusContacted    BookingStatus = "CONTACTED"
	StatusNegotiating  BookingStatus = "NEGOTIATING"
	StatusBooked       BookingStatus = "BOOKED"
	StatusPassed       BookingStatus = "PASSED"
)

// PlayedState decides which view a band shows up in.
type PlayedState string

const (
	PlayedNo      PlayedState = "NO"
	PlayedYes     PlayedState = "YES"
	PlayedRemoved PlayedState = "REMOVED"
)

// Components are the per-band sub-scores the ranking profiles weigh.
type Components struct {
	GrowthMomentum    float64 `json:"growthMomentum" yaml:"growthMomentum"`
	FanEngagement     float64 `json:"fanEngagement" yaml:"fanEngagement"`
	DigitalPopularity float64 `json:"digitalPopularity" yaml:"digitalPopularity"`
	LivePotential     float64 `json:"livePotential" yaml:"livePotential"`
	VenueFit          float64 `json:"venueFit" yaml:"venueFit"`
	GeographicFit     float64 `json:"geographicFit" yaml:"geographicFit"`
	CostEffectiveness float64 `json:"costEffectiveness" yaml:"costEffectiveness"`
}

// Band is a normalized band record. The automation store owns it; OverallScore
// is always recomputed and never written back.
type Band struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Genre          string         `json:"genre,omitempty"`
	Location       string         `json:"location,omitempty"`
	Components     Components     `json:"components"`
	OverallScore   int            `json:"overallScore"`
	Recommendation Recommendation `json:"recommendation"`
	BookingStatus  BookingStatus  `json:"bookingStatus"`
	HasPlayed      PlayedState    `json:"hasPlayed"`
	Popularity     float64        `json:"popularity"`
	HasYouTube     bool           `json:"hasYouTube"`
}

// Band status actions understood by the automation platform.
const (
	BandActionPlayed  = "Yes"
	BandActionRemoved = "Band Removed"
)
