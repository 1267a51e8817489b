// Package finance is the per-event break-even calculator for the venue and
// the performing act.
package finance

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("invalid break-even input")

// Risk is the qualitative break-even risk tier.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Inputs are the per-event assumptions. Percentages are 0-100.
type Inputs struct {
	ExpectedAttendance int `json:"expectedAttendance"`

	// Per-guest revenue
	TicketPrice          float64 `json:"ticketPrice"`
	CoverCharge          float64 `json:"coverCharge"`
	BarRevenuePerGuest   float64 `json:"barRevenuePerGuest"`
	MerchRevenuePerGuest float64 `json:"merchRevenuePerGuest"`

	// Cost of goods
	BarCOGSPct   float64 `json:"barCogsPct"`
	MerchCOGSPct float64 `json:"merchCogsPct"`

	// Revenue shares going to the venue; the act keeps the rest
	TicketSplitPct float64 `json:"ticketSplitPct"`
	MerchSplitPct  float64 `json:"merchSplitPct"`

	// Venue fixed costs
	Staff         float64 `json:"staff"`
	Utilities     float64 `json:"utilities"`
	Facility      float64 `json:"facility"`
	Marketing     float64 `json:"marketing"`
	Other         float64 `json:"other"`
	BandGuarantee float64 `json:"bandGuarantee"`

	// Act fixed costs (travel, production)
	BandExpenses float64 `json:"bandExpenses"`
}

// Validate rejects negative amounts and out-of-range percentages.
func (in Inputs) Validate() error {
	if in.ExpectedAttendance < 0 {
		return fmt.Errorf("%w: expected attendance cannot be negative", ErrInvalidInput)
	}
	amounts := map[string]float64{
		"ticketPrice": in.TicketPrice, "coverCharge": in.CoverCharge,
		"barRevenuePerGuest": in.BarRevenuePerGuest, "merchRevenuePerGuest": in.MerchRevenuePerGuest,
		"staff": in.Staff, "utilities": in.Utilities, "facility": in.Facility,
		"marketing": in.Marketing, "other": in.Other, "bandGuarantee": in.BandGuarantee,
		"bandExpenses": in.BandExpenses,
	}
	for name, v := range amounts {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a non-negative amount", ErrInvalidInput, name)
		}
	}
	pcts := map[string]float64{
		"barCogsPct": in.BarCOGSPct, "merchCogsPct": in.MerchCOGSPct,
		"ticketSplitPct": in.TicketSplitPct, "merchSplitPct": in.MerchSplitPct,
	}
	for name, v := range pcts {
		if v < 0 || v > 100 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s must be between 0 and 100", ErrInvalidInput, name)
		}
	}
	return nil
}

// FixedCosts is the venue's fixed cost total, guarantee included.
func (in Inputs) FixedCosts() float64 {
	return in.Staff + in.Utilities + in.Facility + in.Marketing + in.Other + in.BandGuarantee
}

// PartyResult is one side of the deal.
type PartyResult struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalCOGS       float64 `json:"totalCogs"`
	TotalFixedCosts float64 `json:"totalFixedCosts"`
	GrossProfit     float64 `json:"grossProfit"`
	NetProfit       float64 `json:"netProfit"`
	RevenuePerGuest float64 `json:"revenuePerGuest"`
	CostPerGuest    float64 `json:"costPerGuest"`
	ProfitPerGuest  float64 `json:"profitPerGuest"`
}

// Result is the calculator output.
type Result struct {
	Venue                      PartyResult `json:"venue"`
	Band                       PartyResult `json:"band"`
	ContributionMarginPerGuest float64     `json:"contributionMarginPerGuest"`
	BreakEvenAttendance        int         `json:"breakEvenAttendance"`
	ProfitMarginPct            float64     `json:"profitMarginPct"`
	Risk                       Risk        `json:"risk"`
}

func pct(v float64) float64 { return v / 100 }

func party(attendance int, revenue, cogs, fixed float64) PartyResult {
	p := PartyResult{
		TotalRevenue:    revenue,
		TotalCOGS:       cogs,
		TotalFixedCosts: fixed,
		GrossProfit:     revenue - cogs,
	}
	p.NetProfit = p.GrossProfit - fixed
	if attendance > 0 {
		n := float64(attendance)
		p.RevenuePerGuest = revenue / n
		p.CostPerGuest = (cogs + fixed) / n
		p.ProfitPerGuest = p.NetProfit / n
	}
	return p
}

// ContributionMargin is what each guest adds toward the venue's fixed costs.
func (in Inputs) ContributionMargin() float64 {
	ticketShare := in.TicketPrice * pct(in.TicketSplitPct)
	bar := in.BarRevenuePerGuest
	margin := ticketShare + in.CoverCharge + bar - bar*pct(in.BarCOGSPct)

	// The venue's merch cut is a commission on gross merch sales; merch COGS
	// stay with the act.
	margin += in.MerchRevenuePerGuest * pct(in.MerchSplitPct)
	return margin
}

// MaxBreakEven caps the break-even head count. Anything above it is
// unreachable, which RiskFor tiers as High.
const MaxBreakEven = math.MaxInt32

// BreakEven is ceil(fixed / contribution); 0 when the contribution is not
// positive, MaxBreakEven when the quotient does not fit.
func BreakEven(fixed, contribution float64) int {
	if contribution <= 0 {
		return 0
	}
	q := fixed / contribution
	if q >= MaxBreakEven || math.IsNaN(q) {
		return MaxBreakEven
	}
	// Round away float noise before the ceiling so 2000/27.5 stays 73.
	return int(math.Ceil(math.Round(q*1e9) / 1e9))
}

// RiskFor tiers break-even against expected attendance.
func RiskFor(breakEven, attendance int) Risk {
	be, att := float64(breakEven), float64(attendance)
	switch {
	case be > 1.2*att:
		return RiskHigh
	case be > 0.8*att:
		return RiskMedium
	}
	return RiskLow
}

// Calculate runs the single-pass break-even computation. It assumes the
// inputs were validated.
func Calculate(in Inputs) Result {
	n := float64(in.ExpectedAttendance)

	venueTicket := in.TicketPrice * pct(in.TicketSplitPct)
	bandTicket := in.TicketPrice - venueTicket
	venueMerch := in.MerchRevenuePerGuest * pct(in.MerchSplitPct)
	bandMerch := in.MerchRevenuePerGuest - venueMerch

	venueRevenue := n * (venueTicket + in.CoverCharge + in.BarRevenuePerGuest + venueMerch)
	venueCOGS := n * in.BarRevenuePerGuest * pct(in.BarCOGSPct)
	venue := party(in.ExpectedAttendance, venueRevenue, venueCOGS, in.FixedCosts())

	bandRevenue := n*(bandTicket+bandMerch) + in.BandGuarantee
	bandCOGS := n * in.MerchRevenuePerGuest * pct(in.MerchCOGSPct)
	band := party(in.ExpectedAttendance, bandRevenue, bandCOGS, in.BandExpenses)

	contribution := in.ContributionMargin()
	breakEven := BreakEven(in.FixedCosts(), contribution)

	margin := 0.0
	if venue.TotalRevenue > 0 {
		margin = venue.NetProfit / venue.TotalRevenue * 100
	}

	return Result{
		Venue:                      venue,
		Band:                       band,
		ContributionMarginPerGuest: contribution,
		BreakEvenAttendance:        breakEven,
		ProfitMarginPct:            margin,
		Risk:                       RiskFor(breakEven, in.ExpectedAttendance),
	}
}
