package finance

import (
	"math"

	"github.com/Rhymond/go-money"
)

// PartyDisplay is PartyResult formatted for the dashboard.
type PartyDisplay struct {
	TotalRevenue    string `json:"totalRevenue"`
	TotalCOGS       string `json:"totalCogs"`
	TotalFixedCosts string `json:"totalFixedCosts"`
	GrossProfit     string `json:"grossProfit"`
	NetProfit       string `json:"netProfit"`
	RevenuePerGuest string `json:"revenuePerGuest"`
	CostPerGuest    string `json:"costPerGuest"`
	ProfitPerGuest  string `json:"profitPerGuest"`
}

// Display is the formatted view of a Result.
type Display struct {
	Currency           string       `json:"currency"`
	Venue              PartyDisplay `json:"venue"`
	Band               PartyDisplay `json:"band"`
	ContributionMargin string       `json:"contributionMargin"`
}

// Format renders amount in currency, rounded to the nearest minor unit.
func Format(amount float64, currency string) string {
	c := money.GetCurrency(currency)
	if c == nil {
		c = money.GetCurrency("USD")
		currency = "USD"
	}
	minor := int64(math.Round(amount * math.Pow10(c.Fraction)))
	return money.New(minor, currency).Display()
}

func (p PartyResult) display(currency string) PartyDisplay {
	return PartyDisplay{
		TotalRevenue:    Format(p.TotalRevenue, currency),
		TotalCOGS:       Format(p.TotalCOGS, currency),
		TotalFixedCosts: Format(p.TotalFixedCosts, currency),
		GrossProfit:     Format(p.GrossProfit, currency),
		NetProfit:       Format(p.NetProfit, currency),
		RevenuePerGuest: Format(p.RevenuePerGuest, currency),
		CostPerGuest:    Format(p.CostPerGuest, currency),
		ProfitPerGuest:  Format(p.ProfitPerGuest, currency),
	}
}

// Display formats every money column of r.
func (r Result) Display(currency string) Display {
	if money.GetCurrency(currency) == nil {
		currency = "USD"
	}
	return Display{
		Currency:           currency,
		Venue:              r.Venue.display(currency),
		Band:               r.Band.display(currency),
		ContributionMargin: Format(r.ContributionMarginPerGuest, currency),
	}
}
