package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stagedoor/backend/internal/finance"
)

func inputFlags(fs *pflag.FlagSet, in *finance.Inputs) {
	fs.IntVar(&in.ExpectedAttendance, "attendance", 0, "Expected attendance")
	fs.Float64Var(&in.TicketPrice, "ticket", 0, "Ticket price")
	fs.Float64Var(&in.CoverCharge, "cover", 0, "Cover charge")
	fs.Float64Var(&in.BarRevenuePerGuest, "bar", 0, "Bar revenue per guest")
	fs.Float64Var(&in.MerchRevenuePerGuest, "merch", 0, "Merch revenue per guest")
	fs.Float64Var(&in.BarCOGSPct, "bar-cogs", 0, "Bar cost of goods, percent")
	fs.Float64Var(&in.MerchCOGSPct, "merch-cogs", 0, "Merch cost of goods, percent")
	fs.Float64Var(&in.TicketSplitPct, "ticket-split", 0, "Venue share of ticket sales, percent")
	fs.Float64Var(&in.MerchSplitPct, "merch-split", 0, "Venue share of merch sales, percent")
	fs.Float64Var(&in.Staff, "staff", 0, "Staff cost")
	fs.Float64Var(&in.Utilities, "utilities", 0, "Utilities")
	fs.Float64Var(&in.Facility, "facility", 0, "Facility cost")
	fs.Float64Var(&in.Marketing, "marketing", 0, "Marketing spend")
	fs.Float64Var(&in.Other, "other", 0, "Other fixed costs")
	fs.Float64Var(&in.BandGuarantee, "guarantee", 0, "Band guarantee")
	fs.Float64Var(&in.BandExpenses, "band-expenses", 0, "Band travel and production costs")
}

func printBreakEven(w io.Writer, res finance.Result, d finance.Display) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tVENUE\tBAND")
	rows := []struct {
		label       string
		venue, band string
	}{
		{"Revenue", d.Venue.TotalRevenue, d.Band.TotalRevenue},
		{"COGS", d.Venue.TotalCOGS, d.Band.TotalCOGS},
		{"Fixed costs", d.Venue.TotalFixedCosts, d.Band.TotalFixedCosts},
		{"Gross profit", d.Venue.GrossProfit, d.Band.GrossProfit},
		{"Net profit", d.Venue.NetProfit, d.Band.NetProfit},
		{"Profit per guest", d.Venue.ProfitPerGuest, d.Band.ProfitPerGuest},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.label, r.venue, r.band)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nContribution margin: %s per guest\n", d.ContributionMargin)
	if res.BreakEvenAttendance > 0 {
		fmt.Fprintf(w, "Break-even attendance: %d\n", res.BreakEvenAttendance)
	} else {
		fmt.Fprintln(w, "Break-even attendance: n/a (no positive contribution)")
	}
	fmt.Fprintf(w, "Profit margin: %.1f%%\nRisk: %s\n", res.ProfitMarginPct, res.Risk)
	return nil
}

func (a *app) breakEvenCmd() *cobra.Command {
	var in finance.Inputs
	cmd := &cobra.Command{
		Use:   "breakeven",
		Short: "Run the per-event break-even calculator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			offline, _ := cmd.Flags().GetBool("offline")
			currency, _ := cmd.Flags().GetString("currency")

			if offline {
				if err := in.Validate(); err != nil {
					return err
				}
				res := finance.Calculate(in)
				return printBreakEven(cmd.OutOrStdout(), res, res.Display(currency))
			}

			res, disp, err := a.client().BreakEven(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printBreakEven(cmd.OutOrStdout(), res, disp)
		},
	}
	inputFlags(cmd.Flags(), &in)
	cmd.Flags().Bool("offline", false, "Calculate locally instead of asking the API")
	cmd.Flags().String("currency", "USD", "Currency for --offline output")
	return cmd
}
