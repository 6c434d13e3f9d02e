package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Spok95/stock-tracker/internal/domain/analytics"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
	"github.com/Spok95/stock-tracker/internal/report"
	"github.com/Spok95/stock-tracker/internal/storage"
	"github.com/Spok95/stock-tracker/internal/tracker"
)

func (a *app) initCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty (or sample) state if none is saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, store, closeFn, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			_, err = store.Load(ctx)
			switch {
			case err == nil:
				return errors.New("state already exists")
			case !errors.Is(err, storage.ErrNotFound):
				return err
			}
			tr, err := tracker.Open(ctx, store, trackerOptions(cfg, seed))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized: %d products\n", len(tr.Products()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "start with the sample catalog")
	return cmd
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Stock per product and packed valuation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTracker(cmd.Context(), func(tr *tracker.Tracker) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PRODUCT\tUNIT\tLOOSE\tPACKED UNITS\tPACKED WEIGHT\tTOTAL")
				for _, s := range tr.Summary() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
						s.ProductID, s.Unit, s.Loose, s.PackedUnits, s.PackedWeight, s.TotalWeight)
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "packed valuation: %s\n", analytics.FormatMoney(tr.Valuation()))
				return nil
			})
		},
	}
}

func (a *app) alertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Products and variants below the low-stock thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withTracker(cmd.Context(), func(tr *tracker.Tracker) error {
				alerts := tr.Alerts()
				if len(alerts) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no alerts")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "KIND\tPRODUCT\tCURRENT\tTHRESHOLD\tUNIT")
				for _, al := range alerts {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", al.Kind, al.ProductLabel, al.CurrentStock, al.Threshold, al.Unit)
				}
				return w.Flush()
			})
		},
	}
}

func (a *app) salesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sales [range]",
		Short: "Daily and per-product sales for a date range (default: last 7 days)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "last 7 days"
			if len(args) == 1 {
				name = args[0]
			}
			return a.withTracker(cmd.Context(), func(tr *tracker.Tracker) error {
				dr, err := analytics.FindRange(tr.Today(), name)
				if err != nil {
					return err
				}
				f := dr.Filter()
				out := cmd.OutOrStdout()
				m := tr.Movements(f)
				fmt.Fprintf(out, "%s: %s .. %s\n", dr.Name, dr.From, dr.To)
				fmt.Fprintf(out, "operations %d: inward %s, packed %s, sold %s\n", m.Count, m.Inward, m.Packed, m.Sold)

				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "DATE\tUNITS\tWEIGHT\tORDERS")
				for _, d := range tr.DailySales(f) {
					fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", d.Date, d.Units, d.Weight, d.Orders)
				}
				fmt.Fprintln(w, "\t\t\t")
				fmt.Fprintln(w, "PRODUCT\tUNITS\tWEIGHT\tREVENUE")
				for _, s := range tr.SalesByProduct(f) {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.ProductID, s.Units, s.Weight, analytics.FormatMoney(s.Revenue))
				}
				return w.Flush()
			})
		},
	}
}

// verify не открывает трекер: повреждённое состояние нужно показать, а не отвергнуть молча.
func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that stock records equal the replay of the transaction log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, store, closeFn, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			doc, err := store.Load(ctx)
			if errors.Is(err, storage.ErrNotFound) {
				return errNoState
			}
			if err != nil {
				return err
			}
			st, err := tracker.StateFromDocument(doc)
			if err != nil {
				return fmt.Errorf("state is inconsistent: %w", err)
			}
			if err := st.Ledger.Verify(); err != nil {
				return fmt.Errorf("state is inconsistent: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d products, %d transactions, saved at %s\n",
				len(st.Catalog.Products()), st.Ledger.Len(), doc.SavedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var out, from, to string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the Excel report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f inventory.Filter
			var err error
			if from != "" {
				if f.From, err = inventory.ParseDate(from); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
			}
			if to != "" {
				if f.To, err = inventory.ParseDate(to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}
			return a.withTracker(cmd.Context(), func(tr *tracker.Tracker) error {
				now := tr.Now()
				if out == "" {
					out = fmt.Sprintf("stock_report_%s.xlsx", now.Format("20060102_150405"))
				}
				if err := writeFile(out, func(w io.Writer) error {
					return report.Write(w, report.Collect(tr, f, now))
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "written %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stock_report_<time>.xlsx)")
	cmd.Flags().StringVar(&from, "from", "", "first effective date of the transactions sheet, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last effective date of the transactions sheet, YYYY-MM-DD")
	return cmd
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
