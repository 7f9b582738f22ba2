package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/costume-shop/cmd/shop/output"
	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/store"
)

// listCmd prints the rows of one table
var listCmd = &cobra.Command{
	Use:       "list [costumes|customers|orders]",
	Short:     "Print costumes, customers or orders",
	ValidArgs: []string{"costumes", "customers", "orders"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Long: `Print every row of one table in id order.

Examples:
  shop list costumes
  shop list orders --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(ctx context.Context, what string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, db, err := openStore(ctx, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := fetch(ctx, st, what)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{what: rows})
	}
	return printTable(os.Stdout, rows)
}

func fetch(ctx context.Context, st *store.Store, what string) (any, error) {
	switch what {
	case "costumes":
		return st.Costumes.All(ctx)
	case "customers":
		return st.Customers.All(ctx)
	case "orders":
		return st.Orders.All(ctx)
	default:
		return nil, fmt.Errorf("unknown table %q", what)
	}
}

func printTable(out io.Writer, rows any) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	switch rows := rows.(type) {
	case []models.Costume:
		if len(rows) == 0 {
			output.Muted("No costumes")
			return nil
		}
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tGENDER\tSIZE\tTYPE\tSTOCK\tPRICE")
		for _, c := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%.2f\n",
				c.ID, c.Name, c.Category, c.Gender, c.Size, c.Type, c.StockCount, c.Price)
		}
	case []models.Customer:
		if len(rows) == 0 {
			output.Muted("No customers")
			return nil
		}
		fmt.Fprintln(w, "ID\tNAME\tEMAIL")
		for _, c := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.FullName, c.Email)
		}
	case []models.Order:
		if len(rows) == 0 {
			output.Muted("No orders")
			return nil
		}
		fmt.Fprintln(w, "ID\tPLACED\tSTATUS\tCUSTOMER")
		for _, o := range rows {
			placed := "-"
			if o.DatePlaced != nil {
				placed = o.DatePlaced.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%d\t%s\t%s %s\t%d\n", o.ID, placed, output.StatusIcon(string(o.Status)), o.Status, o.CustomerID)
		}
	default:
		return fmt.Errorf("cannot print %T", rows)
	}

	return w.Flush()
}
