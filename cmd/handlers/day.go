package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dailybrief/internal/config"
	"dailybrief/internal/core"
	"dailybrief/internal/render"
	"dailybrief/internal/store"

	"github.com/spf13/cobra"
)

// NewDayCmd creates the day command group for stored day records
func NewDayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show stored days and edit journals",
		Long: `Read and write day records in the configured store.

Requires store.dsn (or STORE_DSN / DATABASE_URL), for example:
  export STORE_DSN=./data/dailybrief.db`,
	}

	cmd.AddCommand(newDayShowCmd())
	cmd.AddCommand(newDayJournalCmd())
	cmd.AddCommand(newDayListCmd())
	return cmd
}

func newDayShowCmd() *cobra.Command {
	var (
		user   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show <date>",
		Short: "Show a stored day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(args[0])
			if err != nil {
				return err
			}
			st, err := requireStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			rec, err := st.Get(cmd.Context(), user, date)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no record for %s", date)
			}
			if err != nil {
				return err
			}
			return printRecord(cmd, *rec, asJSON)
		},
	}

	cmd.Flags().StringVar(&user, "user", store.DefaultUser, "User id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}

func newDayJournalCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "journal <date> <text>",
		Short: "Set the journal entry of a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(args[0])
			if err != nil {
				return err
			}
			st, err := requireStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			rec, err := st.SaveJournal(cmd.Context(), user, date, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Journal saved for %s (%s)\n", rec.Date, rec.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", store.DefaultUser, "User id")
	return cmd
}

func newDayListCmd() *cobra.Command {
	var (
		user  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent stored days",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := requireStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			days, err := st.List(cmd.Context(), user, limit)
			if err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No days stored yet.")
				return nil
			}
			for _, d := range days {
				title := d.Research.Title
				if !d.HasBrief() {
					title = "(journal only)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s  %s\n", d.Date, d.Status, title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", store.DefaultUser, "User id")
	cmd.Flags().IntVar(&limit, "limit", 14, "Maximum number of days")
	return cmd
}

func requireStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return requireStoreFrom(cfg)
}

func requireStoreFrom(cfg *config.Config) (*store.Store, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("store not configured\n\n" +
			"Day commands need a record store. Please set one of:\n" +
			"  • store.dsn in .dailybrief.yaml\n" +
			"  • STORE_DSN or DATABASE_URL environment variable\n")
	}
	return st, nil
}

func parseDay(s string) (string, error) {
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.Format(core.DateLayout), nil
}

func printRecord(cmd *cobra.Command, rec core.DayRecord, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), render.Day(rec, render.DefaultWidth))
	return err
}
