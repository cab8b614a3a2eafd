package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rsclarke/citybus/internal/api"
	"github.com/rsclarke/citybus/internal/db"
	"github.com/rsclarke/citybus/internal/models"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	clientConfig
	name  string
	limit int
	json  bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List downloaded database archives",
	Long: `List the archives recorded in the ledger, newest first, with their extraction outcome.

With --name only the latest fetch of that database is shown.`,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	addClientFlags(historyCmd, &historyFlags.clientConfig)
	historyCmd.Flags().StringVar(&historyFlags.name, "name", "", "show only the latest fetch of this database")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "maximum number of entries (0 for all)")
	historyCmd.Flags().BoolVar(&historyFlags.json, "json", false, "print entries as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := historyFlags.load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.LedgerPath == "" {
		return fmt.Errorf("ledger path required (use --ledger flag or CITYBUS_LEDGER_PATH env var)")
	}

	database, err := db.Open(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer database.Close()

	fetches, err := listFetches(database)
	if err != nil {
		return err
	}

	infos := make([]api.FetchInfo, 0, len(fetches))
	for _, f := range fetches {
		infos = append(infos, api.FetchInfo{
			ID:             f.ID,
			Name:           f.Name,
			CurrentVersion: f.CurrentVersion,
			Archive:        f.ArchivePath,
			Size:           f.Size,
			SHA256:         f.SHA256,
			FetchedAt:      time.Unix(f.FetchedAt, 0).Format("2006-01-02 15:04:05"),
			Extraction:     f.ExtractionStatus,
			Error:          f.ExtractionError,
		})
	}

	out := cmd.OutOrStdout()
	if historyFlags.json {
		b, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No fetches recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-12s  %-10s  %-19s  %-10s  %s\n", "NAME", "VERSION", "FETCHED", "EXTRACTION", "SIZE")
	for _, info := range infos {
		fmt.Fprintf(out, "%-12s  %-10s  %-19s  %-10s  %d\n", info.Name, info.CurrentVersion, info.FetchedAt, info.Extraction, info.Size)
		if info.Error != nil {
			fmt.Fprintf(out, "  error: %s\n", *info.Error)
		}
	}

	return nil
}

func listFetches(database *sql.DB) ([]models.Fetch, error) {
	if historyFlags.name == "" {
		return db.ListFetches(database, historyFlags.limit)
	}
	f, err := db.LatestFetch(database, historyFlags.name)
	if err != nil || f == nil {
		return nil, err
	}
	return []models.Fetch{*f}, nil
}
