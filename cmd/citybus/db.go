package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rsclarke/citybus/internal/api"
	"github.com/rsclarke/citybus/internal/db"
	"github.com/rsclarke/citybus/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dbFlags struct {
	clientConfig
	noWait bool
}

var dbCmd = &cobra.Command{
	Use:   "db <name>",
	Short: "Download and unpack a database archive",
	Long: `Download the database archive <name> to <name>.zip and unpack it into
<name>/ with 7z. Use "cities" for the list of cities.

A failed extraction is reported in the output but does not fail the command.
With --no-wait the command returns as soon as the archive is written and
reports the extraction as pending.`,
	Args: cobra.ExactArgs(1),
	RunE: runDB,
}

func init() {
	rootCmd.AddCommand(dbCmd)

	addClientFlags(dbCmd, &dbFlags.clientConfig)
	dbCmd.Flags().BoolVar(&dbFlags.noWait, "no-wait", false, "return without waiting for extraction")
}

func runDB(cmd *cobra.Command, args []string) error {
	c, cfg, err := dbFlags.newClient()
	if err != nil {
		return err
	}

	if cfg.LedgerPath != "" {
		database, err := db.Open(cfg.LedgerPath)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer database.Close()
		c.Recorder = db.NewLedger(database)

		prev, err := db.LatestFetch(database, args[0])
		if err != nil {
			logger.Warn("failed to read previous fetch", zap.Error(err))
		} else if prev != nil {
			logger.Info("previous fetch",
				logging.DBName(prev.Name),
				logging.Version(prev.CurrentVersion),
				zap.String("extraction", prev.ExtractionStatus))
		}
	}

	name := args[0]
	res, err := c.FetchDatabase(context.Background(), name)
	if err != nil {
		return err
	}

	out := api.DatabaseResponse{
		Name:           res.Name,
		CurrentVersion: res.CurrentVersion,
		Archive:        res.Job.Archive,
		OutputDir:      res.Job.OutputDir,
		Size:           res.Size,
		SHA256:         res.SHA256,
		TaskID:         res.Task.ID,
		Extraction:     "ok",
	}
	if dbFlags.noWait {
		out.Extraction = "pending"
	} else if err := res.Wait(); err != nil {
		out.Extraction = "failed"
		out.Error = err.Error()
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
