package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/snapshot"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	duckdbsnapshot "github.com/de-tools/sales-atlas/pkg/store/duckdb/snapshot"

	"github.com/spf13/cobra"
)

type LoadCmd struct {
	profilesPath string
	profile      string
	dbPath       string
}

// NewLoadCmd ingests a snapshot from a source profile into a local DuckDB
// database, so later analyze runs and the web server can read it without
// touching the original source.
func NewLoadCmd() *cobra.Command {
	lc := &LoadCmd{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Ingest a snapshot into a local DuckDB database",
		RunE:  lc.run,
	}

	cmd.Flags().StringVar(&lc.profilesPath, "profiles", DefaultProfilesPath(), "Path to the profiles.ini file")
	cmd.Flags().StringVar(&lc.profile, "profile", "", "Source profile to load the snapshot from")
	cmd.Flags().StringVar(&lc.dbPath, "db", "sales-atlas.db", "DuckDB database file to write")

	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func (lc *LoadCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	registry, err := config.NewRegistry(lc.profilesPath)
	if err != nil {
		return err
	}

	snap, err := snapshot.NewService(registry).Load(ctx, lc.profile)
	if err != nil {
		return err
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: lc.dbPath})
	if err != nil {
		return fmt.Errorf("open duckdb at %s: %w", lc.dbPath, err)
	}
	defer db.Close()

	st, err := duckdbsnapshot.NewStore(db)
	if err != nil {
		return err
	}
	if err := st.Replace(ctx, snap); err != nil {
		return fmt.Errorf("ingest snapshot: %w", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"Loaded snapshot into %s: %d customers, %d products, %d orders, %d order items, %d sessions\n",
		lc.dbPath, stats.Customers, stats.Products, stats.Orders, stats.OrderItems, stats.Sessions)
	return nil
}
