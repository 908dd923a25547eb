package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/report"
	"github.com/de-tools/sales-atlas/pkg/services/snapshot"

	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	profilesPath string
	profile      string
	reportName   string
	asOf         string
	reporter     *export.Reporter
}

func NewAnalyzeCmd(reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute one report over a snapshot",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.profilesPath, "profiles", DefaultProfilesPath(), "Path to the profiles.ini file")
	cmd.Flags().StringVar(&ac.profile, "profile", "", "Source profile to load the snapshot from")
	cmd.Flags().StringVar(&ac.reportName, "report", "", "Report to compute (see the reports command)")
	cmd.Flags().StringVar(&ac.asOf, "as-of", "", "Anchor date for recency, formatted YYYY-MM-DD (default today)")

	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("report")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	asOf := time.Now().UTC()
	if ac.asOf != "" {
		parsed, err := time.Parse("2006-01-02", ac.asOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of value %q: %w", ac.asOf, err)
		}
		asOf = parsed
	}

	if _, err := report.Describe(ac.reportName); err != nil {
		return fmt.Errorf("%w. Available reports: %v", err, report.Names())
	}

	registry, err := config.NewRegistry(ac.profilesPath)
	if err != nil {
		return err
	}

	snap, err := snapshot.NewService(registry).Load(ctx, ac.profile)
	if err != nil {
		return err
	}

	table, err := report.NewEngine(*snap).Run(ac.reportName, asOf)
	if err != nil {
		return err
	}

	return ac.reporter.Handle(table)
}
