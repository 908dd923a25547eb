package commands

import (
	"fmt"
	"os/user"
	"path/filepath"
	"text/tabwriter"

	"github.com/de-tools/sales-atlas/pkg/services/report"
	"github.com/spf13/cobra"
)

// DefaultProfilesPath points at ~/.salesatlas/profiles.ini.
func DefaultProfilesPath() string {
	usr, err := user.Current()
	if err != nil {
		return "profiles.ini"
	}
	return filepath.Join(usr.HomeDir, ".salesatlas", "profiles.ini")
}

func NewReportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List available reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range report.Names() {
				d, err := report.Describe(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", d.Name, d.Title)
			}
			return w.Flush()
		},
	}
}
