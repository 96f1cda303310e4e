package cmd

import "github.com/spf13/cobra"

// verifyCmd runs lint plus the remote checks
var verifyCmd = &cobra.Command{
	Use:   "verify [paths...]",
	Short: "Lint manifests and verify them against their indexes and repositories",
	Long: `verify runs every static check and then confirms the manifest against
the network: the declared index answers, every package exists on it, every
version constraint is satisfiable by a published version, and VCS-pinned
refs resolve in their repositories.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args, true)
	},
}
