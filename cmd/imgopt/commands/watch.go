package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	var noManifest bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Optimize, then re-optimize whenever the build directory changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := c.runOptions()
			opts.NoManifest = noManifest
			return c.app.Watch(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&noManifest, "no-manifest", false, "Optimize every eligible image and skip the manifest")
	return cmd
}
