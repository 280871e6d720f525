package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newOptimizeCmd() *cobra.Command {
	var noManifest bool

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Optimize changed images in the build directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := c.runOptions()
			opts.NoManifest = noManifest
			_, err := c.app.Optimize(cmd.Context(), opts)
			return err
		},
	}

	cmd.Flags().BoolVar(&noManifest, "no-manifest", false, "Optimize every eligible image and skip the manifest")
	return cmd
}
