package commands

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/imgopt/internal/adapters/fs"
	"go.trai.ch/imgopt/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newReconcileCmd() *cobra.Command {
	var (
		sitemap string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Point the sitemap at optimized build outputs and publish the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := c.runOptions()
			opts.Sitemap = sitemap

			if output == "" || output == "-" {
				return c.app.Reconcile(cmd.Context(), opts, cmd.OutOrStdout())
			}

			// The output may be the sitemap itself, so it is only replaced
			// once the result is complete.
			var buf bytes.Buffer
			if err := c.app.Reconcile(cmd.Context(), opts, &buf); err != nil {
				return err
			}

			perm := os.FileMode(domain.FilePerm)
			if info, err := os.Stat(output); err == nil {
				perm = info.Mode().Perm()
			}
			if err := fs.WriteFileAtomic(output, buf.Bytes(), perm); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to write output"), "path", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sitemap, "sitemap", "", "Sitemap file to reconcile")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")
	return cmd
}
