package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/bake/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve exports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listen, _ := cmd.Flags().GetString("listen")
			return c.app.Serve(cmd.Context(), app.ServeOptions{Listen: listen})
		},
	}
	cmd.Flags().StringP("listen", "l", "", "Address to listen on (overrides the configuration)")
	return cmd
}
