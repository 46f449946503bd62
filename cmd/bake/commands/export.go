package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/bake/internal/app"
	"go.trai.ch/bake/internal/core/domain"
)

// addRequestFlags registers the flags that define an export.
func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "csv", "Output format (csv, geopackage, kml, spatialite)")
	cmd.Flags().StringP("sql", "q", "", "Query whose result is exported")
	cmd.Flags().String("layer", "", "Layer name inside the artifact (default \"cartodb-query\")")
	cmd.Flags().String("gn", "", "Geometry column used for spatial reference detection")
	cmd.Flags().StringSlice("skip", nil, "Columns left out of the export")
	cmd.Flags().Duration("timeout", 0, "Converter timeout (overrides the configuration)")
	cmd.Flags().String("host", "", "Database host")
	cmd.Flags().Int("port", 0, "Database port")
	cmd.Flags().String("user", "", "Database user")
	cmd.Flags().String("db", "", "Database name")
	_ = cmd.MarkFlagRequired("sql")
}

func exportOptions(cmd *cobra.Command, extra []string) app.ExportOptions {
	format, _ := cmd.Flags().GetString("format")
	sql, _ := cmd.Flags().GetString("sql")
	layer, _ := cmd.Flags().GetString("layer")
	gn, _ := cmd.Flags().GetString("gn")
	skip, _ := cmd.Flags().GetStringSlice("skip")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	user, _ := cmd.Flags().GetString("user")
	db, _ := cmd.Flags().GetString("db")

	return app.ExportOptions{
		Format:       format,
		SQL:          sql,
		Layer:        layer,
		GeometryHint: gn,
		SkipFields:   skip,
		ExtraArgs:    extra,
		Timeout:      timeout,
		Conn:         domain.ConnParams{Host: host, Port: port, User: user, DBName: db},
	}
}

func (c *CLI) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [-- converter args...]",
		Short: "Export a query result once and write it to a file or stdout",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := exportOptions(cmd, args)
			opts.Out, _ = cmd.Flags().GetString("out")
			return c.app.Export(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	addRequestFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	return cmd
}

func (c *CLI) newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the fingerprint identifying an export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := c.app.Key(exportOptions(cmd, nil))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
	addRequestFlags(cmd)
	return cmd
}
