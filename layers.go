package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"mapedit/internal/layer"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var layerCmd = &cobra.Command{
	Use:   "layer",
	Short: "Create and list editable layers",
}

var layerCreateCmd = &cobra.Command{
	Use:   "create PATH",
	Short: "Create an empty layer (.shp or .sqlite)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")
		name, _ := cmd.Flags().GetString("name")

		table, err := createLayer(cmd.Context(), args[0], name, typeName)
		if err != nil {
			return err
		}
		defer table.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s layer %s at %s\n", table.GeometryType(), table.Name(), args[0])
		return nil
	},
}

var layerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List layers in the layer directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := layer.OpenCatalog(cmd.Context(), cfg.LayerDir)
		if err != nil {
			return err
		}
		defer catalog.Close()

		return listLayers(cmd.Context(), cmd.OutOrStdout(), catalog.All())
	},
}

func init() {
	layerCreateCmd.Flags().String("type", "polygon", "Geometry type: point, multipoint, polyline or polygon")
	layerCreateCmd.Flags().String("name", "", "Layer name for SQLite layers (default: file name)")

	layerCmd.AddCommand(layerCreateCmd, layerListCmd)
}

// createLayer makes an empty layer whose storage is chosen by file extension
func createLayer(ctx context.Context, path, name, typeName string) (layer.Table, error) {
	g, err := layer.ParseGeometryType(typeName)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return layer.CreateShapefile(path, g)
	case layer.SQLiteExt:
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return layer.CreateSQLite(ctx, path, name, g)
	default:
		return nil, errors.Errorf("unsupported layer file %s: use .shp or %s", path, layer.SQLiteExt)
	}
}

func listLayers(ctx context.Context, w io.Writer, tables []layer.Table) error {
	if len(tables) == 0 {
		fmt.Fprintln(w, "No layers found")
		return nil
	}

	fmt.Fprintf(w, "%-24s %-12s %-9s %s\n", "NAME", "TYPE", "EDITABLE", "FEATURES")
	for _, table := range tables {
		records, err := table.Features(ctx)
		if err != nil {
			return errors.Wrapf(err, "reading %s", table.Name())
		}
		fmt.Fprintf(w, "%-24s %-12s %-9t %d\n", table.Name(), table.GeometryType(), table.Editable(), len(records))
	}
	return nil
}
