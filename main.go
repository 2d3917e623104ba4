package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"mapedit/internal/cache"
	"mapedit/internal/config"
	"mapedit/internal/debug"
	"mapedit/internal/geo"
	"mapedit/internal/layer"
	"mapedit/internal/ui"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RootCmd runs the editor when called without a subcommand
var RootCmd = &cobra.Command{
	Use:   "mapedit",
	Short: "mapedit: terminal vertex editor for shapefile and SQLite layers",
	Long: `
mapedit draws a Natural Earth basemap in the terminal and lets you add point,
polyline and polygon features to editable layers with the mouse. Tap to add
vertices, tap a vertex or midpoint handle to select it, and tap again to move it.
`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              run,
}

var (
	cfg     config.Config
	logFile *os.File
)

func init() {
	config.RegisterFlags(RootCmd.PersistentFlags())
	RootCmd.AddCommand(layerCmd)
}

func main() {
	// Values from .env fill in MAPEDIT_* variables that are not already set
	_ = godotenv.Load(".env")

	err := RootCmd.Execute()
	if logFile != nil {
		debug.Sync()
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves flags, environment and config file into cfg and
// starts the debug log
func loadConfig(cmd *cobra.Command, args []string) error {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return err
	}

	cfg, err = config.Load(v)
	if err != nil {
		return err
	}

	if cfg.DebugLog != "" {
		f, err := os.Create(cfg.DebugLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create debug log: %v\n", err)
		} else {
			logFile = f
			debug.SetOutput(f)
			debug.Log("mapedit debug log started")
		}
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Offline {
		fmt.Println("Offline: using cached basemap data only")
	} else {
		fmt.Println("Checking Natural Earth data...")
		manager, err := cache.NewManager(cfg.CacheDir)
		if err != nil {
			return errors.Wrap(err, "failed to initialize cache")
		}
		if err := manager.EnsureData(ctx); err != nil {
			return errors.Wrap(err, "failed to download map data")
		}
	}

	fmt.Println("Loading basemap...")
	basemap := geo.NewShapefileLoader(cfg.CacheDir).LoadAll()
	fmt.Printf("Loaded %d feature types\n", len(basemap))

	catalog, err := layer.OpenCatalog(ctx, cfg.LayerDir)
	if err != nil {
		return err
	}
	defer catalog.Close()

	tables := catalog.Editable()
	fmt.Printf("Found %d editable layers in %s\n", len(tables), catalog.Dir())

	app, err := ui.NewApp(cfg, tables, basemap)
	if err != nil {
		return errors.Wrap(err, "failed to create application")
	}

	// Run with panic recovery to ensure terminal is always restored
	func() {
		defer func() {
			if r := recover(); r != nil {
				debug.Error("panic: %v", r)
				fmt.Fprintf(os.Stderr, "\nPanic: %v\n", r)
			}
		}()

		go func() {
			<-ctx.Done()
			app.Stop()
		}()

		if err = app.Run(); err != nil {
			err = errors.Wrap(err, "application error")
		}
	}()

	if err == nil {
		fmt.Println("\nGoodbye!")
	}
	return err
}
