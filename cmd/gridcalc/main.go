// Package main provides the CLI entry point for gridcalc-go.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/ukaji3/gridcalc-go/internal/config"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/models"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/output"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc/server"
)

var (
	outputPath string
	pretty     bool
	xlsxPath   string
	configPath string
	verbose    bool
	fromPath   string
	fromSheet  string
	withStyles bool
	addr       string
	columns    int
	rows       int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridcalc",
		Short: "Spreadsheet grid engine",
		Long: `gridcalc-go evaluates spreadsheet grids driven by automation commands,
either replayed from a script or received over HTTP.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().IntVar(&columns, "columns", 0, "Number of grid columns (default 26)")
	rootCmd.PersistentFlags().IntVar(&rows, "rows", 0, "Number of grid rows (default 100)")

	replayCmd := &cobra.Command{
		Use:   "replay [script]",
		Short: "Run a command script and print the final grid as JSON",
		Long: `replay reads one command per line, either as JSON
{"method": "write", "args": ["A1", 10]} or as a call grid.write("A1", 10).
Use "-" to read the script from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runReplay,
	}
	replayCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	replayCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	replayCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export the final grid to this xlsx file")
	replayCmd.Flags().StringVar(&fromPath, "from", "", "Load cells from an xlsx file before replaying")
	replayCmd.Flags().StringVar(&fromSheet, "sheet", "", "Worksheet to load with --from (default: first sheet)")
	replayCmd.Flags().BoolVar(&withStyles, "styles", false, "Include conditional format results in the output")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080)")

	rootCmd.AddCommand(replayCmd, serveCmd)
	return rootCmd
}

// setup builds the logger and engine options from the config file and flags.
func setup(cmd *cobra.Command) (*config.File, gridcalc.Options, *slog.Logger, error) {
	cfg := &config.File{}
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, gridcalc.Options{}, nil, err
		}
		cfg = loaded
	}

	level := cfg.LogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	if cfg.JSONLogs() {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	}
	logger := slog.New(handler)

	opts := gridcalc.DefaultOptions()
	cfg.Apply(&opts)
	if columns > 0 {
		opts.Columns = columns
	}
	if rows > 0 {
		opts.Rows = rows
	}
	opts.Logger = logger
	return cfg, opts, logger, nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, opts, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	var script io.Reader
	if args[0] == "-" {
		script = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("file not found: %s", args[0])
		}
		defer f.Close()
		script = f
	}

	cmds, err := gridcalc.ParseScript(script)
	if err != nil {
		return fmt.Errorf("parse script: %w", err)
	}

	engine := gridcalc.New(opts)
	if fromPath != "" {
		if _, err := engine.ImportSheet(fromPath, fromSheet); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if _, err := engine.ExecuteAll(ctx, cmds); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}
	logger.Debug("replay finished", slog.Int("commands", len(cmds)))

	var styles map[models.Address]models.CellStyle
	if withStyles {
		styles = engine.ComputeStyles()
	}
	view := output.NewStateView(engine.State(), styles)
	if a, ok := engine.ActiveCell(); ok {
		view.ActiveCell = a.String()
	}
	jsonData, err := output.ToJSON(&view, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	}

	if xlsxPath != "" {
		xopts := output.XLSXOptions{SheetName: cfg.Export.SheetName, Computed: styles, PrintArea: true}
		if err := output.WriteXLSX(engine.State(), xlsxPath, xopts); err != nil {
			return fmt.Errorf("failed to write xlsx: %w", err)
		}
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, opts, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	listen := addr
	if listen == "" {
		listen = cfg.Server.Addr
	}
	if listen == "" {
		listen = ":8080"
	}

	router := server.SetupRouter(server.NewController(gridcalc.New(opts), logger))
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return server.ListenAndServe(ctx, listen, router, logger)
}
