package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"

	"github.com/fatih/color"
	isatty "github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/codesearchtools/seeker/pkg/backend"
	"github.com/codesearchtools/seeker/pkg/dispatch"
	"github.com/codesearchtools/seeker/pkg/engine"
)

// special handling for Windows, on all other platforms these resolve to
// os.Stdout and os.Stderr, thanks to https://github.com/mattn/go-colorable
var (
	stdout = color.Output
	stderr = color.Error

	okStatus   = color.New(color.FgGreen, color.Bold).SprintFunc()("√")  // √
	warnStatus = color.New(color.FgYellow, color.Bold).SprintFunc()("‼") // ‼
	failStatus = color.New(color.FgRed, color.Bold).SprintFunc()("×")    // ×
)

var (
	directory      string
	heading        bool
	forceTUI       bool
	reportBackends bool
	reportIndex    bool
	logLevel       string
	rgPath         string
	agPath         string
)

// RootCmd represents the root Cobra command.
var RootCmd = &cobra.Command{
	Use:   "seeker [flags] [query]",
	Short: "seeker searches a project's source tree interactively or one-shot",
	Long: `seeker searches a project's source tree by literal text, regular
expression, symbol name, or fuzzy path, live-updating results as you type.

The query's leading character selects the mode:
  #name    symbol search
  $name    variable search (reserved)
  @path    fuzzy path search
  >path    fuzzy path search
  /regex   regular-expression search
  anything else is a literal search`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
		log.SetLevel(level)
		return nil
	},
	RunE: runRoot,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&directory, "directory", "d", ".", "Directory to search")
	RootCmd.PersistentFlags().BoolVar(&heading, "heading", false, "Group one-shot results by filename")
	RootCmd.PersistentFlags().BoolVar(&forceTUI, "tui", false, "Force interactive mode even when stdout is not a terminal")
	RootCmd.PersistentFlags().BoolVar(&reportBackends, "backends", false, "Print search backend availability and exit")
	RootCmd.PersistentFlags().BoolVar(&reportIndex, "index", false, "Build the symbol index, print a summary, and exit")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", log.WarnLevel.String(), "Log level: panic, fatal, error, warn, info, debug")
	RootCmd.PersistentFlags().StringVar(&rgPath, "rg-path", "rg", "Path to the ripgrep binary")
	RootCmd.PersistentFlags().StringVar(&agPath, "ag-path", "ag", "Path to the ag (the silver searcher) binary")

	RootCmd.AddCommand(newCmdCompletion())
}

func runRoot(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(directory)
	if err != nil {
		return fmt.Errorf("%s is not a valid directory: %w", directory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", directory)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if reportBackends {
		return runBackendsReport(ctx)
	}
	if reportIndex {
		return runIndexReport(ctx)
	}

	var query string
	if len(args) == 1 {
		query = args[0]
	}

	if mode, q := dispatch.Classify(query); mode == dispatch.Regex && q != "" {
		if _, err := regexp.Compile(q); err != nil {
			return fmt.Errorf("invalid regular expression %q: %w", q, err)
		}
	}

	interactive := forceTUI || (query == "" && isatty.IsTerminal(os.Stdout.Fd()))
	if !interactive && query == "" {
		return fmt.Errorf("a query is required when stdout is not a terminal (pass --tui to force interactive mode)")
	}

	e := engine.New(ctx, engine.Options{
		Root:       directory,
		RgPath:     rgPath,
		AgPath:     agPath,
		NativeOpts: backend.DefaultNativeOptions(),
	})
	defer e.Shutdown()

	if interactive {
		return e.Run(ctx)
	}

	return runOneShot(ctx, e, query)
}
