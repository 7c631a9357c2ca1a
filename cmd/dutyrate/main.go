package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coolbeans/dutyrate/pkg/config"
	"github.com/coolbeans/dutyrate/pkg/duty"
	"github.com/coolbeans/dutyrate/pkg/footnote"
	"github.com/coolbeans/dutyrate/pkg/hts"
	"github.com/coolbeans/dutyrate/pkg/phrasebook"
	"github.com/coolbeans/dutyrate/pkg/section232"
)

var version = "0.1.0"

// Global state shared by subcommands.
var (
	configPath string
	verbose    bool
	cfg        *config.Config
	logger     *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dutyrate",
		Short: "Tariff duty-rate resolution for the Harmonized Tariff Schedule",
		Long: `dutyrate resolves the effective ad valorem duty of HTS lines.

It reads a flat HTS export and:
  - rebuilds the indentation hierarchy of the schedule
  - follows Chapter 99 references found in footnotes
  - decides whether Section 232 duties apply to a line
  - computes general and column 2 totals including surtaxes`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, loaded)
			if verbose {
				loaded.Logging.Level = zapcore.DebugLevel.String()
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded

			logger, err = cfg.Logging.BuildLogger()
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "dutyrate.yaml", "Configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.String("schedule", "", "Flat HTS export (JSON)")
	flags.String("phrasebook", "", "Directory of YAML phrasebooks")
	flags.StringP("format", "f", "", "Output format: table or json")

	rootCmd.AddCommand(computeCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(section232Cmd())
	rootCmd.AddCommand(refsCmd())
	rootCmd.AddCommand(phrasesCmd())

	return rootCmd
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("schedule") {
		c.Schedule, _ = flags.GetString("schedule")
	}
	if flags.Changed("phrasebook") {
		c.PhrasebookDir, _ = flags.GetString("phrasebook")
	}
	if flags.Changed("format") {
		c.Output.Format, _ = flags.GetString("format")
	}
}

// loadSchedule reads the configured schedule.
func loadSchedule() ([]hts.LineItem, error) {
	if cfg.Schedule == "" {
		return nil, fmt.Errorf("--schedule flag is required")
	}
	if _, err := os.Stat(cfg.Schedule); os.IsNotExist(err) {
		return nil, fmt.Errorf("schedule file not found: %s", cfg.Schedule)
	}
	return hts.LoadFile(cfg.Schedule, logger)
}

// loadPhrasebooks reads the configured phrasebook directory.
func loadPhrasebooks() (*phrasebook.Registry, error) {
	registry, err := phrasebook.NewRegistryWithDirectory(cfg.PhrasebookDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load phrasebooks: %w", err)
	}
	return registry, nil
}

func lookupItem(index *hts.Index, code string) (hts.LineItem, error) {
	item, ok := index.Lookup(code)
	if !ok {
		return hts.LineItem{}, fmt.Errorf("code %s not found in schedule", code)
	}
	return *item, nil
}

func computeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute total duty rates",
		Long: `Compute general and column 2 totals, including Chapter 99 surtaxes.

Without --code every line of the schedule is computed.

Example:
  dutyrate compute --schedule hts.json --code 7208.10.15
  dutyrate compute --schedule hts.json --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, _ := cmd.Flags().GetStringSlice("code")

			items, err := loadSchedule()
			if err != nil {
				return err
			}
			registry, err := loadPhrasebooks()
			if err != nil {
				return err
			}
			calculator := duty.NewCalculator(registry.Parser())

			var results []duty.LineTotals
			if len(codes) == 0 {
				results = calculator.ComputeAll(items)
			} else {
				index := hts.NewIndex(items)
				for _, code := range codes {
					item, err := lookupItem(index, code)
					if err != nil {
						return err
					}
					results = append(results, duty.LineTotals{
						Code:        item.Code,
						Description: item.Description,
						Totals:      calculator.Compute(item, index),
					})
				}
			}

			logger.Debug("Computed totals", zap.Int("lines", len(results)))
			return renderTotals(cmd.OutOrStdout(), cfg.Output.Format, results)
		},
	}
	cmd.Flags().StringSlice("code", nil, "HTS code to compute (repeatable)")
	return cmd
}

func treeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the indentation hierarchy of the schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			maxDepth, _ := cmd.Flags().GetInt("max-depth")

			items, err := loadSchedule()
			if err != nil {
				return err
			}
			roots := hts.BuildTree(items)
			logger.Debug("Built tree",
				zap.Int("roots", len(roots)),
				zap.Int("nodes", hts.CountNodes(roots)))
			return renderTree(cmd.OutOrStdout(), cfg.Output.Format, roots, maxDepth)
		},
	}
	cmd.Flags().Int("max-depth", -1, "Deepest tree level to print (-1 for all)")
	return cmd
}

func section232Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section232",
		Short: "Check whether Section 232 duties apply to a line",
		Long: `Check whether Section 232 duties apply to a line.

Lines with a statistical suffix inherit from their code prefix.

Example:
  dutyrate section232 --schedule hts.json --code 7208.10.15.00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, _ := cmd.Flags().GetString("code")
			if code == "" {
				return fmt.Errorf("--code flag is required")
			}

			items, err := loadSchedule()
			if err != nil {
				return err
			}
			index := hts.NewIndex(items)
			item, err := lookupItem(index, code)
			if err != nil {
				return err
			}
			return renderSection232(cmd.OutOrStdout(), cfg.Output.Format, code, section232.Trace(item, index))
		},
	}
	cmd.Flags().String("code", "", "HTS code to check")
	return cmd
}

func refsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "List Chapter 99 references in a line's footnotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, _ := cmd.Flags().GetString("code")
			column, _ := cmd.Flags().GetString("column")
			if code == "" {
				return fmt.Errorf("--code flag is required")
			}
			switch hts.Column(column) {
			case hts.ColumnGeneral, hts.ColumnSpecial, hts.ColumnOther:
			default:
				return fmt.Errorf("unknown column: %s (use general, special or other)", column)
			}

			items, err := loadSchedule()
			if err != nil {
				return err
			}
			index := hts.NewIndex(items)
			item, err := lookupItem(index, code)
			if err != nil {
				return err
			}
			refs := footnote.ExtractChapter99References(item.Footnotes, hts.Column(column))
			return renderRefs(cmd.OutOrStdout(), cfg.Output.Format, code, column, refs, index)
		},
	}
	cmd.Flags().String("code", "", "HTS code to inspect")
	cmd.Flags().String("column", string(hts.ColumnGeneral), "Rate column: general, special or other")
	return cmd
}

func phrasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phrases",
		Short: "List recognized Chapter 99 rate phrasings",
		Long: `List the built-in Chapter 99 phrasings plus those loaded from phrasebooks.

With --watch the list is printed again whenever the phrasebook directory changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			watch = watch || cfg.WatchPhrasebook

			registry, err := loadPhrasebooks()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := renderPhrases(out, cfg.Output.Format, registry.Table()); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchPhrasebooks(ctx, registry, func() {
				if err := renderPhrases(out, cfg.Output.Format, registry.Table()); err != nil {
					logger.Warn("Failed to render phrases", zap.Error(err))
				}
			})
		},
	}
	cmd.Flags().Bool("watch", false, "Print again when phrasebooks change")
	return cmd
}

func watchPhrasebooks(ctx context.Context, registry *phrasebook.Registry, onChange func()) error {
	registry.SetOnChange(func(event string, book *phrasebook.Book) {
		fields := []zap.Field{zap.String("event", event)}
		if book != nil {
			fields = append(fields, zap.String("book", book.Name), zap.String("version", book.Version))
		}
		logger.Info("Phrasebooks changed", fields...)
		onChange()
	})
	if err := registry.Watch(); err != nil {
		return err
	}
	defer registry.StopWatch()

	<-ctx.Done()
	return nil
}
