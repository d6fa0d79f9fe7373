package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"daing/internal/bootstrap"
	collectiondto "daing/internal/modules/collection/dto"
	"daing/internal/platform/config"
	apperrors "daing/internal/platform/errors"
	"daing/internal/platform/logging"
	analyticsview "daing/internal/ui/views/analytics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOptions struct {
	dataDir   string
	server    string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "daing",
		Short:         "Dried-fish grading client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", defaultDataDir(), "directory for settings, scan journal and logs")
	root.PersistentFlags().StringVar(&opts.server, "server", "", "grading server base URL (overrides settings)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", logging.FormatText, "log format: text|json")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newUploadCmd(opts))
	root.AddCommand(newCollectionCmd(opts, "history", "history", "Scan history kept by the server"))
	root.AddCommand(newCollectionCmd(opts, "dataset", "auto-dataset", "Samples auto-saved to the training dataset"))
	root.AddCommand(newAnalyticsCmd(opts))
	root.AddCommand(newScansCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "daing")
	}
	return ".daing"
}

// loadApp resolves the configuration for cmd and wires the application.
// The TUI logs to a file because it owns the terminal.
func loadApp(cmd *cobra.Command, opts *globalOptions, tui bool) (*bootstrap.App, func(), error) {
	cfg, err := config.Load(opts.dataDir, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	var (
		logger *log.Logger
		closer io.Closer
	)
	if tui {
		logger, closer, err = logging.NewFile(cfg.LogLevel, cfg.LogFormat, cfg.LogPath)
	} else {
		logger, err = logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	}
	if err != nil {
		return nil, nil, err
	}
	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, nil, err
	}
	cleanup := func() {
		if err := app.Close(); err != nil {
			logger.WithError(err).Warn("close app")
		}
		if closer != nil {
			_ = closer.Close()
		}
	}
	return app, cleanup, nil
}

// friendly swaps a remote failure for the message a user can act on.
func friendly(app *bootstrap.App, err error) error {
	if err == nil {
		return nil
	}
	var remote *apperrors.RemoteError
	if errors.As(err, &remote) {
		return errors.New(apperrors.UserMessage(err, app.Config().ServerURL))
	}
	return err
}

func displayLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(label, "_", " "))
}

func newTUICmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the daing terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer cleanup()
			return bootstrap.RunTUI(app)
		},
	}
}

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Grade one photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.ScanCLI.Analyze(cmd.Context(), args[0], app.Config().AutoSaveDataset, outPath)
			if err != nil {
				return friendly(app, err)
			}
			w := cmd.OutOrStdout()
			if !out.IsDaing {
				_, _ = fmt.Fprintln(w, "not recognised as dried fish")
			} else {
				_, _ = fmt.Fprintf(w, "fish type: %s\nconfidence: %.1f%%\n", displayLabel(out.FishType), out.Confidence*100)
			}
			if out.Grade != "" {
				_, _ = fmt.Fprintf(w, "grade: %s\n", out.Grade)
			}
			if out.HasColor {
				_, _ = fmt.Fprintf(w, "color consistency: %s (%.2f)\n", out.ColorGrade, out.ColorScore)
			}
			if out.Message != "" {
				_, _ = fmt.Fprintf(w, "message: %s\n", out.Message)
			}
			if out.SavedToDataset {
				_, _ = fmt.Fprintln(w, "saved to dataset")
			}
			if out.AnnotatedPath != "" {
				_, _ = fmt.Fprintf(w, "annotated image: %s (%s)\n", out.AnnotatedPath, humanize.IBytes(uint64(out.ResultImageSize)))
			}
			_, _ = fmt.Fprintf(w, "record: %s attempts=%d\n", out.RecordID, out.Attempts)
			return nil
		},
	}
	cmd.Flags().Bool("auto-save", false, "ask the server to keep the photo in the training dataset")
	cmd.Flags().StringVar(&outPath, "out", "", "write the annotated image to this path")
	return cmd
}

func newUploadCmd(opts *globalOptions) *cobra.Command {
	var fishType, condition string
	cmd := &cobra.Command{
		Use:   "upload <image> --fish-type <type> --condition <good|bad>",
		Short: "Upload a labelled sample to the training dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.ScanCLI.Upload(cmd.Context(), args[0], fishType, condition)
			if err != nil {
				return friendly(app, err)
			}
			if !out.Success {
				return fmt.Errorf("server rejected the sample: %s", out.Message)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s / %s: %s\n", displayLabel(out.FishType), out.Condition, out.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&fishType, "fish-type", "", "species label, e.g. danggit")
	cmd.Flags().StringVar(&condition, "condition", "", "good or bad")
	_ = cmd.MarkFlagRequired("fish-type")
	_ = cmd.MarkFlagRequired("condition")
	return cmd
}

func newCollectionCmd(opts *globalOptions, use, kind, short string) *cobra.Command {
	group := &cobra.Command{Use: use, Short: short}

	group.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List entries grouped by day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.CollectionCLI.List(cmd.Context(), kind)
			if err != nil {
				return friendly(app, err)
			}
			printSections(cmd.OutOrStdout(), out.Sections)
			return nil
		},
	})

	group.AddCommand(&cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete entries by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			w := cmd.OutOrStdout()
			if len(args) == 1 {
				if err := app.CollectionCLI.Delete(cmd.Context(), kind, args[0]); err != nil {
					return friendly(app, err)
				}
				_, _ = fmt.Fprintf(w, "deleted %s\n", args[0])
				return nil
			}
			out, err := app.CollectionCLI.DeleteBatch(cmd.Context(), kind, args)
			for _, id := range out.Deleted {
				_, _ = fmt.Fprintf(w, "deleted %s\n", id)
			}
			for _, failure := range out.Failed {
				_, _ = fmt.Fprintf(w, "failed  %s: %s\n", failure.ID, apperrors.UserMessage(failure.Err, app.Config().ServerURL))
			}
			if out.Reconciled {
				_, _ = fmt.Fprintf(w, "%d entries remain on the server\n", len(out.Entries))
			}
			return friendly(app, err)
		},
	})
	return group
}

func printSections(w io.Writer, sections []collectiondto.SectionOutput) {
	if len(sections) == 0 {
		_, _ = fmt.Fprintln(w, "no entries")
		return
	}
	for _, section := range sections {
		label := "undated"
		if section.Key != "" {
			label = section.Date.Format("Mon, 02 Jan 2006")
		}
		_, _ = fmt.Fprintf(w, "%s (%d)\n", label, section.Count)
		for _, row := range section.Rows {
			for _, cell := range row {
				if cell.Placeholder {
					continue
				}
				when := "--:--"
				if !cell.Entry.Timestamp.IsZero() {
					when = cell.Entry.Timestamp.In(time.Local).Format("15:04")
				}
				_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", cell.Entry.ID, when, cell.Entry.URL)
			}
		}
	}
}

func newAnalyticsCmd(opts *globalOptions) *cobra.Command {
	var refresh, plain bool
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the server's scan analytics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.AnalyticsCLI.Summary(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			md := analyticsview.Markdown(out)
			if plain {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			rendered, err := glamour.Render(md, "dark")
			if err != nil {
				return fmt.Errorf("render analytics: %w", err)
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached summary")
	cmd.Flags().BoolVar(&plain, "plain", false, "print markdown without terminal styling")
	return cmd
}

func newScansCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "List analyses made from this device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			records, err := app.ScanCLI.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no scans")
				return nil
			}
			for _, r := range records {
				outcome := fmt.Sprintf("%s %.0f%%", displayLabel(r.FishType), r.Confidence*100)
				switch {
				case r.ErrorKind != "":
					outcome = "failed: " + r.ErrorKind
				case !r.IsDaing:
					outcome = "not daing"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", r.ID, humanize.Time(r.CreatedAt), filepath.Base(r.ImagePath), outcome)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records")
	return cmd
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	group := &cobra.Command{Use: "config", Short: "Show or change persisted settings"}

	group.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.SettingsCLI.Show(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "server: %s\nauto-save: %t\nanalyze: %s\nhistory: %s\ndataset: %s\nsettings file: %s\n",
				out.ServerURL, out.AutoSaveDataset, out.Analyze, out.History, out.AutoDataset, out.Path)
			return nil
		},
	})

	group.AddCommand(&cobra.Command{
		Use:   "set-server <url>",
		Short: "Persist the grading server base URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.SettingsCLI.SetServerURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "server set to %s\n", out.ServerURL)
			return nil
		},
	})

	group.AddCommand(&cobra.Command{
		Use:       "auto-save <on|off>",
		Short:     "Persist whether analyses are kept in the training dataset",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			app, cleanup, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.SettingsCLI.SetAutoSave(cmd.Context(), enabled)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "auto-save %t\n", out.AutoSaveDataset)
			return nil
		},
	})
	return group
}

func parseSwitch(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("want on or off, got %q", raw)
	}
	return enabled, nil
}
