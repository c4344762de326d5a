package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/emotion-session/clients"
	cfg "github.com/maastricht-university/emotion-session/config"
	"github.com/maastricht-university/emotion-session/frames"
	"github.com/maastricht-university/emotion-session/orchestrator"
	"github.com/maastricht-university/emotion-session/report"
	"github.com/maastricht-university/emotion-session/server"
)

type app struct {
	v   *viper.Viper
	cfg *cfg.Root
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "emosession",
		Short:         "Periodic webcam emotion sampling sessions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "path to config.yaml")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text, json)")
	pf.String("classifier-url", "", "base URL of the classification service")
	pf.String("suggestions-url", "", "base URL of the suggestion service")
	pf.String("output-dir", "", "directory for exported reports")
	_ = a.v.BindPFlags(pf)

	root.AddCommand(a.runCmd(), a.serveCmd(), a.reportCmd())
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	a.v.SetEnvPrefix("EMOSESSION")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	conf, err := cfg.Load(a.v.GetString("config"))
	if err != nil {
		return err
	}
	if a.v.IsSet("log-level") {
		conf.Log.Level = a.v.GetString("log-level")
	}
	if a.v.IsSet("log-format") {
		conf.Log.Format = a.v.GetString("log-format")
	}
	if a.v.IsSet("classifier-url") {
		conf.Services.Classifier.URL = a.v.GetString("classifier-url")
	}
	if a.v.IsSet("suggestions-url") {
		conf.Services.Suggestions.URL = a.v.GetString("suggestions-url")
	}
	if a.v.IsSet("output-dir") {
		conf.Report.OutputDir = a.v.GetString("output-dir")
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	a.cfg = conf

	a.log, err = newLogger(conf.Log.Level, conf.Log.Format, cmd.ErrOrStderr())
	return err
}

// newLogger picks a colored text formatter on a terminal and JSON otherwise.
func newLogger(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)

	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	switch {
	case format == "json", format == "" && !tty:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: tty})
	}
	return l, nil
}

func (a *app) newController() (*orchestrator.Controller, error) {
	var src orchestrator.FrameSource
	switch a.cfg.Frames.Source {
	case "dir":
		src = frames.NewDirSource(a.cfg.Frames.Dir)
	case "http":
		src = frames.NewHTTPSource(a.cfg.Frames.SnapshotURL, a.cfg.Frames.MIME, a.cfg.RequestTimeout())
	default:
		return nil, fmt.Errorf("unknown frame source %q", a.cfg.Frames.Source)
	}

	h := clients.NewHTTP(a.cfg.RequestTimeout(), a.log.WithField("component", "clients"))
	opts := orchestrator.Options{
		Interval: a.cfg.Interval(),
		Log:      a.log.WithField("component", "controller"),
	}
	if u := a.cfg.Services.Archive.URL; u != "" {
		opts.Archiver = clients.NewArchiver(h, u)
	}
	if u := a.cfg.Services.Suggestions.URL; u != "" {
		opts.Advisor = clients.NewAdvisor(h, u)
	}
	return orchestrator.NewController(src, clients.NewClassifier(h, a.cfg.Services.Classifier.URL), opts), nil
}

func (a *app) newAssembler() *report.Assembler {
	return report.NewAssembler(a.cfg.Report.Title, report.BarChart{Title: "Emotion Frequency"}, a.log)
}

func (a *app) runCmd() *cobra.Command {
	var duration time.Duration
	var noExport bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one analysis session until interrupted or the duration elapses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ctl, err := a.newController()
			if err != nil {
				return err
			}
			ctl.Start()
			if duration > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(duration):
				}
			} else {
				<-ctx.Done()
			}
			ctl.Close()

			snap := ctl.Snapshot()
			reports := a.newAssembler()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reports.Build(snap.Table, nil).Text())
			for i, s := range snap.Suggestions {
				fmt.Fprintf(out, "%d. %s\n", i+1, s)
			}
			if noExport {
				return nil
			}
			path, err := reports.Save(a.cfg.Report.OutputDir, a.cfg.Report.Filename, reports.Render(snap.Table), bundleFrom(snap, a.cfg.Report.Title))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "report:", path)
			return nil
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 = until interrupted)")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "skip writing the PDF report")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session control API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ctl, err := a.newController()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv := server.New(ctl, a.newAssembler(), server.Options{
				Addr:           addr,
				OutputDir:      a.cfg.Report.OutputDir,
				ReportFilename: a.cfg.Report.Filename,
				Log:            a.log,
			})

			// The controller closes only once the API has stopped taking requests.
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer ctl.Close()
				return srv.Run(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				a.log.Info("shutting down")
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Rebuild a report from a saved session bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := report.LoadBundle(from)
			if err != nil {
				return err
			}
			reports := a.newAssembler()
			if b.Title != "" {
				reports.Title = b.Title
			}
			b.GeneratedAt = time.Now().UTC()
			path, err := reports.Save(a.cfg.Report.OutputDir, a.cfg.Report.Filename, reports.Render(b.Table), *b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "report:", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "path to a session.yaml bundle")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func bundleFrom(s orchestrator.Snapshot, title string) report.Bundle {
	return report.Bundle{
		SessionID:   s.SessionID,
		GeneratedAt: time.Now().UTC(),
		Title:       title,
		Table:       s.Table,
		Suggestions: s.Suggestions,
	}
}
