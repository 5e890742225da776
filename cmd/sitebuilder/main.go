package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/preview"
	"git.home.luguber.info/inful/sitebuilder/internal/report"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
	NoColor bool   `help:"Disable colored output"`

	Build struct {
		Output    string `short:"o" help:"Output directory, overrides configuration"`
		Drafts    bool   `help:"Include draft documents"`
		LinkCheck bool   `help:"Verify internal links after rendering"`
	} `cmd:"" help:"Build the site from the content directory"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Preview struct {
		Addr    string `help:"Listen address, overrides configuration"`
		NoWatch bool   `help:"Disable rebuild on file changes"`
		Metrics bool   `help:"Expose Prometheus metrics on /metrics"`
	} `cmd:"" help:"Build the site and serve it locally"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		os.Exit(runBuild())
	case "init":
		if err := runInit(); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "preview":
		if err := runPreview(); err != nil {
			slog.Error("Preview failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("sitebuilder %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	}
}

func newRenderer() *report.Renderer {
	if CLI.NoColor {
		return report.New()
	}
	return report.New(report.WithStyler(report.NewColorStyler()))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if CLI.Build.Output != "" {
		cfg.Build.Output = CLI.Build.Output
	}
	if CLI.Build.Drafts {
		cfg.Build.Drafts = true
	}
	if CLI.Build.LinkCheck {
		cfg.Build.LinkCheck = true
	}
	return cfg, nil
}

func runBuild() int {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	builder, err := build.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize build", "error", err)
		return 1
	}
	defer func() {
		_ = builder.Close()
	}()

	res := builder.Run(context.Background())
	newRenderer().Show(res)
	if res.IsErr() {
		return 1
	}
	return 0
}

func runInit() error {
	cfg := config.Default()
	if err := cfg.Write(CLI.Config, CLI.Init.Force); err != nil {
		return err
	}
	slog.Info("Configuration written", "path", CLI.Config)
	return nil
}

func runPreview() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if CLI.Preview.Addr != "" {
		cfg.Preview.Addr = CLI.Preview.Addr
	}
	if CLI.Preview.NoWatch {
		cfg.Preview.Watch = false
	}
	if CLI.Preview.Metrics {
		cfg.Preview.Metrics = true
	}

	recorder := metrics.NewPrometheusRecorder(nil)
	builder, err := build.New(cfg, build.WithRecorder(recorder))
	if err != nil {
		return err
	}
	defer func() {
		_ = builder.Close()
	}()

	server := preview.New(cfg, builder.Run,
		preview.WithRenderer(newRenderer()),
		preview.WithMetricsHandler(recorder.Handler()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx)
}
