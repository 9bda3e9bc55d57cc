// Command shatter generates a broken-glass burst and writes it out as a JSON
// mesh bundle or one STL file per shard.
//
// Usage:
//
//	shatter [-config shatter.toml] [-script burst.shatter] [-seed N]
//	        [-out dir] [-format json|stl] [-kernel exact|sdfx] [-watch]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/shatter/internal/config"
	"github.com/chazu/shatter/internal/logging"
	"github.com/chazu/shatter/pkg/kernel"
	"github.com/chazu/shatter/pkg/kernel/exact"
	"github.com/chazu/shatter/pkg/kernel/sdfx"
	"github.com/chazu/shatter/pkg/scene"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logging.LogError("shatter failed", "err", err)
		os.Exit(1)
	}
}

// options are the parsed command line flags.
type options struct {
	configPath string
	script     string
	seed       uint64
	out        string
	format     string
	kernel     string
	logLevel   string
	watch      bool

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("shatter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "TOML configuration file")
	fs.StringVar(&o.script, "script", "", "scene script, overrides the config")
	fs.Uint64Var(&o.seed, "seed", 0, "random seed, overrides config and script")
	fs.StringVar(&o.out, "out", "", "output directory")
	fs.StringVar(&o.format, "format", "", "output format: json or stl")
	fs.StringVar(&o.kernel, "kernel", "", "geometry kernel: exact or sdfx")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&o.watch, "watch", false, "regenerate when the config or script changes")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if o.set["script"] {
		cfg.Script = o.script
	}
	if o.set["out"] {
		cfg.Output.Dir = o.out
	}
	if o.set["format"] {
		cfg.Output.Format = o.format
	}
	if o.set["kernel"] {
		cfg.Output.Kernel = o.kernel
	}
	if o.set["log-level"] {
		cfg.LogLevel = o.logLevel
	}
	return cfg, cfg.Validate()
}

func newKernel(out config.Output) kernel.Kernel {
	if out.Kernel == "sdfx" {
		return sdfx.NewWithCells(out.Cells)
	}
	return exact.New()
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	generate := func() error {
		cfg, err := loadConfig(o)
		if err != nil {
			return err
		}
		if err := logging.SetLevel(cfg.LogLevel); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		return generateOnce(ctx, cfg, o)
	}

	if err := generate(); err != nil {
		if !o.watch {
			return err
		}
		logging.LogError("generation failed", "err", err)
	}
	if !o.watch {
		return nil
	}

	cfg, err := loadConfig(o)
	if err != nil {
		// Watch the files anyway so a fix is picked up.
		logging.LogWarn("config invalid, watching for changes", "err", err)
	}
	return watch(ctx, watchedFiles(o.configPath, cfg.Script, o.script), generate)
}

// generateOnce evaluates the configured script and writes the result.
func generateOnce(ctx context.Context, cfg config.Config, o options) error {
	var source string
	if cfg.Script != "" {
		data, err := os.ReadFile(cfg.Script)
		if err != nil {
			return fmt.Errorf("script: %w", err)
		}
		source = string(data)
	}
	var overrides []Override
	if o.set["seed"] {
		seed := o.seed
		overrides = append(overrides, func(d *scene.Description) { d.Seed = seed })
	}

	k := newKernel(cfg.Output)
	app := NewApp(k, cfg.Output.Workers)
	result := app.Evaluate(ctx, cfg.Description(), source, overrides...)
	for _, w := range result.Warnings {
		logging.LogWarn(w.Message)
	}
	if !result.OK() {
		for _, e := range result.Errors {
			logging.LogError(evalErrorString(e))
		}
		return fmt.Errorf("%d errors", len(result.Errors))
	}
	return write(cfg.Output.Dir, cfg.Output.Format, result, k)
}

// evalErrorString formats e like engine.EvalError does.
func evalErrorString(e EvalErrorData) string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}
