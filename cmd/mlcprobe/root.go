package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mlcprobe/internal/common/fsutil"
	"mlcprobe/internal/config"
)

// defaultConfigPaths are tried in order when --config is not given.
var defaultConfigPaths = []string{
	"mlcprobe.yaml",
	"mlcprobe.toml",
	"mlcprobe.json",
	"~/.config/mlcprobe/config.yaml",
}

// app is the state shared by all subcommands once flags are parsed.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, log: zerolog.Nop()}
	var (
		configPath string
		logLevel   string
	)
	root := &cobra.Command{
		Use:           "mlcprobe",
		Short:         "Smoke-test a local completions endpoint and author tensor IR kernels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (.yaml, .yml, .json, .toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults MLCPROBE_LOG_LEVEL or info)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var cfg config.Config
		path := configPath
		if path == "" {
			path = fsutil.FirstExisting(defaultConfigPaths...)
		}
		if path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		a.cfg = cfg.FromEnv().WithDefaults()
		l, err := newLogger(a.cfg.LogLevel, a.stderr)
		if err != nil {
			return err
		}
		a.log = l
		if path != "" {
			a.log.Debug().Str("path", path).Msg("config loaded")
		}
		return nil
	}

	root.AddCommand(newCompleteCmd(a), newVecAddCmd(a), newServeCmd(a))
	return root
}

// newLogger builds a console logger on w at the named level.
func newLogger(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empties.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
