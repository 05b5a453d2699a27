// Package config merges the CLI's configuration sources into validated
// settings: built-in defaults, an optional YAML config file, TUNEDUMP_*
// environment variables and command-line flags, in ascending priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tunelock/tunedump/pkg/pipeline"
)

const (
	EnvPrefix         = "TUNEDUMP"
	DefaultConfigName = "tunedump"
)

// Report formats accepted by --report-format.
const (
	ReportText = "text"
	ReportJSON = "json"
	ReportYAML = "yaml"
)

var reportFormats = []string{ReportText, ReportJSON, ReportYAML}

// Settings is the fully merged CLI configuration: the pipeline options plus
// the presentation choices that never reach the pipeline.
type Settings struct {
	Pipeline     pipeline.Options
	ReportFormat string
	NoProgress   bool
}

// LoadAndValidate builds the run Settings and logger. cfgFile overrides the
// config-file search; patterns are the positional glob arguments; flags is
// the parsed command-line flag set, whose explicitly set values win over
// every other source.
func LoadAndValidate(cfgFile string, patterns []string, flags *pflag.FlagSet) (Settings, *slog.Logger, error) {
	var s Settings
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless the user named one explicitly.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return s, nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"output", "verbose", "worker", "report-format", "no-progress"} {
		if f := flags.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return s, nil, fmt.Errorf("binding flag --%s: %w", key, err)
			}
		}
	}

	s = Settings{
		Pipeline: pipeline.Options{
			Patterns:  patterns,
			OutputDir: v.GetString("output"),
			Verbose:   v.GetBool("verbose"),
			Workers:   v.GetInt("worker"),
		},
		ReportFormat: v.GetString("report-format"),
		NoProgress:   v.GetBool("no-progress"),
	}

	logger := newLogger(s.Pipeline.Verbose)
	s.Pipeline.Logger = logger.Handler()

	if err := validate(&s); err != nil {
		logger.Error("Configuration rejected", slog.String("error", err.Error()))
		return s, logger, err
	}

	logger.Debug("Configuration loaded",
		slog.String("configFile", v.ConfigFileUsed()),
		slog.Int("workers", s.Pipeline.Workers),
		slog.String("output", s.Pipeline.OutputDir),
		slog.String("reportFormat", s.ReportFormat))
	return s, logger, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output", "")
	v.SetDefault("verbose", false)
	v.SetDefault("worker", pipeline.DefaultWorkers)
	v.SetDefault("report-format", ReportText)
	v.SetDefault("no-progress", false)
}

// newLogger builds the stderr text logger; verbose runs log at debug level.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// validate applies the CLI-level checks. Worker and pattern violations wrap
// the same sentinels the pipeline itself reports, so callers have one error
// taxonomy regardless of which layer rejected the value.
func validate(s *Settings) error {
	if s.Pipeline.Workers < pipeline.MinWorkers || s.Pipeline.Workers > pipeline.MaxWorkers {
		return fmt.Errorf("%w: %w: got %d (flag -w, --worker)",
			pipeline.ErrConfigValidation, pipeline.ErrWorkerRange, s.Pipeline.Workers)
	}
	if len(s.Pipeline.Patterns) == 0 {
		return fmt.Errorf("%w: %w: pass at least one glob argument",
			pipeline.ErrConfigValidation, pipeline.ErrNoPattern)
	}
	if !slices.Contains(reportFormats, s.ReportFormat) {
		return fmt.Errorf("%w: invalid report format %q, allowed: %v",
			pipeline.ErrConfigValidation, s.ReportFormat, reportFormats)
	}
	if s.Pipeline.OutputDir != "" {
		if err := os.MkdirAll(s.Pipeline.OutputDir, 0o755); err != nil {
			return fmt.Errorf("%w: cannot create output directory %q: %v",
				pipeline.ErrConfigValidation, s.Pipeline.OutputDir, err)
		}
	}
	return nil
}
