package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunelock/tunedump/internal/cli/config"
	"github.com/tunelock/tunedump/pkg/pipeline"
)

// newFlags mirrors the flag set the root command registers.
func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("tunedump", pflag.ContinueOnError)
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.IntP("worker", "w", pipeline.DefaultWorkers, "")
	fs.String("report-format", config.ReportText, "")
	fs.Bool("no-progress", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadAndValidateDefaults(t *testing.T) {
	s, logger, err := config.LoadAndValidate("", []string{"*.ncm"}, newFlags(t))
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.Equal(t, []string{"*.ncm"}, s.Pipeline.Patterns)
	assert.Equal(t, pipeline.DefaultWorkers, s.Pipeline.Workers)
	assert.Empty(t, s.Pipeline.OutputDir)
	assert.False(t, s.Pipeline.Verbose)
	assert.Equal(t, config.ReportText, s.ReportFormat)
	assert.False(t, s.NoProgress)
	assert.NotNil(t, s.Pipeline.Logger)
}

func TestLoadAndValidateFlagsWin(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "decoded")
	flags := newFlags(t, "-w", "4", "-v", "-o", outDir, "--report-format", "json", "--no-progress")

	s, _, err := config.LoadAndValidate("", []string{"music/**/*.ncm"}, flags)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Pipeline.Workers)
	assert.True(t, s.Pipeline.Verbose)
	assert.Equal(t, outDir, s.Pipeline.OutputDir)
	assert.Equal(t, config.ReportJSON, s.ReportFormat)
	assert.True(t, s.NoProgress)
	assert.DirExists(t, outDir, "the output directory is created during validation")
}

func TestLoadAndValidateReadsConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "tunedump.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("worker: 3\nreport-format: yaml\n"), 0o644))

	s, _, err := config.LoadAndValidate(cfg, []string{"*.qmcflac"}, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Pipeline.Workers)
	assert.Equal(t, config.ReportYAML, s.ReportFormat)
}

func TestLoadAndValidateEnvOverridesFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "tunedump.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("worker: 3\n"), 0o644))
	t.Setenv("TUNEDUMP_WORKER", "5")

	s, _, err := config.LoadAndValidate(cfg, []string{"*.ncm"}, newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, 5, s.Pipeline.Workers)
}

func TestLoadAndValidateFlagOverridesEnv(t *testing.T) {
	t.Setenv("TUNEDUMP_WORKER", "5")

	s, _, err := config.LoadAndValidate("", []string{"*.ncm"}, newFlags(t, "-w", "2"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Pipeline.Workers)
}

func TestLoadAndValidateMissingNamedConfigFile(t *testing.T) {
	_, _, err := config.LoadAndValidate(filepath.Join(t.TempDir(), "nope.yaml"), []string{"*.ncm"}, newFlags(t))
	require.Error(t, err)
}

func TestLoadAndValidateRejectsWorkerRange(t *testing.T) {
	for _, w := range []string{"0", "9"} {
		_, _, err := config.LoadAndValidate("", []string{"*.ncm"}, newFlags(t, "-w", w))
		require.Error(t, err, "worker=%s", w)
		assert.ErrorIs(t, err, pipeline.ErrConfigValidation)
		assert.ErrorIs(t, err, pipeline.ErrWorkerRange)
	}
}

func TestLoadAndValidateRejectsEmptyPatterns(t *testing.T) {
	_, _, err := config.LoadAndValidate("", nil, newFlags(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrNoPattern)
}

func TestLoadAndValidateRejectsUnknownReportFormat(t *testing.T) {
	_, _, err := config.LoadAndValidate("", []string{"*.ncm"}, newFlags(t, "--report-format", "xml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrConfigValidation)
}
