package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunelock/tunedump/pkg/pipeline"
)

func TestRootCommandFlagDefaults(t *testing.T) {
	out := rootCmd.Flags().Lookup("output")
	require.NotNil(t, out)
	assert.Equal(t, "o", out.Shorthand)
	assert.Equal(t, "", out.DefValue)

	worker := rootCmd.Flags().Lookup("worker")
	require.NotNil(t, worker)
	assert.Equal(t, "w", worker.Shorthand)
	assert.Equal(t, "1", worker.DefValue)

	verbose := rootCmd.Flags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	require.NotNil(t, rootCmd.Flags().Lookup("report-format"))
	require.NotNil(t, rootCmd.Flags().Lookup("no-progress"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRootCommandRequiresPatterns(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrNoPattern)
}

func TestRootCommandVersionTemplate(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--version"})
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "tunedump")
	assert.Contains(t, out.String(), "dev")
}
