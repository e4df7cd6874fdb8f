package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"learn", "predict", "compose", "similar", "dream", "status", "sim"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestPersistentConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)
}

func TestCommandFlagDefaults(t *testing.T) {
	top := predictCmd.Flags().Lookup("top")
	require.NotNil(t, top)
	assert.Equal(t, "10", top.DefValue)

	op := composeCmd.Flags().Lookup("op")
	require.NotNil(t, op)
	assert.Equal(t, "merge", op.DefValue)

	dur := dreamCmd.Flags().Lookup("duration")
	require.NotNil(t, dur)
	assert.Equal(t, "2s", dur.DefValue)
}
