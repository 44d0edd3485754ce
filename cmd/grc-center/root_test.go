package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "recompute"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestCommandsRejectArguments(t *testing.T) {
	for _, c := range []string{"serve", "migrate", "seed", "recompute"} {
		cmd, _, err := rootCmd.Find([]string{c})
		if assert.NoError(t, err) {
			assert.Error(t, cmd.Args(cmd, []string{"extra"}), c)
		}
	}
}
