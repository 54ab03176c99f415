package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRoutesListsNamedRoutes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRoutes(&out))

	got := out.String()
	assert.Contains(t, got, "METHOD")
	assert.Contains(t, got, "usuario.login")
	assert.Contains(t, got, "turno.store")
	assert.Contains(t, got, "pago.order.path")
	assert.Contains(t, got, "dashboard.summary")
}

func TestRootRegistersCommands(t *testing.T) {
	for _, name := range []string{"serve", "route:list", "db:index", "seed"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
