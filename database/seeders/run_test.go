package seeders

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func withEntries(t *testing.T, list ...seederEntry) {
	t.Helper()
	mu.Lock()
	saved := entries
	entries = list
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		entries = saved
		mu.Unlock()
	})
}

func TestRunAllStopsOnFirstError(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	withEntries(t,
		seederEntry{name: "one", fn: func(context.Context, *mongo.Database) error { ran = append(ran, "one"); return nil }},
		seederEntry{name: "two", fn: func(context.Context, *mongo.Database) error { ran = append(ran, "two"); return boom }},
		seederEntry{name: "three", fn: func(context.Context, *mongo.Database) error { ran = append(ran, "three"); return nil }},
	)

	var out bytes.Buffer
	err := RunAll(context.Background(), nil, &out)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"one", "two"}, ran)
	assert.Contains(t, out.String(), `FAILED`)
	assert.Contains(t, err.Error(), `seeder "two"`)
}

func TestRunAllWithoutSeeders(t *testing.T) {
	withEntries(t)

	var out bytes.Buffer
	require.NoError(t, RunAll(context.Background(), nil, &out))
	assert.Contains(t, out.String(), "no seeders registered")
}

func TestSeedAdminRequiresCredentials(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	err := SeedAdmin(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAdminCredentials)
}
