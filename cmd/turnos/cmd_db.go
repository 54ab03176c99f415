package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turnosapp/turnos/config"
	"github.com/turnosapp/turnos/database/seeders"
	"github.com/turnosapp/turnos/pkg/database"
)

// bootDB loads config and opens the database connection. The returned
// func disconnects.
func bootDB(ctx context.Context) (func(), error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	if err := database.Connect(ctx); err != nil {
		return nil, err
	}
	return func() { _ = database.Disconnect(context.Background()) }, nil
}

// turnos db:index
var dbIndexCmd = &cobra.Command{
	Use:   "db:index",
	Short: "Create the MongoDB indexes (unique email, unique order number …)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		closeDB, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Creating indexes…")
		if err := database.EnsureIndexes(ctx, database.DB); err != nil {
			return err
		}
		for collection, models := range database.Indexes() {
			fmt.Fprintf(out, "  • %s: %d index(es)\n", collection, len(models))
		}
		return seeders.SyncOrderCounter(ctx, database.DB)
	},
}

// turnos seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders (default administrator)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		closeDB, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(ctx, database.DB, cmd.OutOrStdout())
	},
}
