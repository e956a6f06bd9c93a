package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/campusmart/config"
	"github.com/shashiranjanraj/campusmart/database/seeders"
	"github.com/shashiranjanraj/campusmart/internal/server"
	"github.com/shashiranjanraj/campusmart/pkg/database"
)

// bootDB loads config and opens the database connection.
func bootDB(ctx context.Context) (*database.Conn, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
}

// campusmart migrate — ensure all collection indexes exist.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MongoDB indexes the queries rely on",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		conn, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer conn.Close(context.Background())

		fmt.Println("Ensuring indexes…")
		return server.EnsureIndexes(ctx, conn)
	},
}

// campusmart seed — run all registered seeders.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		conn, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer conn.Close(context.Background())

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, conn.DB)
	},
}
