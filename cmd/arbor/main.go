package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/arborfam/arbor/internal/server"
	"github.com/arborfam/arbor/modules"
	"github.com/arborfam/arbor/modules/genealogy/gedcom"
	"github.com/arborfam/arbor/modules/genealogy/services"
	"github.com/arborfam/arbor/pkg/application"
	"github.com/arborfam/arbor/pkg/composables"
	"github.com/arborfam/arbor/pkg/configuration"
	"github.com/arborfam/arbor/pkg/eventbus"
)

func main() {
	root := &cobra.Command{
		Use:           "arbor",
		Short:         "Genealogy identity-resolution service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(serveCmd(), importCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			logger := conf.Logger()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			pool, err := pgxpool.New(ctx, conf.Database.Opts)
			if err != nil {
				return err
			}
			defer pool.Close()

			app := application.New(&application.ApplicationOptions{
				Pool:     pool,
				EventBus: eventbus.NewEventPublisher(logger),
				Logger:   logger,
			})
			if err := modules.Load(app, modules.BuiltInModules...); err != nil {
				return err
			}
			if err := app.RunMigrations(ctx); err != nil {
				return err
			}

			srv, err := server.Default(&server.DefaultOptions{
				Logger:        logger,
				Configuration: conf,
				Application:   app,
				Pool:          pool,
			})
			if err != nil {
				return err
			}

			addr := fmt.Sprintf(":%d", conf.ServerPort)
			log.Printf("Listening on %s", addr)
			return srv.Start(addr)
		},
	}
}

func importCmd() *cobra.Command {
	var (
		owner     string
		csvPath   string
		threshold int
		apply     bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.ged>",
		Short: "Parse a GEDCOM file, report duplicates, and optionally import it",
		Long: "Parses the given GEDCOM file and prints an import report. Without --apply " +
			"nothing is written: the file is validated and, when --owner is given, every " +
			"parsed individual is scored against that owner's stored persons.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			parsed, err := gedcom.Parse(f)
			if err != nil {
				return err
			}

			fmt.Printf("Parsed %d individuals and %d families\n", len(parsed.Individuals), len(parsed.Families))
			fmt.Printf("Errors: %d, warnings: %d\n", len(parsed.Log.Errors()), len(parsed.Log.Warnings()))

			if csvPath != "" {
				if err := os.WriteFile(csvPath, []byte(parsed.Log.CSV()), 0o644); err != nil {
					return err
				}
				fmt.Printf("Error log written to %s\n", csvPath)
			}

			if owner == "" {
				if apply {
					return fmt.Errorf("--apply requires --owner")
				}
				return nil
			}
			ownerID, err := uuid.Parse(owner)
			if err != nil {
				return fmt.Errorf("--owner must be a UUID: %w", err)
			}

			conf := configuration.Use()
			logger := conf.Logger()
			pool, err := pgxpool.New(cmd.Context(), conf.Database.Opts)
			if err != nil {
				return err
			}
			defer pool.Close()

			app := application.New(&application.ApplicationOptions{
				Pool:     pool,
				EventBus: eventbus.NewEventPublisher(logger),
				Logger:   logger,
			})
			if err := modules.Load(app, modules.BuiltInModules...); err != nil {
				return err
			}
			if err := app.RunMigrations(cmd.Context()); err != nil {
				return err
			}

			ctx := composables.WithPool(cmd.Context(), pool)
			ctx = composables.WithTenantID(ctx, ownerID)

			duplicates := app.Service(services.DuplicateService{}).(*services.DuplicateService)
			candidates, err := duplicates.FindImportDuplicates(ctx, parsed.Individuals, threshold)
			if err != nil {
				return err
			}
			for _, c := range candidates {
				fmt.Printf("possible duplicate: %q <-> %q (confidence %d)\n", c.A.Name, c.B.Name, c.Confidence)
			}
			if len(candidates) == 0 {
				fmt.Println("No duplicate candidates above the threshold")
			}

			if !apply {
				return nil
			}
			importer := app.Service(services.ImportService{}).(*services.ImportService)
			summary, err := importer.Import(ctx, parsed, nil)
			if err != nil {
				return err
			}
			fmt.Printf(
				"Imported %d persons, %d relationships from %d families\n",
				summary.PersonsImported, summary.RelationshipsCreated, summary.FamiliesProcessed,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner id to score duplicates against and import into")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the parse error log as CSV to this file")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "duplicate confidence threshold (default from config)")
	cmd.Flags().BoolVar(&apply, "apply", false, "write the parsed file into the owner's tree")
	return cmd
}
