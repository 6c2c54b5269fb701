package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/campuslabs/equiptrack-backend/pkg/config"
	pkgdb "github.com/campuslabs/equiptrack-backend/pkg/db"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
	"github.com/campuslabs/equiptrack-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

const usage = `usage: migrate <command> [args]

commands:
  up                  apply all pending migrations
  down                roll back the latest migration
  status              print migration status
  version             print the current migration version
  up-to <version>     migrate up to the given version
  down-to <version>   migrate down to the given version
  goto <version>      migrate up or down to the given version
  create <name>       create a new SQL migration file
  validate            check migration files for problems
`

func main() {
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command := args[0]

	// create and validate work without a database
	switch command {
	case "create":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "create requires a migration name")
			os.Exit(2)
		}
		path, err := migrate.CreateSQLMigration(*dir, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "create: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "validate: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migrations ok")
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "equiptrack-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx := context.Background()
	client, err := pkgdb.New(ctx, cfg.DB, logg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "database handle: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "up", "down", "status", "version":
		err = migrate.Run(ctx, sqlDB, *dir, command)
	case "up-to", "down-to":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "%s requires a version\n", command)
			os.Exit(2)
		}
		err = migrate.Run(ctx, sqlDB, *dir, command, args[1])
	case "goto":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "goto requires a version")
			os.Exit(2)
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, *dir, args[1])
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}
