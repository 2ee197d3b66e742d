// Command migrate applies, inspects and rolls back the AuraChat schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"aurachat/internal/config"
	"aurachat/internal/database"

	"gorm.io/gorm"
)

type command struct {
	help string
	run  func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"up":       {"apply pending SQL migrations", migrateUp},
	"auto":     {"run GORM AutoMigrate for every model", migrateAuto},
	"status":   {"show schema mode and pending migrations", migrateStatus},
	"list":     {"list known migrations and whether they are applied", migrateList},
	"down":     {"revert one migration: down <version>", migrateDown},
	"rollback": {"revert the latest applied migration", migrateRollback},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	var b strings.Builder
	b.WriteString("usage: migrate <command> [args]\n")
	for _, name := range []string{"up", "auto", "status", "list", "down", "rollback"} {
		fmt.Fprintf(&b, "  %-9s %s\n", name, commands[name].help)
	}
	return fmt.Errorf("%s", b.String())
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(flag.Arg(0)))]
	if !ok {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	return cmd.run(context.Background(), db, cfg, flag.Args()[1:])
}

func migrateUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	log.Println("sql migrations applied")
	return nil
}

func migrateAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	log.Println("automigrations applied")
	return nil
}

func migrateStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	log.Printf("mode=%s dialect=%s env=%s run_sql=%t run_auto=%t applied=%v pending=%d",
		status.Mode, status.Dialect, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
		status.AppliedVersions, len(status.PendingMigrations))
	for _, m := range status.PendingMigrations {
		log.Printf("pending: %06d_%s", m.Version, m.Name)
	}
	return nil
}

func migrateList(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	applied, err := database.NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("read applied migrations: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	for _, m := range database.GetMigrations() {
		mark := " "
		if done[m.Version] {
			mark = "x"
		}
		fmt.Printf("[%s] %06d_%s\n", mark, m.Version, m.Name)
	}
	return nil
}

func migrateDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: migrate down <version>")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	if database.GetMigrationByVersion(version) == nil {
		return fmt.Errorf("unknown migration version %d", version)
	}
	if err := database.RollbackMigration(ctx, db, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	log.Printf("rolled back migration %d", version)
	return nil
}

func migrateRollback(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	version, err := database.RollbackLatest(ctx, db)
	if err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	if version == 0 {
		log.Println("nothing to roll back")
		return nil
	}
	log.Printf("rolled back migration %d", version)
	return nil
}
