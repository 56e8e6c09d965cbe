package migrate

import (
	"context"
	"embed"
	"fmt"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/pkg/db"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const Dir = "migrations"

// Run executes a goose command. Postgres is versioned with the embedded SQL
// files; SQLite and MySQL only support "up", which maps to gorm AutoMigrate.
func Run(ctx context.Context, gdb *gorm.DB, dialect db.Dialect, command string, args ...string) error {
	if dialect != db.Postgres {
		if command != "up" {
			return fmt.Errorf("goose %s is only supported on postgres, %s uses auto-migration", command, dialect)
		}
		return AutoMigrate(gdb)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, sqlDB, Dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func Up(ctx context.Context, gdb *gorm.DB, dialect db.Dialect) error {
	return Run(ctx, gdb, dialect, "up")
}

func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table and recreates the schema.
func Reset(ctx context.Context, gdb *gorm.DB, dialect db.Dialect) error {
	if dialect == db.Postgres {
		if err := Run(ctx, gdb, dialect, "reset"); err != nil {
			return err
		}
		return Up(ctx, gdb, dialect)
	}

	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		if err := gdb.WithContext(ctx).Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return AutoMigrate(gdb)
}
