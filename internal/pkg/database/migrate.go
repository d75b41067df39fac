package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/database/migrations"
)

// Migrate applies every pending migration to the database at url.
func Migrate(ctx context.Context, url string) error {
	if url == "" {
		return ErrURLRequired
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("database: open: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("database: goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}

	return nil
}
