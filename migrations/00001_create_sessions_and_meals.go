package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

var createSessionsAndMeals = goose.NewGoMigration(1,
	&goose.GoFunc{RunTx: upCreateSessionsAndMeals},
	&goose.GoFunc{RunTx: downCreateSessionsAndMeals},
)

func upCreateSessionsAndMeals(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id         uuid PRIMARY KEY,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS meals (
			id            uuid PRIMARY KEY,
			seq           bigserial NOT NULL UNIQUE,
			session_id    uuid NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			name          text NOT NULL,
			description   text NOT NULL,
			is_under_diet boolean NOT NULL DEFAULT true,
			created_at    timestamptz NOT NULL DEFAULT now(),
			updated_at    timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_meals_session_seq ON meals (session_id, seq)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func downCreateSessionsAndMeals(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS meals`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sessions`)
	return err
}
