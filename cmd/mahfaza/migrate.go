package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"mahfaza/internal/db"
)

var migrateCommand = &cli.Command{
	Name:   "migrate",
	Usage:  "Create the database schema",
	Action: migrate,
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id                     BIGSERIAL PRIMARY KEY,
		user_id                BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		name                   TEXT NOT NULL,
		document_type          TEXT NOT NULL,
		filename               TEXT NOT NULL,
		original_filename      TEXT NOT NULL,
		filename_back          TEXT,
		original_filename_back TEXT,
		description            TEXT,
		issue_date             DATE,
		expiry_date            DATE,
		upload_date            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS documents_user_id_idx ON documents (user_id, upload_date DESC)`,
}

func migrate(cCtx *cli.Context) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}

	logrus.Info("schema is up to date")

	return nil
}
