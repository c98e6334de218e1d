package db

import (
	"context"
	"fmt"
)

// The schema has a single version, so create/drop covers every lifecycle the
// binaries need. The DDL sticks to the dialect intersection of SQLite and
// PostgreSQL.
var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS staging_rows (
		project TEXT NOT NULL,
		subject TEXT NOT NULL,
		condition TEXT NOT NULL,
		age INTEGER NOT NULL,
		sex TEXT NOT NULL,
		treatment TEXT NOT NULL,
		response TEXT NOT NULL,
		sample TEXT NOT NULL,
		sample_type TEXT NOT NULL,
		time_from_treatment INTEGER NOT NULL,
		b_cell INTEGER NOT NULL,
		cd8_t_cell INTEGER NOT NULL,
		cd4_t_cell INTEGER NOT NULL,
		nk_cell INTEGER NOT NULL,
		monocyte INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS subjects (
		project TEXT NOT NULL,
		subject TEXT PRIMARY KEY,
		condition TEXT NOT NULL,
		age INTEGER NOT NULL,
		sex TEXT NOT NULL,
		treatment TEXT NOT NULL,
		response TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS samples (
		subject TEXT NOT NULL REFERENCES subjects(subject),
		sample TEXT PRIMARY KEY,
		sample_type TEXT NOT NULL,
		time_from_treatment INTEGER NOT NULL,
		b_cell INTEGER NOT NULL,
		cd8_t_cell INTEGER NOT NULL,
		cd4_t_cell INTEGER NOT NULL,
		nk_cell INTEGER NOT NULL,
		monocyte INTEGER NOT NULL
	)`,
}

// Dropped child-first so the samples->subjects foreign key never blocks.
var dropStatements = []string{
	`DROP TABLE IF EXISTS samples`,
	`DROP TABLE IF EXISTS subjects`,
	`DROP TABLE IF EXISTS staging_rows`,
}

// EnsureSchema creates the three trial tables if they do not exist. Existing
// data is left alone.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range createStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// ResetSchema drops and recreates the trial tables, leaving a clean store.
func (s *Store) ResetSchema(ctx context.Context) error {
	for _, stmt := range dropStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}
	return s.EnsureSchema(ctx)
}
