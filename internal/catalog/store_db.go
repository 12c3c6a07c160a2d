package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	saveTimeout  = 10 * time.Second

	pgUndefinedTable = "42P01"
)

// PostgresStore persists the record set as rows of the products table, one
// row per record, ordered by position.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens a pgx-backed database/sql handle and verifies it.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := withTimeout(ctx, pingTimeout, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *PostgresStore) Describe() (string, string) { return "PostgreSQL", "products" }

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS products (
				position    INTEGER NOT NULL,
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				price       DOUBLE PRECISION NOT NULL DEFAULT 0,
				category    TEXT NOT NULL DEFAULT '',
				picture_url TEXT NOT NULL DEFAULT '',
				status      TEXT NOT NULL DEFAULT ''
			)
		`)
		return err
	})
}

func (s *PostgresStore) Load(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name, description, price, category, picture_url, status
			FROM products
			ORDER BY position ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.PictureURL, &p.Status); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if isUndefinedTable(err) {
		return []Product{}, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces the table contents with products in one transaction.
func (s *PostgresStore) Save(ctx context.Context, products []Product) error {
	return withTimeout(ctx, saveTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO products (position, id, name, description, price, category, picture_url, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, p := range products {
			if _, err := stmt.ExecContext(ctx, i, p.ID, p.Name, p.Description, p.Price, p.Category, p.PictureURL, p.Status); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
