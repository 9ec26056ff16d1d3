package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tarificateur/go_backend/internal/domain/quote"
)

const (
	table           = "devis"
	uniqueViolation = "23505"
)

func columnType(f quote.Field) string {
	switch f.Kind {
	case quote.KindNumber:
		return "DOUBLE PRECISION"
	case quote.KindBool:
		return "BOOLEAN NOT NULL DEFAULT FALSE"
	}
	if f.Name == "numero_opportunite" {
		return "TEXT NOT NULL UNIQUE"
	}
	return "TEXT NOT NULL DEFAULT ''"
}

func (db *DB) Migrate(ctx context.Context) error {
	cols := []string{
		"id BIGSERIAL PRIMARY KEY",
		"date_creation TIMESTAMPTZ NOT NULL DEFAULT now()",
	}
	for _, f := range quote.Fields {
		cols = append(cols, f.Name+" "+columnType(f))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(cols, ",\n\t"))
	if _, err := db.Pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("migrate %s: %w", table, err)
	}
	return nil
}

var selectColumns = "id, date_creation, " + strings.Join(quote.Columns(), ", ")

func scanQuote(row pgx.Row) (quote.Quote, error) {
	var q quote.Quote
	dest := []any{&q.ID, &q.CreatedAt}
	for _, f := range quote.Fields {
		dest = append(dest, f.Ptr(&q))
	}
	err := row.Scan(dest...)
	return q, err
}

func (db *DB) List(ctx context.Context) ([]quote.Quote, error) {
	rows, err := db.Pool.Query(ctx, "SELECT "+selectColumns+" FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []quote.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (db *DB) Get(ctx context.Context, id int64) (quote.Quote, error) {
	row := db.Pool.QueryRow(ctx, "SELECT "+selectColumns+" FROM "+table+" WHERE id = $1", id)
	q, err := scanQuote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return quote.Quote{}, quote.ErrNotFound
	}
	return q, err
}

func args(q *quote.Quote) []any {
	out := []any{q.CreatedAt}
	for _, f := range quote.Fields {
		out = append(out, f.Value(q))
	}
	return out
}

func (db *DB) Create(ctx context.Context, q *quote.Quote) error {
	cols := append([]string{"date_creation"}, quote.Columns()...)
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))

	if err := db.Pool.QueryRow(ctx, stmt, args(q)...).Scan(&q.ID); err != nil {
		return mapErr(err)
	}
	return nil
}

func (db *DB) Update(ctx context.Context, q *quote.Quote) error {
	cols := append([]string{"date_creation"}, quote.Columns()...)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(cols)+1)

	tag, err := db.Pool.Exec(ctx, stmt, append(args(q), q.ID)...)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return quote.ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return quote.ErrDuplicate
	}
	return err
}
