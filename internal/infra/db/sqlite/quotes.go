package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"tarificateur/go_backend/internal/domain/quote"
)

const table = "devis"

// Repo stores quotes in one SQLite table. Dates are kept as RFC 3339 text in
// UTC so that lexical and chronological order agree.
type Repo struct {
	DB *sql.DB
}

func Open(path string) (*Repo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)
	return &Repo{DB: db}, nil
}

func (r *Repo) Close() { r.DB.Close() }

func columnType(f quote.Field) string {
	switch f.Kind {
	case quote.KindNumber:
		return "REAL"
	case quote.KindBool:
		return "INTEGER NOT NULL DEFAULT 0"
	}
	if f.Name == "numero_opportunite" {
		return "TEXT NOT NULL UNIQUE"
	}
	return "TEXT NOT NULL DEFAULT ''"
}

func (r *Repo) Migrate(ctx context.Context) error {
	cols := []string{
		"id INTEGER PRIMARY KEY AUTOINCREMENT",
		"date_creation TEXT NOT NULL",
	}
	for _, f := range quote.Fields {
		cols = append(cols, f.Name+" "+columnType(f))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(cols, ",\n\t"))
	if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("migrate %s: %w", table, err)
	}
	return nil
}

var selectColumns = "id, date_creation, " + strings.Join(quote.Columns(), ", ")

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (quote.Quote, error) {
	var (
		q       quote.Quote
		created string
	)
	dest := []any{&q.ID, &created}
	for _, f := range quote.Fields {
		dest = append(dest, f.Ptr(&q))
	}
	if err := row.Scan(dest...); err != nil {
		return quote.Quote{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("quote %d: bad date_creation %q: %w", q.ID, created, err)
	}
	q.CreatedAt = t
	return q, nil
}

func (r *Repo) List(ctx context.Context) ([]quote.Quote, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+selectColumns+" FROM "+table+" ORDER BY id")
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

func (r *Repo) Get(ctx context.Context, id int64) (quote.Quote, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM "+table+" WHERE id = ?", id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return quote.Quote{}, quote.ErrNotFound
	}
	return q, err
}

func args(q *quote.Quote) []any {
	out := []any{q.CreatedAt.UTC().Format(time.RFC3339Nano)}
	for _, f := range quote.Fields {
		out = append(out, f.Value(q))
	}
	return out
}

func (r *Repo) Create(ctx context.Context, q *quote.Quote) error {
	cols := append([]string{"date_creation"}, quote.Columns()...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), marks)

	res, err := r.DB.ExecContext(ctx, stmt, args(q)...)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	q.ID = id
	return nil
}

func (r *Repo) Update(ctx context.Context, q *quote.Quote) error {
	cols := append([]string{"date_creation"}, quote.Columns()...)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))

	res, err := r.DB.ExecContext(ctx, stmt, append(args(q), q.ID)...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return quote.ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	var se *msqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return quote.ErrDuplicate
	}
	return err
}
