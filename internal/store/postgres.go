package store

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"img2text/internal/batch"
)

const schema = `
create table if not exists extraction_results (
  run_id      uuid        not null,
  position    integer     not null,
  filename    text        not null,
  path        text        not null,
  status      text        not null,
  text        text        not null,
  duration_ms bigint      not null default 0,
  created_at  timestamptz not null default now(),
  primary key (run_id, position)
)`

// Postgres writes results into the extraction_results table.
type Postgres struct{ DB *sql.DB }

// NewPostgres opens the database, checks it is reachable and makes sure the
// table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	// one writer, sequential batch
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{DB: db}, nil
}

// Record upserts the result for (run_id, position).
func (r *Postgres) Record(ctx context.Context, runID string, position int, er batch.ExtractionResult) error {
	rec := newRecord(runID, position, er)
	const q = `
insert into extraction_results (run_id, position, filename, path, status, text, duration_ms)
values ($1,$2,$3,$4,$5,$6,$7)
on conflict (run_id, position) do update
set filename = excluded.filename,
    path = excluded.path,
    status = excluded.status,
    text = excluded.text,
    duration_ms = excluded.duration_ms`
	_, err := r.DB.ExecContext(ctx, q,
		rec.RunID, rec.Position, rec.Filename, rec.Path, rec.Status, rec.Text, rec.DurationMS,
	)
	return err
}

func (r *Postgres) Close() error { return r.DB.Close() }

// ResolveDSN prefers DATABASE_URL-style input and otherwise builds a DSN from
// PG* parts. Empty host means no database is configured.
func ResolveDSN(dsn, user, pass, host, port, db string) string {
	if v := strings.TrimSpace(dsn); v != "" {
		return v
	}
	if strings.TrimSpace(host) == "" {
		return ""
	}
	if port == "" {
		port = "5432"
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary describes a DSN without its password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
