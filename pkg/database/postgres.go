package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

var (
	timeNow = func() int64 { return time.Now().Unix() }
)

// Postgres is a MetadataStore that talks to postgres directly.
type Postgres struct {
	opts *Options
	pool *pgxpool.Pool
}

// NewPostgres returns a new Postgres database connection.
func NewPostgres(opts *Options) (*Postgres, error) {
	opts.SetDefaults()
	opts.URL = expandURL(opts)
	pool, err := pgxpool.New(context.Background(), opts.URL)
	return &Postgres{pool: pool, opts: opts}, err
}

// Close shuts down the database connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Put inserts a single artifact record.
func (p *Postgres) Put(ctx context.Context, a *structs.Artifact) error {
	vals, args := toArtifactSqlArgs(1, a) // the sql lib starts at 1
	qstr := fmt.Sprintf(
		`INSERT INTO %s (id, owner_id, container, key, title, status, processed_at) VALUES %s ON CONFLICT (id) DO NOTHING;`,
		p.opts.Table, vals,
	)

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, qstr, args...)
	return err
}

// expandURL substitutes the username & password env vars into the url.
func expandURL(opts *Options) string {
	u := strings.Replace(opts.URL, "$"+opts.UsernameEnvVar, os.Getenv(opts.UsernameEnvVar), 1)
	return strings.Replace(u, "$"+opts.PasswordEnvVar, os.Getenv(opts.PasswordEnvVar), 1)
}

// toArtifactSqlArgs converts an artifact into a SQL query string & args (for an insert)
func toArtifactSqlArgs(offset int, a *structs.Artifact) (string, []interface{}) {
	vals := []string{}
	for i := offset; i < 7+offset; i++ {
		vals = append(vals, fmt.Sprintf("$%d", i))
	}
	if a.ProcessedAt == 0 {
		a.ProcessedAt = timeNow()
	}
	if a.Status == "" {
		a.Status = structs.ACTIVE
	}
	return fmt.Sprintf("(%s)", strings.Join(vals, ", ")), []interface{}{
		a.ID,
		a.OwnerID,
		a.Location.Container,
		a.Location.Key,
		a.Title,
		a.Status,
		a.ProcessedAt,
	}
}
