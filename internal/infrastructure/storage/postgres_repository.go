package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

// PostgresRepository persists bulletin wrappers into Postgres, keyed by the
// bulletin ID so a region/date/period window is stored at most once.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.BulletinRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres with the lib/pq driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// AlreadyGenerated reports whether a bulletin with this ID was stored before.
func (r *PostgresRepository) AlreadyGenerated(ctx context.Context, bulletinID string) (bool, error) {
	if r.db == nil || bulletinID == "" {
		return false, nil
	}

	query, args, err := r.builder.
		Select("1").
		From("bulletins").
		Where(sq.Eq{"bulletin_id": bulletinID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query bulletin %s: %w", bulletinID, err)
	}

	return true, nil
}

// SaveBulletin upserts the wrapper JSON document.
func (r *PostgresRepository) SaveBulletin(ctx context.Context, wrapper domain.BulletinWrapper) error {
	if r.db == nil {
		return nil
	}

	document, err := json.Marshal(wrapper)
	if err != nil {
		return fmt.Errorf("marshal bulletin %s: %w", wrapper.Bulletin.ID, err)
	}

	query, args, err := r.builder.
		Insert("bulletins").
		Columns("bulletin_id", "region", "date", "period", "document", "generated_at").
		Values(
			wrapper.Bulletin.ID,
			string(wrapper.Bulletin.Region),
			wrapper.Bulletin.Date,
			string(wrapper.Bulletin.Period),
			document,
			wrapper.Bulletin.GeneratedAt,
		).
		Suffix("ON CONFLICT (bulletin_id) DO UPDATE SET document = EXCLUDED.document, generated_at = EXCLUDED.generated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert bulletin %s: %w", wrapper.Bulletin.ID, err)
	}

	return nil
}
