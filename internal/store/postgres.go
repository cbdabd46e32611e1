package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/camatlas/camatlas/internal/db"
	"github.com/camatlas/camatlas/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS operators (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	trading_names    TEXT,
	ico_reg          TEXT,
	tier             INT NOT NULL DEFAULT 0,
	privacy_email    TEXT,
	postal_address   TEXT,
	public_authority BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cameras (
	id            TEXT PRIMARY KEY,
	operator_id   TEXT NOT NULL,
	lat           DOUBLE PRECISION NOT NULL,
	lng           DOUBLE PRECISION NOT NULL,
	location_desc TEXT,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS import_log (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	scanned      INT,
	kept         INT,
	error        TEXT,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_cameras_operator_id ON cameras(operator_id);
CREATE INDEX IF NOT EXISTS idx_import_log_status ON import_log(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertOperator(ctx context.Context, op model.Operator) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO operators (id, name, trading_names, ico_reg, tier, privacy_email, postal_address, public_authority, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			trading_names = EXCLUDED.trading_names,
			ico_reg = EXCLUDED.ico_reg,
			tier = EXCLUDED.tier,
			privacy_email = EXCLUDED.privacy_email,
			postal_address = EXCLUDED.postal_address,
			public_authority = EXCLUDED.public_authority,
			updated_at = now()`,
		op.ID, op.Name, joinTradingNames(op.TradingNames), op.ICOReg,
		int(op.Tier), op.PrivacyEmail, op.PostalAddress, op.PublicAuthority,
	)
	return eris.Wrapf(err, "postgres: upsert operator %s", op.ID)
}

func (s *PostgresStore) GetOperator(ctx context.Context, id string) (*model.Operator, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, trading_names, ico_reg, tier, privacy_email, postal_address, public_authority
		FROM operators WHERE id = $1`, id)

	op, err := scanOperator(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get operator %s", id)
	}
	return op, nil
}

func (s *PostgresStore) ListOperators(ctx context.Context) ([]model.Operator, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, trading_names, ico_reg, tier, privacy_email, postal_address, public_authority
		FROM operators ORDER BY lower(name)`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list operators")
	}
	defer rows.Close()

	var ops []model.Operator
	for rows.Next() {
		op, err := scanOperator(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan operator")
		}
		ops = append(ops, *op)
	}
	return ops, eris.Wrap(rows.Err(), "postgres: list operators")
}

func (s *PostgresStore) UpsertCameras(ctx context.Context, cams []model.Camera) (int64, error) {
	rows := make([][]any, 0, len(cams))
	for _, c := range cams {
		rows = append(rows, []any{c.ID, c.OperatorID, c.Lat, c.Lng, c.LocationDesc})
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "cameras",
		Columns:      []string{"id", "operator_id", "lat", "lng", "location_desc"},
		ConflictKeys: []string{"id"},
	}, rows)
}

func (s *PostgresStore) CountCameras(ctx context.Context, operatorID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM cameras WHERE operator_id = $1`, operatorID).Scan(&n)
	return n, eris.Wrapf(err, "postgres: count cameras for %s", operatorID)
}

func (s *PostgresStore) StartImport(ctx context.Context, source string) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO import_log (id, source, status, started_at) VALUES ($1, $2, 'running', now())`,
		id, source,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: start import")
	}
	return id, nil
}

func (s *PostgresStore) CompleteImport(ctx context.Context, importID string, scanned, kept int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE import_log SET status = 'complete', scanned = $1, kept = $2, completed_at = now() WHERE id = $3`,
		scanned, kept, importID,
	)
	return eris.Wrapf(err, "postgres: complete import %s", importID)
}

func (s *PostgresStore) FailImport(ctx context.Context, importID, message string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE import_log SET status = 'failed', error = $1, completed_at = now() WHERE id = $2`,
		message, importID,
	)
	return eris.Wrapf(err, "postgres: fail import %s", importID)
}

func scanOperator(row pgx.Row) (*model.Operator, error) {
	var op model.Operator
	var tradingNames string
	var tier int
	if err := row.Scan(&op.ID, &op.Name, &tradingNames, &op.ICOReg, &tier,
		&op.PrivacyEmail, &op.PostalAddress, &op.PublicAuthority); err != nil {
		return nil, err
	}
	op.Tier = model.Tier(tier)
	op.TradingNames = splitTradingNames(tradingNames)
	return &op, nil
}

// Trading names are stored pipe-delimited, the register's own format.
func joinTradingNames(names []string) string {
	return strings.Join(names, "|")
}

func splitTradingNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}
