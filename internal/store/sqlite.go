package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/camatlas/camatlas/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path in WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS operators (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	trading_names    TEXT,
	ico_reg          TEXT,
	tier             INTEGER NOT NULL DEFAULT 0,
	privacy_email    TEXT,
	postal_address   TEXT,
	public_authority INTEGER NOT NULL DEFAULT 0,
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS cameras (
	id            TEXT PRIMARY KEY,
	operator_id   TEXT NOT NULL,
	lat           REAL NOT NULL,
	lng           REAL NOT NULL,
	location_desc TEXT,
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS import_log (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	scanned      INTEGER,
	kept         INTEGER,
	error        TEXT,
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_cameras_operator_id ON cameras(operator_id);
CREATE INDEX IF NOT EXISTS idx_import_log_status ON import_log(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertOperator(ctx context.Context, op model.Operator) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operators (id, name, trading_names, ico_reg, tier, privacy_email, postal_address, public_authority, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			trading_names = excluded.trading_names,
			ico_reg = excluded.ico_reg,
			tier = excluded.tier,
			privacy_email = excluded.privacy_email,
			postal_address = excluded.postal_address,
			public_authority = excluded.public_authority,
			updated_at = datetime('now')`,
		op.ID, op.Name, joinTradingNames(op.TradingNames), op.ICOReg,
		int(op.Tier), op.PrivacyEmail, op.PostalAddress, op.PublicAuthority,
	)
	return eris.Wrapf(err, "sqlite: upsert operator %s", op.ID)
}

func (s *SQLiteStore) GetOperator(ctx context.Context, id string) (*model.Operator, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, trading_names, ico_reg, tier, privacy_email, postal_address, public_authority
		FROM operators WHERE id = ?`, id)

	op, err := scanOperatorSQL(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get operator %s", id)
	}
	return op, nil
}

func (s *SQLiteStore) ListOperators(ctx context.Context) ([]model.Operator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, trading_names, ico_reg, tier, privacy_email, postal_address, public_authority
		FROM operators ORDER BY lower(name)`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list operators")
	}
	defer rows.Close() //nolint:errcheck

	var ops []model.Operator
	for rows.Next() {
		op, err := scanOperatorSQL(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan operator")
		}
		ops = append(ops, *op)
	}
	return ops, eris.Wrap(rows.Err(), "sqlite: list operators")
}

func (s *SQLiteStore) UpsertCameras(ctx context.Context, cams []model.Camera) (int64, error) {
	if len(cams) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cameras (id, operator_id, lat, lng, location_desc, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			operator_id = excluded.operator_id,
			lat = excluded.lat,
			lng = excluded.lng,
			location_desc = excluded.location_desc,
			updated_at = datetime('now')`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare camera upsert")
	}
	defer stmt.Close() //nolint:errcheck

	var written int64
	for _, c := range cams {
		if _, err := stmt.ExecContext(ctx, c.ID, c.OperatorID, c.Lat, c.Lng, c.LocationDesc); err != nil {
			return written, eris.Wrapf(err, "sqlite: upsert camera %s", c.ID)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit camera upsert")
	}
	return written, nil
}

func (s *SQLiteStore) CountCameras(ctx context.Context, operatorID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM cameras WHERE operator_id = ?`, operatorID).Scan(&n)
	return n, eris.Wrapf(err, "sqlite: count cameras for %s", operatorID)
}

func (s *SQLiteStore) StartImport(ctx context.Context, source string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_log (id, source, status) VALUES (?, ?, 'running')`,
		id, source,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: start import")
	}
	return id, nil
}

func (s *SQLiteStore) CompleteImport(ctx context.Context, importID string, scanned, kept int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE import_log SET status = 'complete', scanned = ?, kept = ?, completed_at = datetime('now') WHERE id = ?`,
		scanned, kept, importID,
	)
	return eris.Wrapf(err, "sqlite: complete import %s", importID)
}

func (s *SQLiteStore) FailImport(ctx context.Context, importID, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE import_log SET status = 'failed', error = ?, completed_at = datetime('now') WHERE id = ?`,
		message, importID,
	)
	return eris.Wrapf(err, "sqlite: fail import %s", importID)
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperatorSQL(row rowScanner) (*model.Operator, error) {
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
