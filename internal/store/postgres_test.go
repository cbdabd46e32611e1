package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camatlas/camatlas/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &PostgresStore{pool: mock}, mock
}

func TestPostgres_UpsertOperator(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT \(id\) DO UPDATE SET`).
		WithArgs("aldi-stores", "ALDI Stores Limited", "Aldi|Aldi UK", "Z1234567", 3, "privacy@example.com", "1 High St", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertOperator(context.Background(), model.Operator{
		ID:              "aldi-stores",
		Name:            "ALDI Stores Limited",
		TradingNames:    []string{"Aldi", "Aldi UK"},
		ICOReg:          "Z1234567",
		Tier:            model.Tier3,
		PrivacyEmail:    "privacy@example.com",
		PostalAddress:   "1 High St",
		PublicAuthority: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetOperator_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, trading_names, ico_reg, tier, privacy_email, postal_address, public_authority`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetOperator(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetOperator(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM operators WHERE id = \$1`).
		WithArgs("greggs").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "trading_names", "ico_reg", "tier", "privacy_email", "postal_address", "public_authority",
		}).AddRow("greggs", "Greggs PLC", "", "Z765", 2, "", "", false))

	got, err := s.GetOperator(context.Background(), "greggs")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.Tier2, got.Tier)
	assert.Nil(t, got.TradingNames)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListOperators(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM operators ORDER BY lower\(name\)`).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "trading_names", "ico_reg", "tier", "privacy_email", "postal_address", "public_authority",
		}).
			AddRow("aldi", "ALDI", "Aldi", "Z1", 3, "", "", false).
			AddRow("greggs", "Greggs PLC", "", "Z2", 2, "", "", false))

	ops, err := s.ListOperators(context.Background())
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, []string{"Aldi"}, ops[0].TradingNames)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ImportLog(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO import_log`).
		WithArgs(pgxmock.AnyArg(), "register.zip").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := s.StartImport(ctx, "register.zip")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	mock.ExpectExec(`UPDATE import_log SET status = 'complete'`).
		WithArgs(100, 7, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, s.CompleteImport(ctx, id, 100, 7))

	mock.ExpectExec(`UPDATE import_log SET status = 'failed'`).
		WithArgs("boom", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, s.FailImport(ctx, id, "boom"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
