package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/tablescope/internal/database"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDriver(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	d := NewFromDB(db)
	t.Cleanup(d.Close)
	return d, mock
}

func TestDriver_Query(t *testing.T) {
	d, mock := newMockDriver(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT `TABLE_NAME` FROM `information_schema`.`TABLES` WHERE `TABLE_SCHEMA` = ?").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("customers").AddRow("orders"))

	rows, err := d.Query(ctx, "SELECT `TABLE_NAME` FROM `information_schema`.`TABLES` WHERE `TABLE_SCHEMA` = ?", "shop")
	require.NoError(t, err)

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"TABLE_NAME"}, cols)

	names, err := database.ScanStrings(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriver_QueryError(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectQuery("SELECT 1").
		WillReturnError(&gomysql.MySQLError{Number: errNoSuchTable, Message: "Table 'x' doesn't exist"})

	_, err := d.Query(context.Background(), "SELECT 1")
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
	assert.Contains(t, err.Error(), "doesn't exist")
}

func TestDriver_QueryRowNotFound(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}))

	row, err := d.QueryRow(context.Background(), "SELECT 1")
	require.NoError(t, err)

	var one int
	err = row.Scan(&one)
	assert.True(t, errs.IsNotFound(err))
}

func TestDriver_ScanConversionIsQueryFailure(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectQuery("SELECT n").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow("not-a-number"))

	row, err := d.QueryRow(context.Background(), "SELECT n")
	require.NoError(t, err)

	var n int
	err = row.Scan(&n)
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
}

func TestDriver_PingAndDialect(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	d := NewFromDB(db)
	defer d.Close()

	mock.ExpectPing()
	assert.NoError(t, d.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(&gomysql.MySQLError{Number: errAccessDenied, Message: "Access denied"})
	err = d.Ping(context.Background())
	assert.True(t, errs.IsPermissionDenied(err))

	assert.Equal(t, database.DialectMySQL, d.Dialect())
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"canceled wrapped", fmt.Errorf("op: %w", context.Canceled), errs.ErrKindTimeout},
		{"no rows", sql.ErrNoRows, errs.ErrKindNotFound},
		{"access denied", &gomysql.MySQLError{Number: errAccessDenied}, errs.ErrKindPermissionDenied},
		{"unknown database", &gomysql.MySQLError{Number: errUnknownDatabase}, errs.ErrKindConnectionFailed},
		{"too many connections", &gomysql.MySQLError{Number: errTooManyConns}, errs.ErrKindConnectionFailed},
		{"parse error", &gomysql.MySQLError{Number: errParseError}, errs.ErrKindQueryFailed},
		{"unlisted code", &gomysql.MySQLError{Number: 9999}, errs.ErrKindQueryFailed},
		{"network", errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"), errs.ErrKindConnectionFailed},
		{"already classified", errs.New(errs.ErrKindDecodeFailed, "x"), errs.ErrKindDecodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
		})
	}

	assert.Nil(t, mapError(nil, "op"))
	assert.Nil(t, mapScanError(nil, "op"))
	assert.Equal(t, errs.ErrKindQueryFailed, mapScanError(errors.New("converting NULL to int is unsupported"), "op").Kind)
	assert.Equal(t, errs.ErrKindConnectionFailed, mapScanError(gomysql.ErrInvalidConn, "op").Kind)
}

func TestNormalizeDSN(t *testing.T) {
	dsn, err := normalizeDSN("root:secret@tcp(db:3306)/shop?multiStatements=true")
	require.NoError(t, err)

	cfg, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, cfg.ParseTime)
	assert.False(t, cfg.MultiStatements)
	assert.Equal(t, "shop", cfg.DBName)
	assert.Contains(t, dsn, "charset=utf8mb4")

	again, err := normalizeDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, dsn, again)

	_, err = normalizeDSN("::not a dsn")
	assert.Error(t, err)
}

func TestNormalizeDSN_KeepsExplicitCharset(t *testing.T) {
	dsn, err := normalizeDSN("root@tcp(db:3306)/shop?charset=latin1")
	require.NoError(t, err)

	assert.Contains(t, dsn, "charset=latin1")
	assert.NotContains(t, dsn, "utf8mb4")
	assert.Equal(t, 1, strings.Count(dsn, "charset="))
}

func TestHasParam(t *testing.T) {
	assert.True(t, hasParam("u@tcp(h)/db?parseTime=true&charset=latin1", "charset"))
	assert.False(t, hasParam("u@tcp(h)/db?parseTime=true", "charset"))
	assert.False(t, hasParam("u@tcp(h)/db", "charset"))
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(context.Background(), database.DefaultConfig("::not a dsn"))
	require.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err))
}
