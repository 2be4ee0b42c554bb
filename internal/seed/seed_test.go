package seed

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDefaultDataCreatesAdmin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS \( SELECT 1 FROM user_account WHERE username = \$1 \)`).
		WithArgs("admin").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO user_account \(username,password_hash,role,student_id\)`).
		WithArgs("admin", pgxmock.AnyArg(), "Admin", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(int64(1)))

	opts := Options{AdminUsername: "admin", AdminPassword: "Admin12345"}
	require.NoError(t, CreateDefaultData(context.Background(), mock, opts, zerolog.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDefaultDataKeepsExistingAdmin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("admin").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM scholarship`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	opts := Options{AdminUsername: "admin", AdminPassword: "Admin12345", SampleData: true}
	require.NoError(t, CreateDefaultData(context.Background(), mock, opts, zerolog.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDefaultDataWithoutCredentials(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	require.NoError(t, CreateDefaultData(context.Background(), mock, Options{}, zerolog.Nop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
