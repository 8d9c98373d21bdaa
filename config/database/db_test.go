package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRetriesPing(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("retry-ok", sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	db, err := connect("sqlmock", "retry-ok", 3, 0)
	require.NoError(t, err)
	defer db.Close()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectGivesUp(t *testing.T) {
	_, mock, err := sqlmock.NewWithDSN("retry-fail", sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	mock.ExpectPing().WillReturnError(errors.New("down"))

	_, err = connect("sqlmock", "retry-fail", 2, 0)
	assert.Error(t, err)
}
