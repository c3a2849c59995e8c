package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "pairs.db?_busy_timeout=5000", sqliteDSN("pairs.db"))
	assert.Equal(t, "file:pairs.db?cache=shared&_busy_timeout=5000", sqliteDSN("file:pairs.db?cache=shared"))
	assert.Equal(t, "pairs.db?_busy_timeout=100", sqliteDSN("pairs.db?_busy_timeout=100"))
}

func TestMysqlDSN(t *testing.T) {
	dsn, err := mysqlDSN("user:secret@tcp(db:3306)/inpaint")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "user:secret@tcp(db:3306)/inpaint")

	_, err = mysqlDSN("user:secret@tcp(db:3306)inpaint")
	assert.Error(t, err)
}

func TestConnectDataBase_UnsupportedDriver(t *testing.T) {
	_, err := ConnectDataBase(DatabaseOptions{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, AutoMigrate(store.db))
	assert.True(t, store.db.Migrator().HasTable(&ImagePair{}))
	assert.True(t, store.db.Migrator().HasColumn(&ImagePair{}, "upload_date"))
}
