package factory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

func TestOpenSQLiteMigrates(t *testing.T) {
	ctx := context.Background()
	opened, err := Open(ctx, Options{
		Driver:         "sqlite",
		DSN:            filepath.Join(t.TempDir(), "sysapp.db"),
		ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	defer opened.Close()

	u := &types.User{Name: "Ada", Role: types.RoleAdmin}
	require.NoError(t, opened.Storage.CreateUser(ctx, u))
	assert.Positive(t, u.ID)
	assert.Equal(t, "sqlite", opened.SQL.Driver())
}

func TestOpenUnknownDriverFailsFast(t *testing.T) {
	start := time.Now()
	_, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x", ConnectTimeout: 10 * time.Second})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second, "permanent errors must not be retried")
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("dial tcp 127.0.0.1:3306: connect: Connection refused")))
	assert.True(t, isRetryableError(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, isRetryableError(errors.New("Access denied for user 'root'")))
	assert.False(t, isRetryableError(nil))
}
