package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRequiresDSN(t *testing.T) {
	_, err := Connect(Options{})
	require.Error(t, err)
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{DSN: "postgres://localhost/metamarket"}.withDefaults()
	assert.Equal(t, 20, opts.MaxOpenConns)
	assert.Equal(t, 10, opts.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, opts.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, opts.PingTimeout)

	opts = Options{MaxOpenConns: 4, MaxIdleConns: 8}.withDefaults()
	assert.Equal(t, 2, opts.MaxIdleConns)
}

func TestCloseNilIsNoop(t *testing.T) {
	var pg *Postgres
	assert.NoError(t, pg.Close())
}
