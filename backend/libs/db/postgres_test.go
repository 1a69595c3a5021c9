package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolOptionsDefaults(t *testing.T) {
	got := PoolOptions{MaxOpenConns: 10}.withDefaults()
	require.Equal(t, PoolOptions{
		MaxOpenConns:    10,
		MaxIdleConns:    defaultMaxIdleConns,
		ConnMaxLifetime: defaultConnLifetime,
		ConnMaxIdleTime: defaultConnIdleTime,
	}, got)
}

func TestNewPostgresDBRejectsEmptyDSN(t *testing.T) {
	_, err := NewPostgresDB(context.Background(), "  ", PoolOptions{})
	require.EqualError(t, err, "db: empty DSN")
}

func TestNewPostgresDBFailsPing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewPostgresDB(ctx, "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1", PoolOptions{})
	require.Error(t, err)
}
