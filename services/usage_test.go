package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsageFromHash(t *testing.T) {
	req := require.New(t)
	usage, err := usageFromHash(map[string]string{"bug": "3", "non-bug": "4"})
	req.NoError(err)
	req.True(usage.Enabled)
	req.Equal(int64(7), usage.Total)
	req.Equal(map[string]int64{"bug": 3, "non-bug": 4}, usage.Labels)

	_, err = usageFromHash(map[string]string{"bug": "many"})
	req.Error(err)
}

func TestNopUsage(t *testing.T) {
	req := require.New(t)
	var u UsageRecorder = NopUsage{}
	req.NoError(u.Record(context.Background(), "bug"))
	usage, err := u.Snapshot(context.Background())
	req.NoError(err)
	req.False(usage.Enabled)
	req.Empty(usage.Labels)
}

func TestNewRedisUsage(t *testing.T) {
	req := require.New(t)

	u, err := NewRedisUsage("localhost:6379", "pw", 2)
	req.NoError(err)
	req.Equal("localhost:6379", u.rdb.Options().Addr)
	req.Equal(2, u.rdb.Options().DB)
	req.NoError(u.Close())

	u, err = NewRedisUsage("redis://cache:6380/3", "fallback", 0)
	req.NoError(err)
	req.Equal("cache:6380", u.rdb.Options().Addr)
	req.Equal(3, u.rdb.Options().DB)
	req.Equal("fallback", u.rdb.Options().Password)
	req.NoError(u.Close())

	_, err = NewRedisUsage("redis://cache:6380/notadb", "", 0)
	req.Error(err)
}
