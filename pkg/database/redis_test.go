package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/mathquiz-api/internal/config"
)

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.RedisConfig
		wantErr   bool
		wantAddrs []string
		wantMstr  string
	}{
		{
			name:      "single from addr",
			cfg:       config.RedisConfig{Addr: "localhost:6379"},
			wantAddrs: []string{"localhost:6379"},
		},
		{
			name:      "single keeps first of addrs",
			cfg:       config.RedisConfig{Mode: "single", Addrs: []string{"a:1", "b:2"}},
			wantAddrs: []string{"a:1"},
		},
		{
			name:      "sentinel",
			cfg:       config.RedisConfig{Mode: "sentinel", Addrs: []string{"s1:26379"}, MasterName: "mymaster"},
			wantAddrs: []string{"s1:26379"},
			wantMstr:  "mymaster",
		},
		{
			name:    "sentinel without master",
			cfg:     config.RedisConfig{Mode: "sentinel", Addrs: []string{"s1:26379"}},
			wantErr: true,
		},
		{
			name:    "cluster with one node",
			cfg:     config.RedisConfig{Mode: "cluster", Addrs: []string{"c1:7000"}},
			wantErr: true,
		},
		{
			name:    "no address",
			cfg:     config.RedisConfig{},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			cfg:     config.RedisConfig{Mode: "ring", Addr: "x:1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := RedisOptions(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddrs, opts.Addrs)
			assert.Equal(t, tt.wantMstr, opts.MasterName)
		})
	}
}

func TestRedisOptions_RetryBackoff(t *testing.T) {
	opts, err := RedisOptions(config.RedisConfig{Addr: "x:1", MaxRetries: 3, MinRetryBackoff: 10, MaxRetryBackoff: 200})

	require.NoError(t, err)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, opts.MinRetryBackoff)
	assert.Equal(t, 200*time.Millisecond, opts.MaxRetryBackoff)
}
