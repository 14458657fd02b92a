package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{Environment: "test"}
	c.Cache.Backend = "memory"
	c.Cache.TTL = 5 * time.Minute
	c.Refresh.HotList = []string{"BTC"}
	c.Refresh.Interval = 5 * time.Minute
	c.Analysts.BaseURL = "http://localhost:8600"
	return c
}

func TestValidate_CacheBackends(t *testing.T) {
	t.Run("memory needs no redis", func(t *testing.T) {
		c := validConfig()
		assert.NoError(t, c.Validate())
	})

	t.Run("redis and layered require redis host", func(t *testing.T) {
		for _, backend := range []string{"redis", "layered"} {
			c := validConfig()
			c.Cache.Backend = backend
			assert.Error(t, c.Validate(), "%s without host", backend)

			c.Redis.Host = "localhost"
			assert.NoError(t, c.Validate(), "%s with host", backend)
		}
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		c := validConfig()
		c.Cache.Backend = "memcached"
		assert.Error(t, c.Validate())
	})
}

func TestValidate_Requirements(t *testing.T) {
	c := validConfig()
	c.Refresh.HotList = nil
	assert.Error(t, c.Validate(), "empty hot-list")

	c = validConfig()
	c.Analysts.BaseURL = ""
	assert.Error(t, c.Validate(), "missing analysts base_url")

	c = validConfig()
	c.Cache.TTL = time.Minute
	assert.Error(t, c.Validate(), "ttl below refresh interval")

	c = validConfig()
	c.Kafka.Enabled = true
	assert.Error(t, c.Validate(), "kafka enabled without brokers")

	c = validConfig()
	c.ClickHouse.Enabled = true
	assert.Error(t, c.Validate(), "clickhouse enabled without host")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
environment: test
cache:
  backend: memory
refresh:
  hotlist: [BTC, ETH]
analysts:
  base_url: http://localhost:8600
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 5*time.Minute, c.Refresh.Interval)
	assert.Equal(t, c.Refresh.Interval, c.Cache.TTL, "ttl defaults to the refresh interval")
	assert.Equal(t, 10*time.Second, c.Analysts.Timeout)
	assert.Equal(t, "neutral", c.Decision.DefaultPersonality)
	assert.Equal(t, "/metrics", c.Metrics.Path)
}
