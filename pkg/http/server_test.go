package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func metricsRoutes(s *Server) []string {
	var paths []string
	for _, r := range s.Echo().Routes() {
		if r.Method == "GET" {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

func TestNewServer_MetricsRoute(t *testing.T) {
	t.Run("registered by default", func(t *testing.T) {
		s := NewServer(nil)
		assert.Contains(t, metricsRoutes(s), "/metrics")
	})

	t.Run("custom path", func(t *testing.T) {
		s := NewServer(nil, WithMetrics(true, "/internal/metrics"))
		paths := metricsRoutes(s)
		assert.Contains(t, paths, "/internal/metrics")
		assert.NotContains(t, paths, "/metrics")
	})

	t.Run("disabled", func(t *testing.T) {
		s := NewServer(nil, WithMetrics(false, ""))
		assert.NotContains(t, metricsRoutes(s), "/metrics")
	})
}
