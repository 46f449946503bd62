package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/core/domain"
)

func TestBuildKey_Deterministic(t *testing.T) {
	a := domain.BuildKey("csv", "db", "alice", "the_geom", "layer", "SELECT 1", []string{"a", "b"})
	b := domain.BuildKey("csv", "db", "alice", "the_geom", "layer", "SELECT 1", []string{"a", "b"})
	assert.Equal(t, a, b)
}

func TestBuildKey_Layout(t *testing.T) {
	key := domain.BuildKey("kml", "db", "alice", "geom", "layer", "SELECT 1", []string{"x", "y"})

	parts := strings.Split(key.String(), ":")
	require.Len(t, parts, 8)
	assert.Equal(t, []string{"kml", "db", "alice", "geom"}, parts[:4])
	assert.Len(t, parts[4], 32, "layer name digest should be 128 bits of hex")
	assert.Len(t, parts[5], 32, "query digest should be 128 bits of hex")
	assert.Equal(t, []string{"x", "y"}, parts[6:])
}

func TestBuildKey_DistinguishesParameters(t *testing.T) {
	base := domain.BuildKey("csv", "db", "alice", "", "layer", "SELECT 1", nil)

	variants := map[string]domain.Fingerprint{
		"format":      domain.BuildKey("kml", "db", "alice", "", "layer", "SELECT 1", nil),
		"database":    domain.BuildKey("csv", "db2", "alice", "", "layer", "SELECT 1", nil),
		"user":        domain.BuildKey("csv", "db", "bob", "", "layer", "SELECT 1", nil),
		"geometry":    domain.BuildKey("csv", "db", "alice", "g", "layer", "SELECT 1", nil),
		"layer":       domain.BuildKey("csv", "db", "alice", "", "other", "SELECT 1", nil),
		"sql":         domain.BuildKey("csv", "db", "alice", "", "layer", "SELECT 2", nil),
		"skip fields": domain.BuildKey("csv", "db", "alice", "", "layer", "SELECT 1", []string{"a"}),
	}

	for name, key := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, base, key)
		})
	}
}

func TestBuildKey_SkipFieldOrderMatters(t *testing.T) {
	a := domain.BuildKey("csv", "db", "u", "", "l", "q", []string{"a", "b"})
	b := domain.BuildKey("csv", "db", "u", "", "l", "q", []string{"b", "a"})
	assert.NotEqual(t, a, b)
}

func TestFingerprint_JobID(t *testing.T) {
	key := domain.BuildKey("csv", "db", "u", "", "l", "q", nil)
	assert.Len(t, key.JobID(), 16)
	assert.Equal(t, key.JobID(), key.JobID())
}

func TestShortenPath(t *testing.T) {
	t.Run("below threshold is unchanged", func(t *testing.T) {
		raw := strings.Repeat("a", 127)
		assert.Equal(t, raw, domain.ShortenPath(raw))
	})

	t.Run("at threshold is digested", func(t *testing.T) {
		raw := strings.Repeat("a", 128)
		assert.Len(t, domain.ShortenPath(raw), 64)
	})

	t.Run("long path is replaced by fixed length digest", func(t *testing.T) {
		a := domain.ShortenPath(strings.Repeat("a", 200))
		b := domain.ShortenPath(strings.Repeat("b", 300))
		assert.Len(t, a, 64)
		assert.Len(t, b, 64)
		assert.NotEqual(t, a, b)
		assert.Equal(t, a, domain.ShortenPath(strings.Repeat("a", 200)))
	})
}
