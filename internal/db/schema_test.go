package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodruizronald/tw-search/internal/db"
	"github.com/rodruizronald/tw-search/internal/db/migrations"
)

func TestPending(t *testing.T) {
	list := []db.Migration{{Version: 3}, {Version: 1}, {Version: 2}}

	all := db.Pending(list, nil)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, 3, all[2].Version)

	rest := db.Pending(list, map[int]time.Time{1: time.Now(), 2: time.Now()})
	require.Len(t, rest, 1)
	assert.Equal(t, 3, rest[0].Version)

	assert.Empty(t, db.Pending(list, map[int]time.Time{1: {}, 2: {}, 3: {}}))
}

func TestLatest(t *testing.T) {
	list := []db.Migration{{Version: 1}, {Version: 2}, {Version: 3}}

	_, ok := db.Latest(list, nil)
	assert.False(t, ok)

	last, ok := db.Latest(list, map[int]time.Time{1: {}, 2: {}})
	require.True(t, ok)
	assert.Equal(t, 2, last.Version)
}

func TestMigrations_AreOrderedAndReversible(t *testing.T) {
	seen := make(map[int]bool)
	for i, m := range migrations.All {
		assert.Equal(t, i+1, m.Version, "versions are contiguous")
		assert.False(t, seen[m.Version])
		seen[m.Version] = true
		assert.NotEmpty(t, m.Description)
		assert.NotEmpty(t, m.Up)
		assert.NotEmpty(t, m.Down)
	}
}

func TestMigrations_SearchFunctionTakesPrefixedParams(t *testing.T) {
	up := migrations.CreateSearchFunctions.Up
	for _, p := range []string{"p_search_query", "p_language", "p_company", "p_date_from", "p_date_to", "p_limit", "p_offset"} {
		assert.Contains(t, up, p)
	}
	assert.Contains(t, up, "ORDER BY j.created_at DESC, j.id DESC")
}

func TestNewPostgresPool_BadURL(t *testing.T) {
	_, err := db.NewPostgresPool(context.Background(), "not a url ::", db.PoolOptions{})
	assert.Error(t, err)
}
