package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsAMiss(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.NoError(t, repo.Set(ctx, "stats:u1", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "stats:u1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.DeleteByPattern(ctx, "stats:*"))
}
