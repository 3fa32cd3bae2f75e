package services

import (
	"context"
	"testing"

	"github.com/inkwell-cms/inkwell_api/shared"

	"github.com/stretchr/testify/assert"
)

func TestInteractionDedupsSameIP(t *testing.T) {
	redisSvc, _ := newTestRedis(t)
	svc := &InteractionService{redisSvc: redisSvc}
	ctx := context.Background()

	assert.True(t, svc.RecordViewIfNew(ctx, "my-article", "1.2.3.4"), "first view counts")
	assert.False(t, svc.RecordViewIfNew(ctx, "my-article", "1.2.3.4"), "repeat view within the window does not")
}

func TestInteractionCountsDistinctIPs(t *testing.T) {
	redisSvc, _ := newTestRedis(t)
	svc := &InteractionService{redisSvc: redisSvc}
	ctx := context.Background()

	assert.True(t, svc.RecordViewIfNew(ctx, "my-article", "1.2.3.4"))
	assert.True(t, svc.RecordViewIfNew(ctx, "my-article", "5.6.7.8"))
}

func TestInteractionScopedPerArticle(t *testing.T) {
	redisSvc, _ := newTestRedis(t)
	svc := &InteractionService{redisSvc: redisSvc}
	ctx := context.Background()

	assert.True(t, svc.RecordViewIfNew(ctx, "first-article", "1.2.3.4"))
	assert.True(t, svc.RecordViewIfNew(ctx, "second-article", "1.2.3.4"))
}

func TestInteractionViewsAndLikesIndependent(t *testing.T) {
	redisSvc, _ := newTestRedis(t)
	svc := &InteractionService{redisSvc: redisSvc}
	ctx := context.Background()

	assert.True(t, svc.RecordViewIfNew(ctx, "my-article", "1.2.3.4"))
	assert.True(t, svc.RecordLikeIfNew(ctx, "my-article", "1.2.3.4"))
	assert.False(t, svc.RecordLikeIfNew(ctx, "my-article", "1.2.3.4"))
}

func TestInteractionRejectsUnresolvableIP(t *testing.T) {
	redisSvc, _ := newTestRedis(t)
	svc := &InteractionService{redisSvc: redisSvc}
	ctx := context.Background()

	assert.False(t, svc.RecordViewIfNew(ctx, "my-article", ""))
	assert.False(t, svc.RecordViewIfNew(ctx, "my-article", "unknown"))
}

func TestInteractionFailsOpenOnStoreError(t *testing.T) {
	svc := &InteractionService{redisSvc: newBrokenRedis(t)}
	ctx := context.Background()

	assert.True(t, svc.RecordViewIfNew(ctx, "my-article", "1.2.3.4"))
	assert.True(t, svc.RecordViewIfNew(ctx, "my-article", "1.2.3.4"), "a down store never blocks counting")
}

func TestInteractionStoresHashedIPs(t *testing.T) {
	redisSvc, mr := newTestRedis(t)
	svc := &InteractionService{redisSvc: redisSvc}
	ctx := context.Background()

	svc.RecordViewIfNew(ctx, "my-article", "1.2.3.4")

	keys := mr.Keys()
	assert.Len(t, keys, 1)
	assert.Equal(t, shared.ArticleViewKeyPrefix+"my-article:"+HashIP("1.2.3.4"), keys[0])
	assert.NotContains(t, keys[0], "1.2.3.4", "raw addresses never reach the store")
}

func TestHashIPStable(t *testing.T) {
	assert.Equal(t, HashIP("1.2.3.4"), HashIP("1.2.3.4"))
	assert.NotEqual(t, HashIP("1.2.3.4"), HashIP("1.2.3.5"))
	assert.Len(t, HashIP("1.2.3.4"), 64)
}

