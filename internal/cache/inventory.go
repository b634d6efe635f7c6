package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	likeCountKeyPrefix   = "post:%d:likes"
	memberCountKeyPrefix = "community:%d:members"
)

const (
	// LikeCountTTL bounds staleness of cached like counts; writes invalidate
	// eagerly so the TTL only matters for out-of-band mutations.
	LikeCountTTL = 10 * time.Minute
	// MemberCountTTL bounds staleness of cached community member counts.
	MemberCountTTL = 5 * time.Minute
)

func LikeCountKey(postID uint) string {
	return fmt.Sprintf(likeCountKeyPrefix, postID)
}

func MemberCountKey(communityID uint) string {
	return fmt.Sprintf(memberCountKeyPrefix, communityID)
}

func (c *Cache) InvalidateLikeCount(ctx context.Context, postID uint) {
	c.Invalidate(ctx, LikeCountKey(postID))
}

func (c *Cache) InvalidateMemberCount(ctx context.Context, communityID uint) {
	c.Invalidate(ctx, MemberCountKey(communityID))
}
