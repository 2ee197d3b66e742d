package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	PostKeyPrefix = "post:%d"
	// SearchKeyPrefix is followed by the lower-cased query.
	SearchKeyPrefix = "search:users:%s"
	BlacklistPrefix = "blacklist:"
)

const (
	UserTTL   = 5 * time.Minute
	PostTTL   = 2 * time.Minute
	SearchTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func SearchKey(query string) string {
	return fmt.Sprintf(SearchKeyPrefix, query)
}

// BlacklistKey is where a revoked token id is parked until the token would have expired.
func BlacklistKey(jti string) string {
	return BlacklistPrefix + jti
}

// Invalidate drops the given keys. Failures only cost staleness until TTL.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateUser drops the cached user rows, counters included.
func InvalidateUser(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UserKey(id))
	}
	Invalidate(ctx, keys...)
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}
