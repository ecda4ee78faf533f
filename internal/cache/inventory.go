package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	PostKeyPrefix       = "post:%d"
	SchoolKeyPrefix     = "school:%s"
	SchoolTreeKey       = "schools:tree"
	FeedKeyPrefix       = "feed:%d:%d"
	LoginStateKeyPrefix = "loginstate:%d"
)

const (
	UserTTL       = 5 * time.Minute
	SchoolTTL     = 10 * time.Minute
	SchoolTreeTTL = 2 * time.Minute
	PostTTL       = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func SchoolKey(slug string) string {
	return fmt.Sprintf(SchoolKeyPrefix, slug)
}

func FeedKey(page, size int) string {
	return fmt.Sprintf(FeedKeyPrefix, page, size)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateSchool(ctx context.Context, slug string) {
	Invalidate(ctx, SchoolKey(slug))
	Invalidate(ctx, SchoolTreeKey)
}
