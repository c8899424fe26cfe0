package cache

import (
	"fmt"
	"time"
)

const (
	LanguagesKey  = "polyglot:languages"
	LanguagesTTL  = 30 * time.Minute
	ProfileTTL    = 2 * time.Minute
	profileKeyFmt = "polyglot:user:%d:profile"

	// TrendingKey is a sorted set of post ids scored by forum activity.
	TrendingKey = "polyglot:trending:posts"
)

func ProfileKey(userID uint) string {
	return fmt.Sprintf(profileKeyFmt, userID)
}
