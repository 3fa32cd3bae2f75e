package shared

import "time"

const (
	UserID    = "user_id"
	UserRole  = "user_role"
	SessionID = "session_id"

	RoleUser   = "user"
	RoleAuthor = "author"
	RoleAdmin  = "admin"
)

// Redis key prefixes. The exact naming is load bearing: ops tooling and the
// cache facade enumerate keys by these prefixes.
const (
	LoginAttemptKeyPrefix    = "login_attempt:"
	LockoutKeyPrefix         = "lockout:"
	LockoutNotifiedKeyPrefix = "lockout_notified:"
	LockoutCountKeyPrefix    = "lockout_count:"
	EmailRateKeyPrefix       = "email_rate:"
	ArticleViewKeyPrefix     = "article_view:"
	ArticleLikeKeyPrefix     = "article_like:"

	CacheNamespaceArticles = "articles::"
	CacheNamespaceTags     = "tags::"
	CacheNamespaceComments = "comments::"
	CacheNamespaceSearch   = "search::"
	CacheNamespaceFeed     = "feed::"
)

const (
	InteractionDedupWindow = 24 * time.Hour
	EmailRateWindow        = time.Hour
)
