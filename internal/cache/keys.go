package cache

import "time"

const (
	// PageKeyPrefix namespaces rendered pages inside Redis.
	PageKeyPrefix = "page:"
	// IndexPageKey is the single slot the global feed is cached under,
	// whatever the user or page parameter.
	IndexPageKey = "index_page"
	// BlacklistKeyPrefix marks revoked session token IDs.
	BlacklistKeyPrefix = "blacklist:"
)

// DefaultIndexTTL is how long the global feed stays cached unless configured otherwise.
const DefaultIndexTTL = 20 * time.Second

// BlacklistKey is the Redis key recording a revoked session token.
func BlacklistKey(jti string) string {
	return BlacklistKeyPrefix + jti
}
