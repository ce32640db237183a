package cache

import (
	"context"
	"strings"

	"directory-enricher/internal/common/logging"
	"directory-enricher/internal/directory"
)

// namedList returns the cached tree for a category, fetching it on
// demand under per-category single-flight. Returns nil when the tree is
// unavailable; enrichment then degrades to raw text for that category.
func (c *Cache) namedList(ctx context.Context, category string) *directory.NamedList {
	key := strings.ToLower(strings.TrimSpace(category))
	if key == "" {
		return nil
	}

	if cached, found := c.lists.Get(key); found {
		return cached.(*directory.NamedList)
	}

	result, err, _ := c.group.Do("list:"+key, func() (interface{}, error) {
		// Re-check under single-flight: a concurrent caller may have
		// populated the cache while we waited.
		if cached, found := c.lists.Get(key); found {
			return cached.(*directory.NamedList), nil
		}

		list, err := c.client.FetchNamedList(ctx, c.creds.Current(), category)
		if err != nil {
			return nil, err
		}

		c.lists.Set(key, list, c.ttl)
		return list, nil
	})
	if err != nil {
		c.logger.Warn("Named-list fetch failed, enrichment will fall back to raw text",
			logging.Field{Key: "category", Value: category},
			logging.Field{Key: "error", Value: err.Error()},
		)
		return nil
	}

	return result.(*directory.NamedList)
}
