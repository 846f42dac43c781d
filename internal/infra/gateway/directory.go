package gateway

import (
	"context"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"

	"github.com/totegamma/liveboard/internal/domain"
)

const directoryCacheExpiration = 600 // seconds

// UserSource resolves principal IDs to accounts.
type UserSource interface {
	GetByIDs(ctx context.Context, ids []string) ([]domain.Account, error)
}

// DirectoryGateway performs the read-side username join for posts and
// comments, with memcached in front of the user table. Cache failures are
// treated as misses; the source stays authoritative.
type DirectoryGateway struct {
	source UserSource
	mc     *memcache.Client
}

func NewDirectoryGateway(source UserSource, mc *memcache.Client) *DirectoryGateway {
	return &DirectoryGateway{
		source: source,
		mc:     mc,
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("dir:%016x", xxh3.HashString(id))
}

func (g *DirectoryGateway) Lookup(ctx context.Context, ids []string) (map[string]string, error) {

	result := make(map[string]string)
	remaining := []string{}

	for _, id := range ids {
		if _, done := result[id]; done {
			continue
		}
		if g.mc != nil {
			item, err := g.mc.Get(cacheKey(id))
			if err == nil {
				result[id] = string(item.Value)
				continue
			}
		}
		remaining = append(remaining, id)
	}

	if len(remaining) == 0 {
		return result, nil
	}

	accounts, err := g.source.GetByIDs(ctx, remaining)
	if err != nil {
		return nil, err
	}

	for _, account := range accounts {
		result[account.ID] = account.Username
		if g.mc != nil {
			g.mc.Set(&memcache.Item{
				Key:        cacheKey(account.ID),
				Value:      []byte(account.Username),
				Expiration: directoryCacheExpiration,
			})
		}
	}

	return result, nil
}
