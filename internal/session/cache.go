// Package session provides a caching layer over session lookups so the
// authentication middleware does not hit the database on every request.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/banseok/hajaro"
	"github.com/patrickmn/go-cache"
)

// Cache resolves bearer tokens to users, caching results in memory.
// Entries expire after a short TTL so revocations converge quickly; the
// database still validates on every cache miss.
type Cache struct {
	sessions hajaro.SessionService
	users    hajaro.UserService
	cache    *cache.Cache
}

// NewCache creates a session cache with a 5-minute TTL and 10-minute
// cleanup interval.
func NewCache(sessions hajaro.SessionService, users hajaro.UserService) *Cache {
	return &Cache{
		sessions: sessions,
		users:    users,
		cache:    cache.New(5*time.Minute, 10*time.Minute),
	}
}

// sessionUser combines session and user data under a single cache key.
type sessionUser struct {
	Session *hajaro.Session
	User    *hajaro.User
}

// GetUser resolves a bearer token to its user, using the cache first.
func (c *Cache) GetUser(ctx context.Context, token string) (*hajaro.User, error) {
	key := cacheKey(token)

	if cached, found := c.cache.Get(key); found {
		su := cached.(sessionUser)
		if !su.Session.Expired() {
			return su.User, nil
		}
		c.cache.Delete(key)
	}

	session, err := c.sessions.FindSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := c.users.FindUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, sessionUser{Session: session, User: user}, cache.DefaultExpiration)
	return user, nil
}

// Invalidate removes a token from the cache. Called on logout so the
// revocation is immediate rather than waiting for the TTL.
func (c *Cache) Invalidate(token string) {
	c.cache.Delete(cacheKey(token))
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.cache.Flush()
}

// ItemCount returns the number of cached entries, for monitoring.
func (c *Cache) ItemCount() int {
	return c.cache.ItemCount()
}

func cacheKey(token string) string {
	return fmt.Sprintf("session_user:%s", token)
}
