package registry

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

// Credentials is the username/password pair for the SOAP service.
type Credentials struct {
	Username string
	Password string
}

// CredentialProvider supplies the SOAP credentials for a submission run.
type CredentialProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials is a CredentialProvider returning a fixed pair, typically
// sourced from configuration or the environment.
type StaticCredentials Credentials

// Credentials returns the configured pair, or an error if either half is
// missing.
func (s StaticCredentials) Credentials(ctx context.Context) (Credentials, error) {
	if s.Username == "" || s.Password == "" {
		return Credentials{}, errors.New("registry: no username / password configured")
	}
	return Credentials(s), nil
}

const credentialsKey = "flshots-credentials"

// CachedCredentials decorates a provider with an expiring cache so a slower
// secret backend is consulted at most once per expiry window.
type CachedCredentials struct {
	Provider CredentialProvider
	Cache    *cache.Cache
}

// NewCachedCredentials wraps provider with a cache expiring after expiry.
func NewCachedCredentials(provider CredentialProvider, expiry time.Duration) *CachedCredentials {
	return &CachedCredentials{
		Provider: provider,
		Cache:    cache.New(expiry, 2*expiry),
	}
}

// Credentials returns the cached pair, consulting the wrapped provider on a
// miss. A provider failure is not cached.
func (c *CachedCredentials) Credentials(ctx context.Context) (Credentials, error) {
	if v, found := c.Cache.Get(credentialsKey); found {
		return v.(Credentials), nil
	}
	creds, err := c.Provider.Credentials(ctx)
	if err != nil {
		return Credentials{}, err
	}
	c.Cache.Set(credentialsKey, creds, cache.DefaultExpiration)
	return creds, nil
}
