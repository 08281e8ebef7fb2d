package registry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStaticCredentials(t *testing.T) {
	creds, err := StaticCredentials{Username: "user", Password: "pass"}.Credentials(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.Username != "user" || creds.Password != "pass" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
	if _, err := (StaticCredentials{Username: "user"}).Credentials(context.Background()); err == nil {
		t.Error("expected error for missing password")
	}
}

type countingProvider struct {
	calls int
	err   error
}

func (c *countingProvider) Credentials(ctx context.Context) (Credentials, error) {
	c.calls++
	if c.err != nil {
		return Credentials{}, c.err
	}
	return Credentials{Username: "user", Password: "pass"}, nil
}

func TestCachedCredentials(t *testing.T) {
	provider := &countingProvider{}
	cached := NewCachedCredentials(provider, time.Minute)
	for i := 0; i < 3; i++ {
		if _, err := cached.Credentials(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if provider.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", provider.calls)
	}
}

func TestCachedCredentialsDoesNotCacheFailure(t *testing.T) {
	provider := &countingProvider{err: errors.New("backend down")}
	cached := NewCachedCredentials(provider, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := cached.Credentials(context.Background()); err == nil {
			t.Fatal("expected error from backend")
		}
	}
	if provider.calls != 2 {
		t.Errorf("failures must not be cached: expected 2 backend calls, got %d", provider.calls)
	}
}
