package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/minhdn/jarbot/internal/domain"
)

func TestGetPut(t *testing.T) {
	s := NewStore(5 * time.Minute)

	if _, ok := s.Get("u1", ResourceBalance); ok {
		t.Fatal("expected miss on empty store")
	}

	s.Put("u1", ResourceBalance, 42)
	v, ok := s.Get("u1", ResourceBalance)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if v.(int) != 42 {
		t.Errorf("got %v, want 42", v)
	}

	// Same user, different resource is a separate slot.
	if _, ok := s.Get("u1", ResourceCategories); ok {
		t.Error("resource kinds must not share slots")
	}
	// Different user, same resource likewise.
	if _, ok := s.Get("u2", ResourceBalance); ok {
		t.Error("users must not share slots")
	}
}

func TestExpiry(t *testing.T) {
	s := NewStore(2 * time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Put("u1", ResourceBalance, "snap")

	current = current.Add(time.Minute)
	if _, ok := s.Get("u1", ResourceBalance); !ok {
		t.Error("entry expired too early")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := s.Get("u1", ResourceBalance); ok {
		t.Error("entry should have expired")
	}
}

func TestZeroTTLDisablesCaching(t *testing.T) {
	s := NewStore(0)
	s.Put("u1", ResourceBalance, "snap")
	if _, ok := s.Get("u1", ResourceBalance); ok {
		t.Error("zero TTL must disable reads")
	}
}

func TestInvalidate(t *testing.T) {
	s := NewStore(time.Hour)
	s.Put("u1", ResourceBalance, 1)
	s.Put("u1", ResourceCategories, 2)
	s.Put("u2", ResourceBalance, 3)

	s.Invalidate("u1", ResourceBalance)
	if _, ok := s.Get("u1", ResourceBalance); ok {
		t.Error("invalidated entry survived")
	}
	if _, ok := s.Get("u1", ResourceCategories); !ok {
		t.Error("unrelated resource was dropped")
	}
	if _, ok := s.Get("u2", ResourceBalance); !ok {
		t.Error("another user's entry was dropped")
	}

	// No resource list drops everything for the user.
	s.Put("u1", ResourceBalance, 1)
	s.Invalidate("u1")
	if _, ok := s.Get("u1", ResourceBalance); ok {
		t.Error("full invalidation missed balance")
	}
	if _, ok := s.Get("u1", ResourceCategories); ok {
		t.Error("full invalidation missed categories")
	}
	if _, ok := s.Get("u2", ResourceBalance); !ok {
		t.Error("full invalidation leaked to another user")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(time.Hour)
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := domain.UserID(rune('a' + n%4))
			for j := 0; j < 200; j++ {
				s.Put(user, ResourceBalance, j)
				s.Get(user, ResourceBalance)
				s.Invalidate(user, ResourceBalance)
			}
		}(i)
	}
	wg.Wait()
}
