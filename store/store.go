package store

import (
	"context"
	"fmt"
	"time"

	"github.com/akalem0808/memori/internal/profile"
	"github.com/akalem0808/memori/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	recordCache *cache.Cache // cache for memory records by UID
	userCache   *cache.Cache // cache for users
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:      driver,
		profile:     profile,
		cacheConfig: cacheConfig,
		recordCache: cache.New(cacheConfig),
		userCache:   cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Profile() *profile.Profile {
	return s.profile
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.recordCache.Close()
	s.userCache.Close()

	return s.driver.Close()
}

func (s *Store) CreateMemoryRecord(ctx context.Context, create *MemoryRecord) (*MemoryRecord, error) {
	record, err := s.driver.CreateMemoryRecord(ctx, create)
	if err != nil {
		return nil, err
	}
	s.recordCache.Set(record.UID, record)
	return record, nil
}

func (s *Store) ListMemoryRecords(ctx context.Context, find *FindMemoryRecord) ([]*MemoryRecord, error) {
	return s.driver.ListMemoryRecords(ctx, find)
}

// GetMemoryRecord returns a single record or nil when not found.
func (s *Store) GetMemoryRecord(ctx context.Context, find *FindMemoryRecord) (*MemoryRecord, error) {
	if find.UID != nil {
		if v, ok := s.recordCache.Get(*find.UID); ok {
			return v.(*MemoryRecord), nil
		}
	}

	list, err := s.driver.ListMemoryRecords(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	record := list[0]
	s.recordCache.Set(record.UID, record)
	return record, nil
}

func (s *Store) UpdateMemoryRecord(ctx context.Context, update *UpdateMemoryRecord) error {
	if err := s.driver.UpdateMemoryRecord(ctx, update); err != nil {
		return err
	}
	// The cached copy is stale after an update; drop whatever maps to this id.
	s.invalidateRecordByID(ctx, update.ID)
	return nil
}

func (s *Store) DeleteMemoryRecord(ctx context.Context, delete *DeleteMemoryRecord) error {
	if delete.UID != nil {
		s.recordCache.Delete(*delete.UID)
	}
	for _, uid := range delete.UIDs {
		s.recordCache.Delete(uid)
	}
	return s.driver.DeleteMemoryRecord(ctx, delete)
}

func (s *Store) UpsertMemoryEmbedding(ctx context.Context, recordID int32, embedding []float32) error {
	return s.driver.UpsertMemoryEmbedding(ctx, recordID, embedding)
}

func (s *Store) SearchMemoriesByVector(ctx context.Context, embedding []float32, limit int) ([]*MemoryRecord, []float32, error) {
	return s.driver.SearchMemoriesByVector(ctx, embedding, limit)
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.Username), user)
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.Username), user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns a single user or nil when not found.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.Username != nil && find.ID == nil && find.Role == nil {
		if v, ok := s.userCache.Get(userCacheKey(*find.Username)); ok {
			return v.(*User), nil
		}
	}

	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	user := list[0]
	s.userCache.Set(userCacheKey(user.Username), user)
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	return s.driver.DeleteUser(ctx, delete)
}

func (s *Store) invalidateRecordByID(ctx context.Context, id int32) {
	list, err := s.driver.ListMemoryRecords(ctx, &FindMemoryRecord{ID: &id})
	if err == nil && len(list) > 0 {
		s.recordCache.Delete(list[0].UID)
	}
}

func userCacheKey(username string) string {
	return fmt.Sprintf("user:%s", username)
}
