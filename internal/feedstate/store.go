package feedstate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"watchlist-news/internal/store"
)

// ReadStore persists the set of read global ids.
type ReadStore interface {
	Load(ctx context.Context) ([]string, error)
	Add(ctx context.Context, ids ...string) error
}

// NewStore builds the read store selected by config.
func NewStore(cfg *store.Config) (ReadStore, error) {
	switch cfg.FeedState.Store {
	case "redis":
		return NewRedisStore(cfg.FeedState.RedisURL, cfg.FeedState.Key)
	case "", "file":
		return NewFileStore(cfg.FeedState.Path), nil
	}
	return nil, fmt.Errorf("unknown feedstate store '%s'", cfg.FeedState.Store)
}

// FileStore keeps read ids in a JSON array on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *FileStore) readLocked() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("error reading read items: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("error parsing read items: %w", err)
	}
	return ids, nil
}

// Add merges ids into the file, writing a temp file and renaming it into
// place.
func (s *FileStore) Add(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readLocked()
	if err != nil {
		return err
	}

	set := make(map[string]bool, len(existing)+len(ids))
	for _, id := range existing {
		set[id] = true
	}
	for _, id := range ids {
		set[id] = true
	}
	all := make([]string, 0, len(set))
	for id := range set {
		all = append(all, id)
	}
	sort.Strings(all)

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling read items: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating read items dir: %w", err)
		}
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("error writing temporary read items: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("error saving read items: %w", err)
	}
	return nil
}

// RedisStore keeps read ids in a Redis set.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects using a redis:// URL, or a bare host:port.
func NewRedisStore(redisURL, key string) (*RedisStore, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	return NewRedisStoreWithClient(redis.NewClient(opt), key), nil
}

func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "watchlist-news:read-items"
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisStore) Add(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, s.key, members...).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
