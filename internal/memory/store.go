package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/store"
)

// MaxEntries caps the memory; the least recently updated entries go first.
const MaxEntries = 200

// Item is a value captured from a page, ready to be remembered.
type Item struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Kind  string `json:"kind,omitempty"`
}

// Store persists the memory map under store.KeyFieldMemory.
type Store struct {
	kv  store.KV
	log *zap.Logger
	now func() time.Time
}

// NewStore wraps kv.
func NewStore(kv store.KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log, now: time.Now}
}

// Load returns the stored entries keyed by normalized key.
func (s *Store) Load(ctx context.Context) (map[string]Entry, error) {
	entries := make(map[string]Entry)
	if _, err := s.kv.Get(ctx, store.KeyFieldMemory, &entries); err != nil {
		return nil, fmt.Errorf("load memory: %w", err)
	}
	for k, e := range entries {
		e.Key = k
		entries[k] = e
	}
	return entries, nil
}

// List returns the entries, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	list := sortedByUpdate(entries)
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

// Upsert remembers items and trims the memory to MaxEntries. Items without
// a usable key or with a blank value are skipped. It returns how many items
// were stored.
func (s *Store) Upsert(ctx context.Context, items []Item) (int, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}

	cache, err := lru.NewWithEvict(MaxEntries, func(key string, _ Entry) {
		s.log.Debug("memory entry evicted", zap.String("key", key))
	})
	if err != nil {
		return 0, err
	}
	for _, e := range sortedByUpdate(entries) {
		cache.Add(e.Key, e)
	}

	now := s.now()
	count := 0
	for _, item := range items {
		label := strings.TrimSpace(item.Label)
		rawKey := strings.TrimSpace(item.Key)
		if rawKey == "" {
			rawKey = label
		}
		key := NormalizeKey(rawKey)
		if key == "" || strings.TrimSpace(item.Value) == "" {
			continue
		}
		if label == "" {
			label = key
		}
		cache.Add(key, Entry{
			Key:       key,
			Label:     label,
			Value:     item.Value,
			UpdatedAt: now.Add(time.Duration(count) * time.Millisecond),
		})
		count++
	}

	next := make(map[string]Entry, cache.Len())
	for _, key := range cache.Keys() {
		if e, ok := cache.Peek(key); ok {
			next[key] = e
		}
	}
	if err := s.kv.Set(ctx, store.KeyFieldMemory, next); err != nil {
		return 0, fmt.Errorf("save memory: %w", err)
	}
	return count, nil
}

// Delete forgets one key. The key is normalized first.
func (s *Store) Delete(ctx context.Context, key string) error {
	entries, err := s.Load(ctx)
	if err != nil {
		return err
	}
	normalized := NormalizeKey(key)
	if _, ok := entries[normalized]; !ok {
		return nil
	}
	delete(entries, normalized)
	return s.kv.Set(ctx, store.KeyFieldMemory, entries)
}

// Clear forgets everything.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Set(ctx, store.KeyFieldMemory, map[string]Entry{})
}

// sortedByUpdate orders entries oldest first, ties broken by key.
func sortedByUpdate(entries map[string]Entry) []Entry {
	list := make([]Entry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.Before(list[j].UpdatedAt)
		}
		return list[i].Key < list[j].Key
	})
	return list
}
