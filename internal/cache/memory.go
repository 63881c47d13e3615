package cache

import (
	"fmt"
	"path"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests. TTLs are honored lazily:
// expired entries are dropped on access.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]memoryEntry
	hashes map[string]map[string]string

	// Now is overridable so tests can step time past a TTL.
	Now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero = no expiry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]memoryEntry),
		hashes: make(map[string]map[string]string),
		Now:    time.Now,
	}
}

func (m *MemoryStore) get(key string) (string, bool) {
	entry, ok := m.values[key]
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && m.Now().After(entry.expiresAt) {
		delete(m.values, key)
		return "", false
	}
	return entry.value, true
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.get(key)
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (m *MemoryStore) GetBytes(key string) ([]byte, error) {
	val, err := m.Get(key)
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

func (m *MemoryStore) Set(key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: toString(value)}
	if ttl > 0 {
		entry.expiresAt = m.Now().Add(ttl)
	}
	m.values[key] = entry
	return nil
}

func (m *MemoryStore) GetDel(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.get(key)
	if !ok {
		return "", ErrNotFound
	}
	delete(m.values, key)
	return val, nil
}

func (m *MemoryStore) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
		delete(m.hashes, k)
	}
	return nil
}

func (m *MemoryStore) Exists(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(key)
	return ok, nil
}

func (m *MemoryStore) ScanKeys(pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.values {
		if _, live := m.get(k); !live {
			continue
		}
		if matched, _ := path.Match(pattern, k); matched {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *MemoryStore) HashSet(key, field string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	h[field] = toString(value)
	return nil
}

func (m *MemoryStore) HashGet(key, field string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.hashes[key][field]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (m *MemoryStore) HashDelete(key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	return nil
}

func (m *MemoryStore) HashGetAll(key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.hashes[key]))
	for f, v := range m.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func (m *MemoryStore) HashIncrBy(key, field string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	var current int64
	if raw, ok := h[field]; ok {
		fmt.Sscanf(raw, "%d", &current)
	}
	current += delta
	h[field] = fmt.Sprintf("%d", current)
	return current, nil
}

func (m *MemoryStore) Ping() error { return nil }

func toString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
