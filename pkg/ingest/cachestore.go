package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// CachedResponse is one stored API response, keyed by the query term that produced it.
type CachedResponse struct {
	Term string
	Body []byte
}

// CacheStore is the handoff between the fetch and seed jobs. List returns
// responses ordered by term.
type CacheStore interface {
	Put(ctx context.Context, term string, body []byte) error
	List(ctx context.Context) ([]CachedResponse, error)
}

const cacheFileExt = ".json"

// FileCacheStore keeps one <term>.json file per term in a directory.
type FileCacheStore struct {
	dir string
}

var _ CacheStore = (*FileCacheStore)(nil)

// NewFileCacheStore returns a store rooted at dir. The directory is created on
// the first Put.
func NewFileCacheStore(dir string) *FileCacheStore {
	return &FileCacheStore{dir: dir}
}

var fileNameEscaper = strings.NewReplacer("%", "%25", "/", "%2F", "\\", "%5C", "\x00", "%00")

// termFileName maps a term to a file name inside the cache directory. Only the
// characters a file name cannot hold, and a leading dot, are escaped, so
// ordinary terms keep their <term>.json name.
func termFileName(term string) string {
	name := fileNameEscaper.Replace(term)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return name + cacheFileExt
}

// termFromFileName reverses termFileName. Names that do not decode are
// returned as they are.
func termFromFileName(name string) string {
	base := strings.TrimSuffix(name, cacheFileExt)
	if !strings.Contains(base, "%") {
		return base
	}
	term, err := url.PathUnescape(base)
	if err != nil {
		return base
	}
	return term
}

// Put writes body to <dir>/<term>.json, replacing any previous response.
// Terms such as "Bosnia/Herzegovina" are stored under an escaped name.
func (s *FileCacheStore) Put(_ context.Context, term string, body []byte) error {
	if term == "" {
		return errors.New("empty term")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	final := filepath.Join(s.dir, termFileName(term))
	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", final, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", final, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move response into place: %w", err)
	}
	return nil
}

// List reads every .json file in the directory. Other files and
// subdirectories are ignored.
func (s *FileCacheStore) List(_ context.Context) ([]CachedResponse, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var out []CachedResponse
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, cacheFileExt) || strings.HasPrefix(name, ".") {
			continue
		}
		body, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		out = append(out, CachedResponse{Term: termFromFileName(name), Body: body})
	}
	sortByTerm(out)
	return out, nil
}

// DefaultRedisCacheKey is the hash that holds responses in Redis.
const DefaultRedisCacheKey = "divelog:cache"

// RedisCacheStore keeps responses in one Redis hash: field = term, value = body.
type RedisCacheStore struct {
	client redis.Cmdable
	key    string
}

var _ CacheStore = (*RedisCacheStore)(nil)

// NewRedisCacheStore returns a store on client. An empty key uses DefaultRedisCacheKey.
func NewRedisCacheStore(client redis.Cmdable, key string) *RedisCacheStore {
	if key == "" {
		key = DefaultRedisCacheKey
	}
	return &RedisCacheStore{client: client, key: key}
}

func (s *RedisCacheStore) Put(ctx context.Context, term string, body []byte) error {
	if term == "" {
		return errors.New("empty term")
	}
	if err := s.client.HSet(ctx, s.key, term, body).Err(); err != nil {
		return fmt.Errorf("failed to store response for %q: %w", term, err)
	}
	return nil
}

func (s *RedisCacheStore) List(ctx context.Context) ([]CachedResponse, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached responses: %w", err)
	}
	out := make([]CachedResponse, 0, len(all))
	for term, body := range all {
		out = append(out, CachedResponse{Term: term, Body: []byte(body)})
	}
	sortByTerm(out)
	return out, nil
}

// MemoryCacheStore keeps responses in process memory.
type MemoryCacheStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ CacheStore = (*MemoryCacheStore)(nil)

func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{data: make(map[string][]byte)}
}

func (s *MemoryCacheStore) Put(_ context.Context, term string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[term] = append([]byte(nil), body...)
	return nil
}

func (s *MemoryCacheStore) List(_ context.Context) ([]CachedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CachedResponse, 0, len(s.data))
	for term, body := range s.data {
		out = append(out, CachedResponse{Term: term, Body: append([]byte(nil), body...)})
	}
	sortByTerm(out)
	return out, nil
}

func sortByTerm(rs []CachedResponse) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Term < rs[j].Term })
}
