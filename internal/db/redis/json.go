package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/catalogix/askdex/internal/db"
)

// Catalog documents live as RedisJSON values; the FT indexes attach to
// them by key prefix, so writes here are immediately searchable.

// JSONSet writes data at path within the document at key. Use "$" to
// replace the document root.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	cmd := s.b().Arbitrary("JSON.SET").Keys(key).Args(path, string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONGet reads the document at key, optionally narrowed to paths. A
// missing key or empty payload maps to db.ErrKeyNotFound.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(key).Args(paths...).Build()

	raw, err := s.do(ctx, cmd).ToString()
	switch {
	case err == nil && raw != "":
		return []byte(raw), nil
	case err == nil || rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	default:
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
}
