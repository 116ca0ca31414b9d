package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/catalogix/askdex/internal/db"
)

// scoreField is the implicit score attribute FT.SEARCH yields for a KNN
// query over a vector field aliased "embedding".
const scoreField = "__embedding_score"

// filterErrSubstrings identify the "index cannot honor this filter" error
// class. Anything else from FT.SEARCH is a hard backend error.
var filterErrSubstrings = []string{
	"unknown field",
	"no such filter",
	"not defined in the index",
	"attribute not in schema",
}

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// A filter over fields the index was not built with yields
// db.ErrFilterUnsupported so callers can fall back.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	knnPart := fmt.Sprintf("[KNN %d @embedding $BLOB]", q.K)
	queryStr := "*=>" + knnPart
	if filterStr := buildFilter(q.Filter); filterStr != "" {
		queryStr = fmt.Sprintf("(%s)=>%s", filterStr, knnPart)
	}

	args := []string{
		q.IndexName, queryStr,
		"RETURN", "1", scoreField,
		"SORTBY", scoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if !q.Filter.IsEmpty() && isFilterUnsupportedErr(err) {
			return nil, fmt.Errorf("%w: %v", db.ErrFilterUnsupported, err)
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

func isFilterUnsupportedErr(err error) bool {
	for _, substr := range filterErrSubstrings {
		if isRedisErr(err, substr) {
			return true
		}
	}
	return false
}

// parseKNNResult converts the RESP2 reply into entries sorted by
// descending similarity.
func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key}
		if scoreStr, ok := parseFieldPairs(fields)[scoreField]; ok {
			if dist, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = max(0, 1.0-dist) // cosine distance → similarity, clamped to [0,1]
			}
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// buildFilter translates a Filter into an FT.SEARCH tag pre-filter,
// conditions AND-joined in sorted key order for determinism.
func buildFilter(f db.Filter) string {
	if f.IsEmpty() {
		return ""
	}

	keys := f.Keys()
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("@%s:{%s}", k, escapeTag(f[k])))
	}
	return strings.Join(parts, " ")
}

// escapeTag escapes RediSearch tag syntax characters in a filter value.
func escapeTag(v string) string {
	var sb strings.Builder
	for _, r := range v {
		switch r {
		case ' ', ',', '.', '<', '>', '{', '}', '[', ']', '"', '\'', ':', ';',
			'!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '-', '+', '=',
			'~', '|', '/', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// vectorToBytes serializes []float32 to the binary blob FT.SEARCH expects.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
