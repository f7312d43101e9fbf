package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"
)

const (
	indexName = "documents"
	keyPrefix = "doc:"
)

// RedisIndex implements Index on a RediSearch-capable Redis via rueidis.
type RedisIndex struct {
	client rueidis.Client
}

var _ Index = (*RedisIndex)(nil)

// NewRedisIndex connects to the search index at addr.
func NewRedisIndex(addr, password string) (*RedisIndex, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}
	return &RedisIndex{client: client}, nil
}

// EnsureIndex creates the FT index over doc:* hashes; existing index is fine.
func (x *RedisIndex) EnsureIndex(ctx context.Context) error {
	cmd := x.client.B().Arbitrary("FT.CREATE").
		Args(indexName, "ON", "HASH", "PREFIX", "1", keyPrefix, "SCHEMA", "text", "TEXT").
		Build()
	if err := x.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// IndexDocument writes the entry hash. HSET overwrites, so re-indexing the
// same id never produces a second entry.
func (x *RedisIndex) IndexDocument(ctx context.Context, entry Entry) error {
	cmd := x.client.B().Hset().Key(key(entry.ID)).FieldValue().FieldValue("text", entry.Text).Build()
	if err := x.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("index document %d: %w", entry.ID, err)
	}
	return nil
}

// IndexMany writes all entries in a single DoMulti round trip.
func (x *RedisIndex) IndexMany(ctx context.Context, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	cmds := make([]rueidis.Completed, len(entries))
	for i, entry := range entries {
		cmds[i] = x.client.B().Hset().Key(key(entry.ID)).FieldValue().FieldValue("text", entry.Text).Build()
	}

	failed := 0
	var firstErr error
	for _, res := range x.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if failed == len(entries) && firstErr != nil {
		return failed, fmt.Errorf("index batch: %w", firstErr)
	}
	return failed, nil
}

// Search runs FT.SEARCH over the text field and returns matching ids.
func (x *RedisIndex) Search(ctx context.Context, query string, limit int) ([]int64, error) {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	cmd := x.client.B().Arbitrary("FT.SEARCH").
		Args(indexName, textQuery(query), "NOCONTENT", "LIMIT", "0", strconv.Itoa(limit), "DIALECT", "2").
		Build()
	raw, err := x.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return parseSearchIDs(raw)
}

// Delete removes the entry hash for a document id.
func (x *RedisIndex) Delete(ctx context.Context, id int64) error {
	cmd := x.client.B().Del().Key(key(id)).Build()
	if err := x.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("delete index entry %d: %w", id, err)
	}
	return nil
}

// Ping checks connectivity.
func (x *RedisIndex) Ping(ctx context.Context) error {
	cmd := x.client.B().Ping().Build()
	if err := x.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (x *RedisIndex) Close() {
	x.client.Close()
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// parseSearchIDs reads a NOCONTENT reply: [total, key1, key2, ...].
func parseSearchIDs(raw []rueidis.RedisMessage) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(raw)-1)
	for _, msg := range raw[1:] {
		k, err := msg.ToString()
		if err != nil {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(k, keyPrefix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// textQuery builds the FT.SEARCH match clause for the text field.
func textQuery(query string) string {
	return fmt.Sprintf("@text:(%s)", escapeQuery(query))
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`=`, `\=`,
	`~`, `\~`,
	`:`, `\:`,
	`*`, `\*`,
	`%`, `\%`,
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

// isRedisErr checks if err is a Redis server error containing substr.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
