package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"cafedash/internal/cell"
	"cafedash/internal/logger"
)

// CachedReader serves sheet rows from Redis and falls through to the
// wrapped Reader on a miss. Cache failures are logged, never returned.
type CachedReader struct {
	next   Reader
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
}

// NewCachedReader wraps next with a Redis cache. Keys are
// "<prefix>:rows:<sheet>".
func NewCachedReader(next Reader, client *redis.Client, ttl time.Duration, prefix string) *CachedReader {
	return &CachedReader{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: prefix,
		log:    logger.WithComponent("sheets-cache"),
	}
}

// cachedCell keeps the cell kind so a cached Date stays a Date.
type cachedCell struct {
	K cell.Kind `json:"k"`
	S string    `json:"s,omitempty"`
	N float64   `json:"n,omitempty"`
	D string    `json:"d,omitempty"`
}

func (c *CachedReader) key(sheetName string) string {
	return fmt.Sprintf("%s:rows:%s", c.prefix, sheetName)
}

// ReadRows returns cached rows for sheetName or reads and caches them.
func (c *CachedReader) ReadRows(ctx context.Context, sheetName string) ([]cell.Row, error) {
	key := c.key(sheetName)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		rows, decodeErr := decodeRows(data)
		if decodeErr == nil {
			c.log.Debug().Str("sheet", sheetName).Int("rows", len(rows)).Msg("Cache hit")
			return rows, nil
		}
		c.log.Warn().Err(decodeErr).Str("key", key).Msg("Discarding unreadable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed, reading upstream")
	}

	rows, err := c.next.ReadRows(ctx, sheetName)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeRows(rows)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to encode rows for cache")
		return rows, nil
	}
	if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return rows, nil
}

// Invalidate drops the cached rows of the given sheets.
func (c *CachedReader) Invalidate(ctx context.Context, sheetNames ...string) error {
	if len(sheetNames) == 0 {
		return nil
	}
	keys := make([]string, len(sheetNames))
	for i, name := range sheetNames {
		keys[i] = c.key(name)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}

func encodeRows(rows []cell.Row) ([]byte, error) {
	out := make([]map[string]cachedCell, len(rows))
	for i, row := range rows {
		m := make(map[string]cachedCell, len(row))
		for header, v := range row {
			cc := cachedCell{K: v.Kind}
			switch v.Kind {
			case cell.String:
				cc.S = v.Str
			case cell.Number:
				cc.N = v.Num
			case cell.Date:
				cc.D = v.Time.Format(time.DateOnly)
			}
			m[header] = cc
		}
		out[i] = m
	}
	return json.Marshal(out)
}

func decodeRows(data []byte) ([]cell.Row, error) {
	var raw []map[string]cachedCell
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	rows := make([]cell.Row, len(raw))
	for i, m := range raw {
		row := make(cell.Row, len(m))
		for header, cc := range m {
			switch cc.K {
			case cell.String:
				row[header] = cell.StringValue(cc.S)
			case cell.Number:
				row[header] = cell.NumberValue(cc.N)
			case cell.Date:
				t, err := time.Parse(time.DateOnly, cc.D)
				if err != nil {
					return nil, fmt.Errorf("cached date %q: %w", cc.D, err)
				}
				row[header] = cell.DateValue(t)
			default:
				row[header] = cell.NullValue()
			}
		}
		rows[i] = row
	}
	return rows, nil
}
