package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Statement cache TTL. Short enough that a freshly recorded payment shows up
// within a minute even when no write path invalidates the key.
const statementTTL = 60 * time.Second

// Cache holds rendered statements in Redis. All failures degrade to a miss;
// the ledger never depends on Redis being up.
type Cache struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewCache(rdb *redis.Client, log *slog.Logger) *Cache {
	return &Cache{rdb: rdb, log: log}
}

func statementKey(partyID int64) string {
	return fmt.Sprintf("ledger:party:%d", partyID)
}

func (c *Cache) GetStatement(ctx context.Context, partyID int64) (*Statement, bool) {
	raw, err := c.rdb.Get(ctx, statementKey(partyID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WarnContext(ctx, "ledger cache read failed", "party_id", partyID, "error", err)
		}
		return nil, false
	}
	var st Statement
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, false
	}
	return &st, true
}

func (c *Cache) PutStatement(ctx context.Context, partyID int64, st *Statement) {
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, statementKey(partyID), raw, statementTTL).Err(); err != nil {
		c.log.WarnContext(ctx, "ledger cache write failed", "party_id", partyID, "error", err)
	}
}

// Invalidate drops a party's cached statement. Called after writes that the
// TTL alone would surface too slowly, such as manual status overrides.
func (c *Cache) Invalidate(ctx context.Context, partyID int64) {
	if err := c.rdb.Del(ctx, statementKey(partyID)).Err(); err != nil {
		c.log.WarnContext(ctx, "ledger cache invalidate failed", "party_id", partyID, "error", err)
	}
}
