package cache

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// StandingsCache keeps one sorted set per network with each member's XP
// total. The users table stays the source of truth; the ledger writes
// through on every nonzero delta and readers rebuild the set when cold.
type StandingsCache struct {
	client *redis.Client
}

func NewStandingsCache(addr, password string) (*StandingsCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("Connected to Redis")
	return &StandingsCache{client: rdb}, nil
}

func standingsKey(networkID string) string {
	return "network:" + networkID + ":xp"
}

// SetMemberScore writes a member's current XP total into the network's set.
func (c *StandingsCache) SetMemberScore(ctx context.Context, networkID, userID string, total int64) error {
	return c.client.ZAdd(ctx, standingsKey(networkID), redis.Z{
		Score:  float64(total),
		Member: userID,
	}).Err()
}

// RemoveMember drops a user from a network's set (leave/kick).
func (c *StandingsCache) RemoveMember(ctx context.Context, networkID, userID string) error {
	return c.client.ZRem(ctx, standingsKey(networkID), userID).Err()
}

// DropNetwork deletes a network's set entirely. Called after merges and
// teardown; the target set rebuilds lazily on the next read.
func (c *StandingsCache) DropNetwork(ctx context.Context, networkID string) error {
	return c.client.Del(ctx, standingsKey(networkID)).Err()
}

// Entry is one standings row, highest XP first.
type Entry struct {
	UserID string `json:"user_id"`
	Total  int64  `json:"total"`
	Rank   int    `json:"rank"`
}

// Standings returns up to limit members ordered by XP descending. A nil,
// nil result means the set is cold and the caller should rebuild it.
func (c *StandingsCache) Standings(ctx context.Context, networkID string, limit int) ([]Entry, error) {
	zs, err := c.client.ZRevRangeWithScores(ctx, standingsKey(networkID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(zs) == 0 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{UserID: id, Total: int64(z.Score), Rank: i + 1})
	}
	return entries, nil
}

// Rank returns a member's 1-based position in their network's standings,
// or 0 when the member is not in the set.
func (c *StandingsCache) Rank(ctx context.Context, networkID, userID string) (int, error) {
	rank, err := c.client.ZRevRank(ctx, standingsKey(networkID), userID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(rank) + 1, nil
}
