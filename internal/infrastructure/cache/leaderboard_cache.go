package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	appsales "github.com/stockadoodle/backend/internal/application/sales"
)

const (
	leaderboardRankKey = "leaderboard:rank"
	leaderboardDataKey = "leaderboard:retailers"
)

// RedisLeaderboardCache implements LeaderboardCache on a Redis sorted set.
// Members are ranked by a composite score (streak first, lifetime sales as
// tie-break); exact values live in a companion hash.
type RedisLeaderboardCache struct {
	client *redis.Client
}

// NewRedisLeaderboardCache creates a new Redis-backed leaderboard cache
func NewRedisLeaderboardCache(addr, password string, db int) (*RedisLeaderboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLeaderboardCache{client: client}, nil
}

// NewRedisLeaderboardCacheWithClient creates a cache with an existing Redis client
func NewRedisLeaderboardCacheWithClient(client *redis.Client) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{client: client}
}

// Update records a retailer's current standing
func (c *RedisLeaderboardCache) Update(ctx context.Context, retailerID uuid.UUID, streak int, totalSales decimal.Decimal) error {
	member := retailerID.String()

	pipe := c.client.TxPipeline()
	pipe.ZAdd(ctx, leaderboardRankKey, redis.Z{
		Score:  rankScore(streak, totalSales),
		Member: member,
	})
	pipe.HSet(ctx, leaderboardDataKey, member,
		fmt.Sprintf("%d|%s", streak, totalSales.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update leaderboard: %w", err)
	}
	return nil
}

// Top returns up to limit entries, ranked best first
func (c *RedisLeaderboardCache) Top(ctx context.Context, limit int) ([]appsales.LeaderboardEntry, error) {
	members, err := c.client.ZRevRange(ctx, leaderboardRankKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard ranking: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	values, err := c.client.HMGet(ctx, leaderboardDataKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard entries: %w", err)
	}

	entries := make([]appsales.LeaderboardEntry, 0, len(members))
	for i, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		streak, totalSales, ok := parseEntry(values[i])
		if !ok {
			continue
		}
		entries = append(entries, appsales.LeaderboardEntry{
			Rank:          len(entries) + 1,
			RetailerID:    id,
			CurrentStreak: streak,
			TotalSales:    totalSales,
		})
	}
	return entries, nil
}

// Invalidate drops the cached leaderboard so the next read falls back to
// the metrics store. Called after the day rollover rewrites streaks.
func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, leaderboardRankKey, leaderboardDataKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisLeaderboardCache) Close() error {
	return c.client.Close()
}

// rankScore folds the streak and lifetime sales into one sortable score.
// The streak dominates; sales only order retailers within the same streak.
func rankScore(streak int, totalSales decimal.Decimal) float64 {
	sales, _ := totalSales.Float64()
	return float64(streak) + sales/1e12
}

// parseEntry decodes the "streak|totalSales" hash value
func parseEntry(v interface{}) (int, decimal.Decimal, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, decimal.Zero, false
	}
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return 0, decimal.Zero, false
	}
	streak, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, decimal.Zero, false
	}
	totalSales, err := decimal.NewFromString(parts[1])
	if err != nil {
		return 0, decimal.Zero, false
	}
	return streak, totalSales, true
}

// Ensure RedisLeaderboardCache implements LeaderboardCache
var _ appsales.LeaderboardCache = (*RedisLeaderboardCache)(nil)
