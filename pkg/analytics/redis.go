package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const dayLayout = "2006-01-02"

// RedisTracker keeps an all-time counter, a per-day hash and a capped list of recent views per
// restaurant.
type RedisTracker struct {
	rdb    *redis.Client
	prefix string
	recent int64
	now    func() time.Time
}

func NewRedisTracker(rdb *redis.Client) *RedisTracker {
	return &RedisTracker{rdb: rdb, prefix: "qrmenu:views:", recent: 100, now: time.Now}
}

func (t *RedisTracker) key(restaurantID, kind string) string {
	return t.prefix + restaurantID + ":" + kind
}

func (t *RedisTracker) Track(ctx context.Context, v View) error {
	if v.At.IsZero() {
		v.At = t.now()
	}
	entry, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = t.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, t.key(v.RestaurantID, "total"))
		p.HIncrBy(ctx, t.key(v.RestaurantID, "daily"), v.At.UTC().Format(dayLayout), 1)
		p.LPush(ctx, t.key(v.RestaurantID, "recent"), entry)
		p.LTrim(ctx, t.key(v.RestaurantID, "recent"), 0, t.recent-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("track view: %w", err)
	}
	return nil
}

func (t *RedisTracker) Summary(ctx context.Context, restaurantID string, days int) (Summary, error) {
	days = clampDays(days)
	today := t.now().UTC()
	fields := make([]string, days)
	for i := 0; i < days; i++ {
		fields[i] = today.AddDate(0, 0, i-days+1).Format(dayLayout)
	}

	vals, err := t.rdb.HMGet(ctx, t.key(restaurantID, "daily"), fields...).Result()
	if err != nil {
		return Summary{}, fmt.Errorf("daily views: %w", err)
	}
	all, err := t.rdb.Get(ctx, t.key(restaurantID, "total")).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Summary{}, fmt.Errorf("total views: %w", err)
	}

	s := Summary{Days: days, AllTime: all, DailyViews: []DailyCount{}}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil || n == 0 {
			continue
		}
		s.DailyViews = append(s.DailyViews, DailyCount{Date: fields[i], Count: n})
		s.TotalViews += n
		if i == days-1 {
			s.ViewsToday = n
		}
	}
	return s, nil
}

// Recent returns up to n of the latest views, newest first.
func (t *RedisTracker) Recent(ctx context.Context, restaurantID string, n int64) ([]View, error) {
	raw, err := t.rdb.LRange(ctx, t.key(restaurantID, "recent"), 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(raw))
	for _, r := range raw {
		var v View
		if err := json.Unmarshal([]byte(r), &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}
