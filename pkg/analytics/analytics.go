// Package analytics records storefront page views and reports counts per restaurant.
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// View is one storefront render.
type View struct {
	RestaurantID string    `json:"restaurantId"`
	Path         string    `json:"path"`
	UserAgent    string    `json:"userAgent,omitempty"`
	Referer      string    `json:"referer,omitempty"`
	At           time.Time `json:"at"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Summary covers the last Days days ending today (UTC).
type Summary struct {
	Days       int          `json:"days"`
	TotalViews int64        `json:"totalViews"`
	ViewsToday int64        `json:"viewsToday"`
	AllTime    int64        `json:"allTime"`
	DailyViews []DailyCount `json:"dailyViews"`
}

const (
	DefaultDays = 30
	MaxDays     = 365
	// RecentShown is how many of the latest views the owner endpoint returns.
	RecentShown = 10
)

// Tracker stores page views.
type Tracker interface {
	Track(ctx context.Context, v View) error
	Summary(ctx context.Context, restaurantID string, days int) (Summary, error)
}

// RecentLister is implemented by trackers that keep the latest individual views.
type RecentLister interface {
	Recent(ctx context.Context, restaurantID string, n int64) ([]View, error)
}

// Noop drops views. Used when no counter store is configured.
type Noop struct{}

func (Noop) Track(context.Context, View) error { return nil }

func (Noop) Recent(context.Context, string, int64) ([]View, error) { return []View{}, nil }

func (Noop) Summary(_ context.Context, _ string, days int) (Summary, error) {
	return Summary{Days: clampDays(days), DailyViews: []DailyCount{}}, nil
}

func clampDays(days int) int {
	switch {
	case days <= 0:
		return DefaultDays
	case days > MaxDays:
		return MaxDays
	}
	return days
}

// Queue hands views to a Tracker on a background goroutine so storefront responses never wait on
// the counter store. Views are dropped when the buffer is full.
type Queue struct {
	tracker Tracker
	log     *zap.SugaredLogger
	ch      chan View
	done    chan struct{}
}

func NewQueue(t Tracker, size int, log *zap.SugaredLogger) *Queue {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if size <= 0 {
		size = 256
	}
	return &Queue{tracker: t, log: log, ch: make(chan View, size), done: make(chan struct{})}
}

// Enqueue reports whether v was accepted.
func (q *Queue) Enqueue(v View) bool {
	select {
	case q.ch <- v:
		return true
	default:
		q.log.Warnw("page view dropped", "restaurant", v.RestaurantID)
		return false
	}
}

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (q *Queue) Run(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case v := <-q.ch:
			q.track(v)
		case <-ctx.Done():
			for {
				select {
				case v := <-q.ch:
					q.track(v)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has returned.
func (q *Queue) Done() <-chan struct{} { return q.done }

func (q *Queue) track(v View) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.tracker.Track(ctx, v); err != nil {
		q.log.Errorw("track page view", "restaurant", v.RestaurantID, "err", err)
	}
}
