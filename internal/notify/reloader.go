package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Reloader fires reload URLs once daily so downstream systems refresh
// cached state. The job may run far more often than daily, so triggers
// only fire inside a fixed local-time window (by default the first ten
// minutes past hour 4).
type Reloader struct {
	urls      []string
	hour      int
	maxMinute int
	client    *http.Client
	logger    *slog.Logger
	now       func() time.Time
}

func NewReloader(urls []string, hour, maxMinute int, logger *slog.Logger) *Reloader {
	return &Reloader{
		urls:      urls,
		hour:      hour,
		maxMinute: maxMinute,
		client:    &http.Client{Timeout: requestTimeout},
		logger:    logger.With("component", "reloader"),
		now:       time.Now,
	}
}

func (r *Reloader) inWindow(t time.Time) bool {
	return t.Hour() == r.hour && t.Minute() < r.maxMinute
}

// Trigger fires every configured URL independently and concurrently.
// Failures are logged per URL and never propagate; the return value is
// the number of requests attempted (zero outside the window).
func (r *Reloader) Trigger(ctx context.Context) int {
	if len(r.urls) == 0 || !r.inWindow(r.now()) {
		return 0
	}

	var wg sync.WaitGroup
	for _, url := range r.urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				r.logger.Warn("create reload request failed", "url", url, "error", err)
				return
			}
			resp, err := r.client.Do(req)
			if err != nil {
				r.logger.Warn("reload trigger failed", "url", url, "error", err)
				return
			}
			resp.Body.Close()
			r.logger.Info("reload triggered", "url", url, "status", resp.StatusCode)
		}(url)
	}
	wg.Wait()
	return len(r.urls)
}
