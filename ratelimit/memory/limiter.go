package memorylimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit configures a named bucket: at most Limit events per Window.
type Limit struct {
	Limit  int
	Window time.Duration
}

// Limiter is an in-process per-key token-bucket limiter. Unknown buckets use
// the "default" limit when present, otherwise they are unlimited.
type Limiter struct {
	limits map[string]Limit

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func New(limits map[string]Limit) *Limiter {
	return &Limiter{limits: limits, buckets: make(map[string]*rate.Limiter)}
}

// AllowNamed reports whether one event is allowed for key under bucket.
func (l *Limiter) AllowNamed(bucket, key string) (bool, error) {
	lim, ok := l.limits[bucket]
	if !ok {
		lim, ok = l.limits["default"]
		if !ok {
			return true, nil
		}
	}
	if lim.Limit <= 0 || lim.Window <= 0 {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Crude bound on memory under key churn.
	if len(l.buckets) > 100_000 {
		l.buckets = make(map[string]*rate.Limiter)
	}
	rl, ok := l.buckets[key]
	if !ok {
		every := rate.Every(lim.Window / time.Duration(lim.Limit))
		rl = rate.NewLimiter(every, lim.Limit)
		l.buckets[key] = rl
	}
	return rl.Allow(), nil
}
