package cart

import (
	"context"
	"time"
)

// Sweeper purges expired guest carts on a fixed schedule, independent of
// request traffic.
type Sweeper struct {
	service  *Service
	interval time.Duration
	loggerf  func(format string, args ...interface{})
}

func NewSweeper(service *Service, interval time.Duration, loggerf func(string, ...interface{})) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Sweeper{service: service, interval: interval, loggerf: loggerf}
}

// Run blocks until ctx is done, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	purged, err := s.service.PurgeExpiredGuestCarts(ctx)
	if err != nil {
		s.loggerf("level=error msg=guest cart sweep failed err=%v", err)
		return
	}
	s.loggerf("level=info msg=guest cart sweep completed purged=%d", purged)
}
