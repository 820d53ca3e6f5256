package service

import (
	"context"
	"sync"
	"time"

	"scms_backend/internal/model"
	"scms_backend/pkg/logger"
	"scms_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const DefaultAgingInterval = 5 * time.Minute

// DaysBetween 按整天向下取整，from 晚于 to 时返回 0
func DaysBetween(from, to time.Time) int {
	d := to.UTC().Sub(from.UTC())
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// AgeComplaint 重新计算打开天数，已解决的投诉保持不变，天数只增不减。
// 不更新 LastUpdated。
func AgeComplaint(c model.Complaint, now time.Time) (model.Complaint, bool) {
	if c.Status == model.StatusResolved {
		return c, false
	}
	days := DaysBetween(c.DateSubmitted, now)
	if days <= c.DaysOpened {
		return c, false
	}
	c.DaysOpened = days
	return c, true
}

// AgingTarget 由投诉存储实现
type AgingTarget interface {
	SweepAging(now time.Time) int
}

type AgingService struct {
	target AgingTarget
	clock  Clock

	mu       sync.Mutex
	interval time.Duration
	reset    chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewAgingService(target AgingTarget, clock Clock, interval time.Duration) *AgingService {
	if interval <= 0 {
		interval = DefaultAgingInterval
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &AgingService{
		target:   target,
		clock:    clock,
		interval: interval,
		reset:    make(chan struct{}, 1),
	}
}

// Sweep 执行一次老化，panic 会被记录而不会向上传播
func (s *AgingService) Sweep() (changed int) {
	start := time.Now()
	defer func() {
		monitoring.AgingSweepDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			logger.Log.Error("Aging sweep panicked", zap.Any("panic", r))
			changed = 0
		}
	}()

	changed = s.target.SweepAging(s.clock.Now())
	if changed > 0 {
		monitoring.AgedComplaints.Add(float64(changed))
		logger.Log.Info("Aging sweep advanced complaints", zap.Int("changed", changed))
	}
	return changed
}

// Start 立即执行一次，然后按间隔执行，重复调用无效
func (s *AgingService) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.Sweep()

		ticker := time.NewTicker(s.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.reset:
				ticker.Reset(s.Interval())
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
	logger.Log.Info("Aging service started", zap.Duration("interval", s.Interval()))
}

func (s *AgingService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *AgingService) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval 配置热更新时调整周期
func (s *AgingService) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()

	select {
	case s.reset <- struct{}{}:
	default:
	}
}
