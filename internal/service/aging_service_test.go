package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"scms_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(from, from))
	assert.Equal(t, 0, DaysBetween(from, from.Add(23*time.Hour)))
	assert.Equal(t, 1, DaysBetween(from, from.Add(24*time.Hour)))
	assert.Equal(t, 7, DaysBetween(from, time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysBetween(from, from.AddDate(0, 0, -3)), "future submission dates never go negative")

	// 不同时区按 UTC 计算
	ist := time.FixedZone("IST", 5*3600+1800)
	assert.Equal(t, 2, DaysBetween(from, time.Date(2024, 1, 3, 5, 30, 0, 0, ist)))
}

func TestAgeComplaint(t *testing.T) {
	submitted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := submitted.AddDate(0, 0, 10)

	t.Run("advances open complaints", func(t *testing.T) {
		c := model.Complaint{Status: model.StatusPending, DateSubmitted: submitted, LastUpdated: submitted, DaysOpened: 2}
		aged, changed := AgeComplaint(c, now)
		assert.True(t, changed)
		assert.Equal(t, 10, aged.DaysOpened)
		assert.Equal(t, submitted, aged.LastUpdated)
	})

	t.Run("resolved complaints are frozen", func(t *testing.T) {
		c := model.Complaint{Status: model.StatusResolved, DateSubmitted: submitted, DaysOpened: 4}
		aged, changed := AgeComplaint(c, now)
		assert.False(t, changed)
		assert.Equal(t, 4, aged.DaysOpened)
	})

	t.Run("never decreases", func(t *testing.T) {
		c := model.Complaint{Status: model.StatusEscalated, DateSubmitted: submitted, DaysOpened: 15}
		aged, changed := AgeComplaint(c, now)
		assert.False(t, changed)
		assert.Equal(t, 15, aged.DaysOpened)
	})
}

type countingTarget struct {
	calls   int32
	changed int
}

func (t *countingTarget) SweepAging(time.Time) int {
	atomic.AddInt32(&t.calls, 1)
	return t.changed
}

type panickingTarget struct{}

func (panickingTarget) SweepAging(time.Time) int {
	panic("boom")
}

func TestAgingServiceSweep(t *testing.T) {
	target := &countingTarget{changed: 3}
	svc := NewAgingService(target, fixedClock{t: time.Now()}, time.Hour)

	assert.Equal(t, 3, svc.Sweep())
	assert.Equal(t, int32(1), atomic.LoadInt32(&target.calls))
}

func TestAgingServiceSweepRecoversFromPanic(t *testing.T) {
	svc := NewAgingService(panickingTarget{}, nil, time.Hour)

	assert.NotPanics(t, func() {
		assert.Equal(t, 0, svc.Sweep())
	})
}

func TestAgingServiceStartStop(t *testing.T) {
	target := &countingTarget{}
	svc := NewAgingService(target, nil, 10*time.Millisecond)

	svc.Start(context.Background())
	svc.Start(context.Background())

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&target.calls) >= 3
	}, time.Second, 5*time.Millisecond)

	svc.Stop()
	calls := atomic.LoadInt32(&target.calls)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, atomic.LoadInt32(&target.calls))

	svc.Stop()
}

func TestAgingServiceSetInterval(t *testing.T) {
	svc := NewAgingService(&countingTarget{}, nil, 0)
	assert.Equal(t, DefaultAgingInterval, svc.Interval())

	svc.SetInterval(time.Minute)
	assert.Equal(t, time.Minute, svc.Interval())

	svc.SetInterval(-time.Second)
	assert.Equal(t, time.Minute, svc.Interval())
}
