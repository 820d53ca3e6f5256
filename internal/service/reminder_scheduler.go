package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"scms_backend/internal/model"
	"scms_backend/pkg/logger"
	"scms_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// ReminderItem 一条逾期提醒
type ReminderItem struct {
	ComplaintID     string                  `json:"complaintId"`
	StudentName     string                  `json:"studentName"`
	University      string                  `json:"university"`
	Category        model.ComplaintCategory `json:"category"`
	Priority        model.ComplaintPriority `json:"priority"`
	Status          model.ComplaintStatus   `json:"status"`
	EscalationLevel model.EscalationLevel   `json:"escalationLevel"`
	DaysOpened      int                     `json:"daysOpened"`
	Urgency         Urgency                 `json:"urgency"`
	Department      model.DepartmentKey     `json:"department,omitempty"`
}

// ReminderSummary 逾期投诉按紧急程度分组
type ReminderSummary struct {
	Critical int            `json:"critical"`
	High     int            `json:"high"`
	Moderate int            `json:"moderate"`
	Items    []ReminderItem `json:"items"`
}

// CollectReminders 未解决且已打开至少一天的投诉，按紧急程度和天数倒序
func CollectReminders(complaints []model.Complaint) ReminderSummary {
	var sum ReminderSummary
	for _, c := range complaints {
		if c.Status == model.StatusResolved || c.DaysOpened <= 0 {
			continue
		}
		u := ClassifyUrgency(c.DaysOpened, c.Status)
		switch {
		case u.Tier.IsCritical():
			sum.Critical++
		case u.Tier == UrgencyHigh:
			sum.High++
		case u.Tier == UrgencyModerate:
			sum.Moderate++
		}
		sum.Items = append(sum.Items, ReminderItem{
			ComplaintID:     c.ID,
			StudentName:     c.StudentName,
			University:      c.University,
			Category:        c.Category,
			Priority:        c.Priority,
			Status:          c.Status,
			EscalationLevel: c.EscalationLevel,
			DaysOpened:      c.DaysOpened,
			Urgency:         u,
			Department:      c.AssignedDepartment,
		})
	}
	sort.SliceStable(sum.Items, func(i, j int) bool {
		a, b := sum.Items[i], sum.Items[j]
		if a.Urgency.Rank != b.Urgency.Rank {
			return a.Urgency.Rank > b.Urgency.Rank
		}
		return a.DaysOpened > b.DaysOpened
	})
	return sum
}

func criticalItems(items []ReminderItem) []ReminderItem {
	var out []ReminderItem
	for _, it := range items {
		if it.Urgency.Tier.IsCritical() {
			out = append(out, it)
		}
	}
	return out
}

// ReminderAlert 一次提醒推送
type ReminderAlert struct {
	Sequence      int64          `json:"sequence"`
	CriticalCount int            `json:"criticalCount"`
	Interval      time.Duration  `json:"interval"`
	Items         []ReminderItem `json:"items"`
	At            time.Time      `json:"at"`
}

type Alerter interface {
	Alert(ctx context.Context, alert ReminderAlert) error
}

type AlerterFunc func(ctx context.Context, alert ReminderAlert) error

func (f AlerterFunc) Alert(ctx context.Context, alert ReminderAlert) error {
	return f(ctx, alert)
}

// MultiAlerter 依次推送，单个失败不影响其它
type MultiAlerter []Alerter

func (m MultiAlerter) Alert(ctx context.Context, alert ReminderAlert) error {
	var firstErr error
	for _, a := range m {
		if err := a.Alert(ctx, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type LogAlerter struct{}

func (LogAlerter) Alert(_ context.Context, alert ReminderAlert) error {
	ids := make([]string, 0, len(alert.Items))
	for _, it := range alert.Items {
		ids = append(ids, it.ComplaintID)
	}
	logger.Log.Warn("Critical complaints need attention",
		zap.Int64("sequence", alert.Sequence),
		zap.Int("criticalCount", alert.CriticalCount),
		zap.Strings("complaintIds", ids))
	return nil
}

// ReminderPolicy 提醒频率策略
type ReminderPolicy struct {
	FrequentInterval     time.Duration
	NormalInterval       time.Duration
	FrequentThreshold    int
	AlwaysAlertThreshold int
}

func DefaultReminderPolicy() ReminderPolicy {
	return ReminderPolicy{
		FrequentInterval:     30 * time.Second,
		NormalInterval:       60 * time.Second,
		FrequentThreshold:    5,
		AlwaysAlertThreshold: 3,
	}
}

// Interval 没有严重投诉时返回 0，表示空闲
func (p ReminderPolicy) Interval(criticalCount int) time.Duration {
	switch {
	case criticalCount <= 0:
		return 0
	case criticalCount >= p.FrequentThreshold:
		return p.FrequentInterval
	default:
		return p.NormalInterval
	}
}

// ShouldAlert seq 为本次计数器自增前的值，严重投诉越多提醒越频繁
func (p ReminderPolicy) ShouldAlert(criticalCount int, seq int64) bool {
	if criticalCount <= 0 {
		return false
	}
	if criticalCount >= p.AlwaysAlertThreshold {
		return true
	}
	n := criticalCount
	if n > 4 {
		n = 4
	}
	return seq%int64(5-n) == 0
}

// ReminderSource 由投诉存储实现
type ReminderSource interface {
	Snapshot() []model.Complaint
	Subscribe(fn func(ComplaintEvent)) func()
}

type ReminderStatus struct {
	Running       bool          `json:"running"`
	Idle          bool          `json:"idle"`
	CriticalCount int           `json:"criticalCount"`
	Interval      time.Duration `json:"interval"`
	Ticks         int64         `json:"ticks"`
	Alerts        int64         `json:"alerts"`
	LastAlertAt   *time.Time    `json:"lastAlertAt,omitempty"`
}

// ReminderScheduler 根据严重投诉数量调整节奏的提醒任务，不修改投诉数据
type ReminderScheduler struct {
	source  ReminderSource
	alerter Alerter
	clock   Clock

	mu        sync.Mutex
	policy    ReminderPolicy
	seq       int64
	alerts    int64
	critical  int
	interval  time.Duration
	lastAlert time.Time

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewReminderScheduler(source ReminderSource, alerter Alerter, clock Clock, policy ReminderPolicy) *ReminderScheduler {
	if alerter == nil {
		alerter = LogAlerter{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReminderScheduler{
		source:  source,
		alerter: alerter,
		clock:   clock,
		policy:  policy,
		wake:    make(chan struct{}, 1),
	}
}

func (s *ReminderScheduler) SetPolicy(p ReminderPolicy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
	s.poke()
}

func (s *ReminderScheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// refresh 重新统计严重投诉数量并返回应采用的间隔
func (s *ReminderScheduler) refresh() ([]ReminderItem, time.Duration) {
	items := criticalItems(CollectReminders(s.source.Snapshot()).Items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.critical = len(items)
	s.interval = s.policy.Interval(s.critical)
	return items, s.interval
}

// Tick 执行一次提醒判断，返回是否发出了提醒。推送失败和 panic 只记录日志
func (s *ReminderScheduler) Tick(ctx context.Context) (alerted bool) {
	items, interval := s.refresh()
	if len(items) == 0 {
		monitoring.ReminderAlerts.WithLabelValues("idle").Inc()
		return false
	}

	s.mu.Lock()
	seq := s.seq
	s.seq++
	should := s.policy.ShouldAlert(len(items), seq)
	s.mu.Unlock()

	if !should {
		monitoring.ReminderAlerts.WithLabelValues("throttled").Inc()
		return false
	}

	alert := ReminderAlert{
		Sequence:      seq,
		CriticalCount: len(items),
		Interval:      interval,
		Items:         items,
		At:            s.clock.Now(),
	}
	if err := s.deliver(ctx, alert); err != nil {
		monitoring.ReminderAlerts.WithLabelValues("failed").Inc()
		logger.Log.Error("Reminder alert failed", zap.Int64("sequence", seq), zap.Error(err))
		return false
	}

	s.mu.Lock()
	s.alerts++
	s.lastAlert = alert.At
	s.mu.Unlock()
	monitoring.ReminderAlerts.WithLabelValues("alerted").Inc()
	return true
}

func (s *ReminderScheduler) deliver(ctx context.Context, alert ReminderAlert) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("alerter panicked: %v", r)
		}
	}()
	return s.alerter.Alert(ctx, alert)
}

// Start 订阅存储变更并启动调度协程，没有严重投诉时不设置定时器
func (s *ReminderScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	unsubscribe := s.source.Subscribe(func(ComplaintEvent) { s.poke() })

	go func() {
		defer close(done)
		defer unsubscribe()
		s.loop(ctx)
	}()
	logger.Log.Info("Reminder scheduler started")
}

func (s *ReminderScheduler) loop(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		current time.Duration
	)
	arm := func(d time.Duration) {
		if timer != nil {
			timer.Stop()
		}
		current = d
		if d <= 0 {
			timer, timerC = nil, nil
			return
		}
		timer = time.NewTimer(d)
		timerC = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	_, d := s.refresh()
	arm(d)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			// 间隔不变时保留当前定时器，避免频繁变更把提醒一直推后
			if _, d := s.refresh(); d != current {
				if current == 0 || d == 0 {
					logger.Log.Info("Reminder cadence changed", zap.Duration("interval", d))
				}
				arm(d)
			}
		case <-timerC:
			s.safeTick(ctx)
			_, d := s.refresh()
			arm(d)
		}
	}
}

func (s *ReminderScheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("Reminder tick panicked", zap.Any("panic", r))
		}
	}()
	s.Tick(ctx)
}

func (s *ReminderScheduler) Stop() {
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

func (s *ReminderScheduler) Status() ReminderStatus {
	s.refresh()
	s.mu.Lock()
	defer s.mu.Unlock()
	st := ReminderStatus{
		Running:       s.cancel != nil,
		Idle:          s.critical == 0,
		CriticalCount: s.critical,
		Interval:      s.interval,
		Ticks:         s.seq,
		Alerts:        s.alerts,
	}
	if !s.lastAlert.IsZero() {
		at := s.lastAlert
		st.LastAlertAt = &at
	}
	return st
}
