package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"scms_backend/internal/model"
	"scms_backend/internal/util"
	"scms_backend/pkg/logger"
	"scms_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type EventType string

const (
	EventCreated       EventType = "created"
	EventStatusChanged EventType = "status_changed"
	EventAssigned      EventType = "assigned"
	EventEscalated     EventType = "escalated"
	EventCommentAdded  EventType = "comment_added"
	EventAged          EventType = "aged"
	EventLoaded        EventType = "loaded"
)

// ComplaintEvent 存储变更通知，Complaint 为变更后的副本
type ComplaintEvent struct {
	Type           EventType             `json:"type"`
	Complaint      model.Complaint       `json:"complaint"`
	PreviousStatus model.ComplaintStatus `json:"previousStatus,omitempty"`
	Actor          string                `json:"actor,omitempty"`
	At             time.Time             `json:"at"`
}

// SnapshotStore 持久化全量投诉，由 repository 包实现
type SnapshotStore interface {
	Save(ctx context.Context, complaints []model.Complaint) error
	Load(ctx context.Context) ([]model.Complaint, error)
}

type ComplaintServiceOptions struct {
	Clock              Clock
	IDs                IDGenerator
	Policy             TransitionPolicy
	Directory          *Directory
	Attachments        *AttachmentPolicy
	Snapshots          SnapshotStore
	RejectReassignment bool
}

// ComplaintService 内存投诉存储，所有变更在写锁内完成，通知和持久化在锁外进行
type ComplaintService struct {
	mu    sync.RWMutex
	items map[string]*model.Complaint
	order []string
	rev   int64

	clock              Clock
	ids                IDGenerator
	policy             TransitionPolicy
	directory          *Directory
	attachments        AttachmentPolicy
	rejectReassignment bool

	subMu   sync.RWMutex
	subs    map[uint64]func(ComplaintEvent)
	nextSub uint64

	persist *snapshotWriter
}

func NewComplaintService(opts ComplaintServiceOptions) *ComplaintService {
	s := &ComplaintService{
		items:              make(map[string]*model.Complaint),
		clock:              opts.Clock,
		ids:                opts.IDs,
		policy:             opts.Policy,
		directory:          opts.Directory,
		rejectReassignment: opts.RejectReassignment,
		subs:               make(map[uint64]func(ComplaintEvent)),
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.ids == nil {
		s.ids = NewSequentialIDGenerator()
	}
	if s.policy == nil {
		s.policy = PermissivePolicy{}
	}
	if s.directory == nil {
		s.directory = NewDirectory(nil)
	}
	if opts.Attachments != nil {
		s.attachments = *opts.Attachments
	} else {
		s.attachments = DefaultAttachmentPolicy()
	}
	if opts.Snapshots != nil {
		s.persist = newSnapshotWriter(opts.Snapshots)
	}
	return s
}

func (s *ComplaintService) Directory() *Directory {
	return s.directory
}

func (s *ComplaintService) IDs() IDGenerator {
	return s.ids
}

func (s *ComplaintService) Now() time.Time {
	return s.clock.Now()
}

// Subscribe 注册变更回调，返回取消函数。回调在调用方 goroutine 中同步执行
func (s *ComplaintService) Subscribe(fn func(ComplaintEvent)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *ComplaintService) notify(events ...ComplaintEvent) {
	if len(events) == 0 {
		return
	}
	s.subMu.RLock()
	subs := make([]func(ComplaintEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, evt := range events {
		monitoring.ComplaintEvents.WithLabelValues(string(evt.Type)).Inc()
		for _, fn := range subs {
			safeDeliver(fn, evt)
		}
	}
}

func safeDeliver(fn func(ComplaintEvent), evt ComplaintEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("Complaint subscriber panicked",
				zap.String("event", string(evt.Type)),
				zap.String("complaintId", evt.Complaint.ID),
				zap.Any("panic", r))
		}
	}()
	fn(evt)
}

// Submit 生成编号并创建投诉
func (s *ComplaintService) Submit(sub Submission) (model.Complaint, error) {
	c, err := NewComplaint(sub, s.ids.NextID(), s.clock.Now(), s.attachments)
	if err != nil {
		return model.Complaint{}, err
	}
	c.Version = 1
	if err := s.Add(c); err != nil {
		return model.Complaint{}, err
	}
	return c, nil
}

// Add 插入调用方构造好的投诉，编号必须唯一
func (s *ComplaintService) Add(c model.Complaint) error {
	if strings.TrimSpace(c.ID) == "" {
		return util.NewValidationError("id", "is required")
	}
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Comments == nil {
		c.Comments = []model.Comment{}
	}

	s.mu.Lock()
	if _, exists := s.items[c.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", util.ErrDuplicateComplaint, c.ID)
	}
	stored := c.Clone()
	s.items[c.ID] = &stored
	s.order = append(s.order, c.ID)
	s.ids.Observe(c.ID)
	snap, rev := s.commitLocked()
	s.mu.Unlock()

	s.queueSave(rev, snap)
	s.notify(ComplaintEvent{Type: EventCreated, Complaint: c.Clone(), Actor: c.StudentName, At: s.clock.Now()})
	logger.Log.Info("Complaint created", zap.String("complaintId", c.ID), zap.String("category", string(c.Category)))
	return nil
}

func (s *ComplaintService) Get(id string) (model.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return model.Complaint{}, fmt.Errorf("%w: %s", util.ErrComplaintNotFound, id)
	}
	return c.Clone(), nil
}

// Snapshot 按插入顺序返回全部投诉的副本
func (s *ComplaintService) Snapshot() []model.Complaint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *ComplaintService) snapshotLocked() []model.Complaint {
	out := make([]model.Complaint, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

func (s *ComplaintService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// List 过滤并排序，sort 为空时保持插入顺序
func (s *ComplaintService) List(filter ComplaintFilter, opts SortOptions) []model.Complaint {
	all := s.Snapshot()
	out := all[:0]
	for _, c := range all {
		if filter.Match(c) {
			out = append(out, c)
		}
	}
	SortComplaints(out, opts)
	return out
}

// commitLocked 更新修订号与指标，返回需要持久化的快照
func (s *ComplaintService) commitLocked() ([]model.Complaint, int64) {
	s.rev++
	snap := s.snapshotLocked()
	updateGauges(snap)
	return snap, s.rev
}

func updateGauges(all []model.Complaint) {
	counts := make(map[model.ComplaintStatus]int, len(model.ComplaintStatuses))
	critical := 0
	for _, c := range all {
		counts[c.Status]++
		if IsCriticalComplaint(c) {
			critical++
		}
	}
	for _, st := range model.ComplaintStatuses {
		monitoring.ComplaintsByStatus.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
	monitoring.CriticalComplaints.Set(float64(critical))
}

type mutation func(c model.Complaint, now time.Time) (model.Complaint, error)

// mutate 在写锁内对单个投诉应用纯函数变更，校验版本号并递增
func (s *ComplaintService) mutate(id string, expectedVersion int64, fn mutation) (before, after model.Complaint, err error) {
	now := s.clock.Now()

	s.mu.Lock()
	cur, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return before, after, fmt.Errorf("%w: %s", util.ErrComplaintNotFound, id)
	}
	if expectedVersion > 0 && cur.Version != expectedVersion {
		s.mu.Unlock()
		return before, after, fmt.Errorf("%w: %s is at version %d, expected %d", util.ErrVersionConflict, id, cur.Version, expectedVersion)
	}
	before = cur.Clone()
	next, err := fn(cur.Clone(), now)
	if err != nil {
		s.mu.Unlock()
		return before, after, err
	}
	next.ID = before.ID
	next.Version = before.Version + 1
	*cur = next
	snap, rev := s.commitLocked()
	s.mu.Unlock()

	s.queueSave(rev, snap)
	return before, next.Clone(), nil
}

// UpdateStatus expectedVersion 为 0 时不做版本校验。
// 置为 Resolved 前先按当前时间老化，冻结的天数不会停留在上次巡检的值。
func (s *ComplaintService) UpdateStatus(id string, status model.ComplaintStatus, actor string, expectedVersion int64) (model.Complaint, error) {
	before, after, err := s.mutate(id, expectedVersion, func(c model.Complaint, now time.Time) (model.Complaint, error) {
		if status == model.StatusResolved {
			c, _ = AgeComplaint(c, now)
		}
		return UpdateStatus(c, status, s.policy, now)
	})
	if err != nil {
		return model.Complaint{}, err
	}

	s.notify(ComplaintEvent{Type: EventStatusChanged, Complaint: after, PreviousStatus: before.Status, Actor: actor, At: s.clock.Now()})
	logger.Log.Info("Complaint status updated",
		zap.String("complaintId", id),
		zap.String("from", string(before.Status)),
		zap.String("to", string(after.Status)),
		zap.String("actor", actor))
	return after, nil
}

func (s *ComplaintService) AssignDepartment(id string, in AssignInput) (model.Complaint, error) {
	head, err := in.resolve(s.directory)
	if err != nil {
		return model.Complaint{}, err
	}

	var note AssignmentNote
	before, after, err := s.mutate(id, in.ExpectedVersion, func(c model.Complaint, now time.Time) (model.Complaint, error) {
		if s.rejectReassignment && c.IsAssigned() {
			return c, fmt.Errorf("%w: %s -> %s", util.ErrAlreadyAssigned, id, c.AssignedDepartment)
		}
		var next model.Complaint
		next, note = Assign(c, in.Department, head, in.AssignedBy, now)
		return next, nil
	})
	if err != nil {
		return model.Complaint{}, err
	}

	if note.Unusual() {
		logger.Log.Warn("Unusual department assignment",
			zap.String("complaintId", id),
			zap.String("previousStatus", string(note.PreviousStatus)),
			zap.Bool("reopenedResolved", note.ReopenedResolved),
			zap.Bool("overrodeEscalated", note.OverrodeEscalated),
			zap.Bool("reassigned", note.Reassigned))
	}
	s.notify(ComplaintEvent{Type: EventAssigned, Complaint: after, PreviousStatus: before.Status, Actor: in.AssignedBy, At: s.clock.Now()})
	logger.Log.Info("Complaint assigned",
		zap.String("complaintId", id),
		zap.String("department", string(in.Department)),
		zap.String("assignedBy", in.AssignedBy))
	return after, nil
}

func (s *ComplaintService) Escalate(id, actor string, expectedVersion int64) (model.Complaint, error) {
	before, after, err := s.mutate(id, expectedVersion, func(c model.Complaint, now time.Time) (model.Complaint, error) {
		return Escalate(c, s.policy, now)
	})
	if err != nil {
		return model.Complaint{}, err
	}

	s.notify(ComplaintEvent{Type: EventEscalated, Complaint: after, PreviousStatus: before.Status, Actor: actor, At: s.clock.Now()})
	logger.Log.Info("Complaint escalated",
		zap.String("complaintId", id),
		zap.Int("level", int(after.EscalationLevel)),
		zap.String("actor", actor))
	return after, nil
}

func (s *ComplaintService) AddComment(id string, in CommentInput) (model.Complaint, error) {
	_, after, err := s.mutate(id, in.ExpectedVersion, func(c model.Complaint, now time.Time) (model.Complaint, error) {
		return AddComment(c, in, now, s.attachments)
	})
	if err != nil {
		return model.Complaint{}, err
	}

	s.notify(ComplaintEvent{Type: EventCommentAdded, Complaint: after, Actor: in.Author, At: s.clock.Now()})
	return after, nil
}

// SweepAging 对所有未解决投诉执行老化，返回天数发生变化的数量。
// 老化不算作用户修改，不递增版本号。
func (s *ComplaintService) SweepAging(now time.Time) int {
	s.mu.Lock()
	var events []ComplaintEvent
	for _, id := range s.order {
		cur := s.items[id]
		next, changed := AgeComplaint(*cur, now)
		if !changed {
			continue
		}
		cur.DaysOpened = next.DaysOpened
		events = append(events, ComplaintEvent{Type: EventAged, Complaint: cur.Clone(), At: now})
	}
	if len(events) == 0 {
		s.mu.Unlock()
		return 0
	}
	snap, rev := s.commitLocked()
	s.mu.Unlock()

	s.queueSave(rev, snap)
	s.notify(events...)
	return len(events)
}

// Load 用持久化快照替换内存数据，快照为空时保持空集合
func (s *ComplaintService) Load(ctx context.Context) (int, error) {
	if s.persist == nil {
		return 0, nil
	}
	loaded, err := s.persist.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load complaints: %w", err)
	}

	items := make(map[string]*model.Complaint, len(loaded))
	order := make([]string, 0, len(loaded))
	for _, c := range loaded {
		if c.ID == "" {
			continue
		}
		if _, dup := items[c.ID]; dup {
			logger.Log.Warn("Duplicate complaint id in snapshot", zap.String("complaintId", c.ID))
			continue
		}
		cp := c.Clone()
		if cp.Comments == nil {
			cp.Comments = []model.Comment{}
		}
		items[c.ID] = &cp
		order = append(order, c.ID)
		s.ids.Observe(c.ID)
	}

	s.mu.Lock()
	s.items = items
	s.order = order
	s.rev++
	rev := s.rev
	updateGauges(s.snapshotLocked())
	s.mu.Unlock()

	s.persist.markSaved(rev)
	s.notify(ComplaintEvent{Type: EventLoaded, At: s.clock.Now()})
	logger.Log.Info("Complaints loaded", zap.Int("count", len(order)))
	return len(order), nil
}

func (s *ComplaintService) queueSave(rev int64, snap []model.Complaint) {
	if s.persist == nil {
		return
	}
	s.persist.enqueue(rev, snap)
}

// Start 启动后台持久化协程
func (s *ComplaintService) Start(ctx context.Context) {
	if s.persist == nil {
		return
	}
	s.persist.start(ctx)
}

func (s *ComplaintService) Stop() {
	if s.persist == nil {
		return
	}
	s.persist.stop()
}

// Flush 同步保存当前全部数据
func (s *ComplaintService) Flush(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	s.mu.RLock()
	snap, rev := s.snapshotLocked(), s.rev
	s.mu.RUnlock()
	return s.persist.save(ctx, rev, snap, true)
}

// snapshotWriter 单协程写入，只保留最新一次快照
type snapshotWriter struct {
	store SnapshotStore

	mu      sync.Mutex
	latest  []model.Complaint
	latestR int64
	dirty   bool
	signal  chan struct{}

	saveMu   sync.Mutex
	savedRev int64

	cancel context.CancelFunc
	done   chan struct{}
}

func newSnapshotWriter(store SnapshotStore) *snapshotWriter {
	return &snapshotWriter{
		store:    store,
		signal:   make(chan struct{}, 1),
		savedRev: -1,
	}
}

func (w *snapshotWriter) enqueue(rev int64, snap []model.Complaint) {
	w.mu.Lock()
	if rev > w.latestR || !w.dirty {
		w.latest, w.latestR, w.dirty = snap, rev, true
	}
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *snapshotWriter) markSaved(rev int64) {
	w.mu.Lock()
	w.latest, w.dirty = nil, false
	w.mu.Unlock()

	w.saveMu.Lock()
	if rev > w.savedRev {
		w.savedRev = rev
	}
	w.saveMu.Unlock()
}

func (w *snapshotWriter) start(ctx context.Context) {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.signal:
				w.drain(ctx)
			}
		}
	}()
}

func (w *snapshotWriter) stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *snapshotWriter) drain(ctx context.Context) {
	w.mu.Lock()
	snap, rev, dirty := w.latest, w.latestR, w.dirty
	w.latest, w.dirty = nil, false
	w.mu.Unlock()
	if !dirty {
		return
	}
	// 失败只记录，内存中的数据不回滚
	_ = w.save(ctx, rev, snap, false)
}

func (w *snapshotWriter) save(ctx context.Context, rev int64, snap []model.Complaint, force bool) error {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	if rev < w.savedRev || (rev == w.savedRev && !force) {
		return nil
	}
	if err := w.store.Save(ctx, snap); err != nil {
		monitoring.PersistenceFailures.Inc()
		if !errors.Is(err, context.Canceled) {
			logger.Log.Error("Failed to persist complaints", zap.Int64("revision", rev), zap.Error(err))
		}
		return fmt.Errorf("persist complaints: %w", err)
	}
	w.savedRev = rev
	return nil
}
