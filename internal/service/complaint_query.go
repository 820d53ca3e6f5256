package service

import (
	"sort"
	"strings"
	"time"

	"scms_backend/internal/model"
)

// ComplaintFilter 空字段表示不过滤
type ComplaintFilter struct {
	Status             model.ComplaintStatus   `form:"status"`
	Category           model.ComplaintCategory `form:"category"`
	Priority           model.ComplaintPriority `form:"priority"`
	University         string                  `form:"university"`
	StudentID          string                  `form:"studentId"`
	AssignedDepartment model.DepartmentKey     `form:"department"`
	EscalationLevel    model.EscalationLevel   `form:"escalationLevel"`
	SubmittedFrom      *time.Time              `form:"from" time_format:"2006-01-02"`
	SubmittedTo        *time.Time              `form:"to" time_format:"2006-01-02"`
	Search             string                  `form:"search"`
	CriticalOnly       bool                    `form:"critical"`
}

func (f ComplaintFilter) Match(c model.Complaint) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.Priority != "" && c.Priority != f.Priority {
		return false
	}
	if f.University != "" && c.University != f.University {
		return false
	}
	if f.StudentID != "" && c.StudentID != f.StudentID {
		return false
	}
	if f.AssignedDepartment != "" && c.AssignedDepartment != f.AssignedDepartment {
		return false
	}
	if f.EscalationLevel != 0 && c.EscalationLevel != f.EscalationLevel {
		return false
	}
	if f.SubmittedFrom != nil && c.DateSubmitted.Before(model.DateOnly(*f.SubmittedFrom)) {
		return false
	}
	if f.SubmittedTo != nil && c.DateSubmitted.After(model.DateOnly(*f.SubmittedTo)) {
		return false
	}
	if f.CriticalOnly && !IsCriticalComplaint(c) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		fields := []string{c.ID, c.StudentName, c.Description, string(c.Category), c.University}
		found := false
		for _, v := range fields {
			if strings.Contains(strings.ToLower(v), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type SortField string

const (
	SortByDate     SortField = "date"
	SortByUrgency  SortField = "urgency"
	SortByStatus   SortField = "status"
	SortByPriority SortField = "priority"
	SortByUpdated  SortField = "updated"
)

type SortOptions struct {
	Field SortField `form:"sort"`
	Desc  bool      `form:"desc"`
}

var statusOrder = map[model.ComplaintStatus]int{
	model.StatusEscalated:  4,
	model.StatusPending:    3,
	model.StatusInProgress: 2,
	model.StatusResolved:   1,
}

var priorityOrder = map[model.ComplaintPriority]int{
	model.PriorityHigh:   3,
	model.PriorityMedium: 2,
	model.PriorityLow:    1,
}

// SortComplaints 稳定排序，Field 为空时不改变顺序
func SortComplaints(list []model.Complaint, opts SortOptions) {
	var less func(a, b model.Complaint) bool
	switch opts.Field {
	case SortByDate:
		less = func(a, b model.Complaint) bool { return a.DateSubmitted.Before(b.DateSubmitted) }
	case SortByUpdated:
		less = func(a, b model.Complaint) bool { return a.LastUpdated.Before(b.LastUpdated) }
	case SortByUrgency:
		less = func(a, b model.Complaint) bool { return a.DaysOpened < b.DaysOpened }
	case SortByStatus:
		less = func(a, b model.Complaint) bool { return statusOrder[a.Status] < statusOrder[b.Status] }
	case SortByPriority:
		less = func(a, b model.Complaint) bool { return priorityOrder[a.Priority] < priorityOrder[b.Priority] }
	default:
		return
	}

	sort.SliceStable(list, func(i, j int) bool {
		// 按紧急程度排序时已解决的投诉始终排在最后
		if opts.Field == SortByUrgency {
			ri, rj := list[i].Status == model.StatusResolved, list[j].Status == model.StatusResolved
			if ri != rj {
				return rj
			}
		}
		if opts.Desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}
