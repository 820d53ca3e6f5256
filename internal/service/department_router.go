package service

import (
	"sort"
	"time"

	"scms_backend/internal/model"
	"scms_backend/internal/util"
)

var categoryDepartments = map[model.ComplaintCategory]model.DepartmentKey{
	model.CategoryAcademics:      model.DepartmentAcademics,
	model.CategoryHostel:         model.DepartmentStudentAffairs,
	model.CategoryMess:           model.DepartmentFoodServices,
	model.CategoryFacilities:     model.DepartmentFacilities,
	model.CategoryAdministration: model.DepartmentAdministration,
}

// SuggestDepartment 未映射的分类（包括 Other）归到 general
func SuggestDepartment(category model.ComplaintCategory) model.DepartmentKey {
	if key, ok := categoryDepartments[category]; ok {
		return key
	}
	return model.DepartmentGeneral
}

// Directory 部门目录
type Directory struct {
	departments map[model.DepartmentKey]model.Department
}

func NewDirectory(departments []model.Department) *Directory {
	if len(departments) == 0 {
		departments = model.DefaultDepartments()
	}
	d := &Directory{departments: make(map[model.DepartmentKey]model.Department, len(departments))}
	for _, dep := range departments {
		d.departments[dep.Key] = dep
	}
	return d
}

func (d *Directory) Lookup(key model.DepartmentKey) (model.Department, bool) {
	dep, ok := d.departments[key]
	return dep, ok
}

func (d *Directory) Head(key model.DepartmentKey) (string, bool) {
	dep, ok := d.departments[key]
	if !ok {
		return "", false
	}
	return dep.Head, true
}

func (d *Directory) List() []model.Department {
	out := make([]model.Department, 0, len(d.departments))
	for _, dep := range d.departments {
		out = append(out, dep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// AssignmentNote 记录分配时值得注意的情况，不阻止分配
type AssignmentNote struct {
	PreviousStatus    model.ComplaintStatus
	ReopenedResolved  bool
	OverrodeEscalated bool
	Reassigned        bool
}

func (n AssignmentNote) Unusual() bool {
	return n.ReopenedResolved || n.OverrodeEscalated || n.Reassigned
}

// Assign 写入分配信息并强制状态为 In Progress
func Assign(c model.Complaint, key model.DepartmentKey, head, assignedBy string, now time.Time) (model.Complaint, AssignmentNote) {
	note := AssignmentNote{
		PreviousStatus:    c.Status,
		ReopenedResolved:  c.Status == model.StatusResolved,
		OverrodeEscalated: c.Status == model.StatusEscalated,
		Reassigned:        c.IsAssigned(),
	}

	at := now.UTC()
	c.AssignedDepartment = key
	c.AssignedDepartmentHead = head
	c.DepartmentAssignedBy = assignedBy
	c.DepartmentAssignedAt = &at
	c.Status = model.StatusInProgress
	c.LastUpdated = model.DateOnly(now)
	return c, note
}

// AssignInput 分配请求，Head 为空时从目录取部门负责人
type AssignInput struct {
	Department      model.DepartmentKey `json:"department" binding:"required"`
	Head            string              `json:"head"`
	AssignedBy      string              `json:"-"`
	ExpectedVersion int64               `json:"expectedVersion"`
}

func (in AssignInput) resolve(dir *Directory) (string, error) {
	head, ok := dir.Head(in.Department)
	if !ok {
		return "", util.ErrUnknownDepartment
	}
	if in.Head != "" {
		head = in.Head
	}
	if in.AssignedBy == "" {
		return "", util.NewValidationError("assignedBy", "is required")
	}
	return head, nil
}
