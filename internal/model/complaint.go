package model

import (
	"time"
)

type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusEscalated  ComplaintStatus = "Escalated"
)

// ComplaintStatuses 按业务流程顺序排列
var ComplaintStatuses = []ComplaintStatus{StatusPending, StatusInProgress, StatusResolved, StatusEscalated}

func (s ComplaintStatus) Valid() bool {
	for _, v := range ComplaintStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "Low"
	PriorityMedium ComplaintPriority = "Medium"
	PriorityHigh   ComplaintPriority = "High"
)

var ComplaintPriorities = []ComplaintPriority{PriorityHigh, PriorityMedium, PriorityLow}

func (p ComplaintPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ComplaintCategory 投诉分类，封闭枚举，运行时不可扩展
type ComplaintCategory string

const (
	CategoryAcademics      ComplaintCategory = "Academics"
	CategoryHostel         ComplaintCategory = "Hostel"
	CategoryMess           ComplaintCategory = "Mess"
	CategoryFacilities     ComplaintCategory = "Facilities"
	CategoryAdministration ComplaintCategory = "Administration"
	CategoryOther          ComplaintCategory = "Other"
)

var ComplaintCategories = []ComplaintCategory{
	CategoryAcademics,
	CategoryHostel,
	CategoryMess,
	CategoryFacilities,
	CategoryAdministration,
	CategoryOther,
}

func (c ComplaintCategory) Valid() bool {
	for _, v := range ComplaintCategories {
		if v == c {
			return true
		}
	}
	return false
}

// EscalationLevel 1 院系 2 系主任 3 院长
type EscalationLevel int

const (
	EscalationFaculty EscalationLevel = 1
	EscalationHOD     EscalationLevel = 2
	EscalationDean    EscalationLevel = 3

	MaxEscalationLevel = EscalationDean
)

func (l EscalationLevel) Label() string {
	switch l {
	case EscalationFaculty:
		return "Faculty Level"
	case EscalationHOD:
		return "HOD Level"
	case EscalationDean:
		return "Dean Level"
	default:
		return "Unknown Level"
	}
}

// swagger:model AttachmentFile
type AttachmentFile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name" binding:"required"`
	Type       string    `json:"type" binding:"required"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// swagger:model Comment
type Comment struct {
	ID          string           `json:"id"`
	Author      string           `json:"author"`
	Message     string           `json:"message"`
	Timestamp   time.Time        `json:"timestamp"`
	Role        UserRole         `json:"role,omitempty"`
	Attachments []AttachmentFile `json:"attachments,omitempty"`
}

// Complaint 学生投诉记录，永久保存，没有删除路径
// swagger:model Complaint
type Complaint struct {
	ID          string            `gorm:"primaryKey;size:64" json:"id"`
	StudentID   string            `gorm:"size:64;index;not null" json:"studentId"`
	StudentName string            `gorm:"size:100" json:"studentName"`
	University  string            `gorm:"size:255;index" json:"university"`
	Category    ComplaintCategory `gorm:"type:varchar(20);index" json:"category"`
	Description string            `gorm:"type:text" json:"description"`
	Priority    ComplaintPriority `gorm:"type:varchar(10)" json:"priority"`

	Status          ComplaintStatus `gorm:"type:varchar(20);index" json:"status"`
	EscalationLevel EscalationLevel `gorm:"default:1" json:"escalationLevel"`

	DateSubmitted time.Time `json:"dateSubmitted"`
	LastUpdated   time.Time `json:"lastUpdated"`
	DaysOpened    int       `gorm:"default:0" json:"daysOpened"`

	Attachments []AttachmentFile `gorm:"serializer:json;type:text" json:"attachments,omitempty"`

	AssignedDepartment     DepartmentKey `gorm:"size:50;index" json:"assignedDepartment,omitempty"`
	AssignedDepartmentHead string        `gorm:"size:100" json:"assignedDepartmentHead,omitempty"`
	DepartmentAssignedBy   string        `gorm:"size:100" json:"departmentAssignedBy,omitempty"`
	DepartmentAssignedAt   *time.Time    `json:"departmentAssignedAt,omitempty"`

	Comments []Comment `gorm:"serializer:json;type:text" json:"comments"`

	// 乐观锁版本号，每次变更 +1
	Version int64 `gorm:"default:0" json:"version"`
}

func (Complaint) TableName() string {
	return "complaints"
}

func (c Complaint) IsAssigned() bool {
	return c.AssignedDepartment != ""
}

func (c Complaint) IsOpen() bool {
	return c.Status != StatusResolved
}

// Clone 深拷贝，保证 store 外部拿到的副本不会与内部状态共享切片
func (c Complaint) Clone() Complaint {
	out := c
	if c.Attachments != nil {
		out.Attachments = make([]AttachmentFile, len(c.Attachments))
		copy(out.Attachments, c.Attachments)
	}
	if c.Comments != nil {
		out.Comments = make([]Comment, len(c.Comments))
		for i, cm := range c.Comments {
			out.Comments[i] = cm
			if cm.Attachments != nil {
				out.Comments[i].Attachments = make([]AttachmentFile, len(cm.Attachments))
				copy(out.Comments[i].Attachments, cm.Attachments)
			}
		}
	}
	if c.DepartmentAssignedAt != nil {
		at := *c.DepartmentAssignedAt
		out.DepartmentAssignedAt = &at
	}
	return out
}
