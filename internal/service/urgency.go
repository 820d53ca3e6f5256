package service

import (
	"scms_backend/internal/model"
)

type UrgencyTier string

const (
	UrgencyNone     UrgencyTier = "none"
	UrgencyNormal   UrgencyTier = "normal"
	UrgencyModerate UrgencyTier = "moderate"
	UrgencyHigh     UrgencyTier = "high"
	UrgencyCritical UrgencyTier = "critical"
	UrgencyExtreme  UrgencyTier = "extreme"
)

// 天数阈值
const (
	ModerateAfterDays = 3
	HighAfterDays     = 7
	CriticalAfterDays = 14
	ExtremeAfterDays  = 30
)

type urgencyRule struct {
	minDays int
	tier    UrgencyTier
	label   string
	rank    int
	offset  int
}

// 从高到低匹配，取第一个命中
var urgencyRules = []urgencyRule{
	{minDays: ExtremeAfterDays, tier: UrgencyExtreme, label: "CRITICAL", rank: 5, offset: 60},
	{minDays: CriticalAfterDays, tier: UrgencyCritical, label: "URGENT", rank: 4, offset: 30},
	{minDays: HighAfterDays, tier: UrgencyHigh, label: "OVERDUE", rank: 3, offset: 15},
	{minDays: ModerateAfterDays, tier: UrgencyModerate, label: "ATTENTION", rank: 2, offset: 5},
	{minDays: 0, tier: UrgencyNormal, label: "", rank: 1, offset: 0},
}

// Urgency 派生的紧急程度，只用于展示和提醒节流
type Urgency struct {
	Tier          UrgencyTier `json:"tier"`
	Label         string      `json:"label,omitempty"`
	Rank          int         `json:"rank"`
	ReminderCount int         `json:"reminderCount"`
}

func (t UrgencyTier) IsCritical() bool {
	return t == UrgencyCritical || t == UrgencyExtreme
}

// ClassifyUrgency 根据打开天数和状态计算紧急程度，纯函数
func ClassifyUrgency(daysOpened int, status model.ComplaintStatus) Urgency {
	if status == model.StatusResolved {
		return Urgency{Tier: UrgencyNone}
	}
	if daysOpened < 0 {
		daysOpened = 0
	}

	for _, r := range urgencyRules {
		if daysOpened >= r.minDays {
			return Urgency{
				Tier:          r.tier,
				Label:         r.label,
				Rank:          r.rank,
				ReminderCount: daysOpened + r.offset,
			}
		}
	}
	return Urgency{Tier: UrgencyNormal, Rank: 1, ReminderCount: daysOpened}
}

func IsCriticalComplaint(c model.Complaint) bool {
	return ClassifyUrgency(c.DaysOpened, c.Status).Tier.IsCritical()
}

// ComplaintView 读接口返回的投诉，附带派生字段
type ComplaintView struct {
	model.Complaint
	Urgency             Urgency             `json:"urgency"`
	SuggestedDepartment model.DepartmentKey `json:"suggestedDepartment"`
	EscalationLabel     string              `json:"escalationLabel"`
}

func NewComplaintView(c model.Complaint) ComplaintView {
	return ComplaintView{
		Complaint:           c,
		Urgency:             ClassifyUrgency(c.DaysOpened, c.Status),
		SuggestedDepartment: SuggestDepartment(c.Category),
		EscalationLabel:     c.EscalationLevel.Label(),
	}
}
