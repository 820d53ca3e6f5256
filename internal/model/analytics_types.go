package model

// StatusBreakdown 按状态统计
type StatusBreakdown struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Escalated  int `json:"escalated"`
}

// PriorityBreakdown 按优先级统计
type PriorityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ComplaintStatistics 投诉总体统计
type ComplaintStatistics struct {
	Total             int                       `json:"total"`
	ByStatus          StatusBreakdown           `json:"byStatus"`
	ByPriority        PriorityBreakdown         `json:"byPriority"`
	ByCategory        map[ComplaintCategory]int `json:"byCategory"`
	ResolutionRate    int                       `json:"resolutionRate"`    // 百分比，四舍五入
	AvgResolutionTime int                       `json:"avgResolutionTime"` // 天
	Overdue           int                       `json:"overdue"`           // 未解决且超过 7 天
	Critical          int                       `json:"critical"`          // 未解决且 >= 14 天
}

// AdminStats 管理员首页统计卡片
type AdminStats struct {
	TotalComplaints      int         `json:"totalComplaints"`
	PendingComplaints    int         `json:"pendingComplaints"`
	InProgressComplaints int         `json:"inProgressComplaints"`
	ResolvedComplaints   int         `json:"resolvedComplaints"`
	EscalatedComplaints  int         `json:"escalatedComplaints"`
	OverdueComplaints    int         `json:"overdueComplaints"`
	CriticalOverdue      int         `json:"criticalOverdue"`
	HighUrgencyOverdue   int         `json:"highUrgencyOverdue"`
	ModerateOverdue      int         `json:"moderateOverdue"`
	ResolutionRate       int         `json:"resolutionRate"`
	AvgResolutionTime    int         `json:"avgResolutionTime"`
	RecentComplaints     []Complaint `json:"recentComplaints"`
}

// GroupPerformance 分类/高校维度的处理情况
type GroupPerformance struct {
	Name              string `json:"name"`
	FullName          string `json:"fullName,omitempty"`
	Total             int    `json:"total"`
	Resolved          int    `json:"resolved"`
	Pending           int    `json:"pending"` // Pending + In Progress
	Escalated         int    `json:"escalated"`
	ResolutionRate    int    `json:"resolutionRate"`
	AvgResolutionTime int    `json:"avgResolutionTime"`
	CriticalCount     int    `json:"criticalCount,omitempty"`
}

// TrendPoint 月度趋势
type TrendPoint struct {
	Month             string `json:"month"`
	MonthKey          string `json:"monthKey"`
	Submitted         int    `json:"submitted"`
	Resolved          int    `json:"resolved"`
	Pending           int    `json:"pending"`
	Escalated         int    `json:"escalated"`
	ResolutionRate    int    `json:"resolutionRate"`
	AvgResolutionTime int    `json:"avgResolutionTime"`
}

// PriorityAnalysis 优先级分析
type PriorityAnalysis struct {
	Priority          ComplaintPriority `json:"priority"`
	Total             int               `json:"total"`
	Resolved          int               `json:"resolved"`
	Overdue           int               `json:"overdue"`
	ResolutionRate    int               `json:"resolutionRate"`
	AvgResolutionTime int               `json:"avgResolutionTime"`
}

// Efficiency 处理效率
type Efficiency struct {
	OnTime         int `json:"onTime"`  // 7 天内解决
	Delayed        int `json:"delayed"` // 超过 7 天才解决
	EscalationRate int `json:"escalationRate"`
}

// ReportMetrics 报表页综合指标
type ReportMetrics struct {
	ComplaintStatistics
	AvgResponseTime   float64                     `json:"avgResponseTime"`
	UniversityMetrics map[string]GroupPerformance `json:"universityMetrics"`
	PerformanceTrends []TrendPoint                `json:"performanceTrends"`
	Efficiency        Efficiency                  `json:"efficiency"`
}

// EscalationSummary 升级看板，按级别分组
type EscalationSummary struct {
	Total   int                     `json:"total"`
	Urgent  int                     `json:"urgent"` // 未解决且超过 7 天，不限状态
	ByLevel map[EscalationLevel]int `json:"byLevel"`
	Items   []Complaint             `json:"items"` // 级别降序，其次打开天数降序
}
