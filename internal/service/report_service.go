package service

import (
	"math"
	"sort"
	"time"

	"scms_backend/internal/model"
)

const (
	OverdueAfterDays        = 7
	RecentComplaintsLimit   = 5
	UniversityNameMaxLength = 30
	DefaultTrendMonths      = 12
	MetricsTrendMonths      = 6
)

// ComplaintSource 报表数据来源
type ComplaintSource interface {
	Snapshot() []model.Complaint
}

type ReportService struct {
	Source ComplaintSource
	Clock  Clock
}

func NewReportService(source ComplaintSource, clock Clock) *ReportService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReportService{Source: source, Clock: clock}
}

func (s *ReportService) Statistics() model.ComplaintStatistics {
	return ComputeStatistics(s.Source.Snapshot())
}

func (s *ReportService) AdminStats() model.AdminStats {
	return ComputeAdminStats(s.Source.Snapshot())
}

func (s *ReportService) Categories() []model.GroupPerformance {
	return CategoryPerformance(s.Source.Snapshot())
}

func (s *ReportService) Trends(months int) []model.TrendPoint {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	return MonthlyTrends(s.Source.Snapshot(), s.Clock.Now(), months)
}

func (s *ReportService) Universities() []model.GroupPerformance {
	return UniversityComparison(s.Source.Snapshot())
}

func (s *ReportService) Priorities() []model.PriorityAnalysis {
	return PriorityAnalysis(s.Source.Snapshot())
}

func (s *ReportService) Metrics() model.ReportMetrics {
	return ComputeMetrics(s.Source.Snapshot(), s.Clock.Now())
}

func (s *ReportService) Escalations() model.EscalationSummary {
	return EscalationOverview(s.Source.Snapshot())
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

func avgResolutionDays(list []model.Complaint) int {
	sum, n := 0, 0
	for _, c := range list {
		if c.Status == model.StatusResolved {
			sum += c.DaysOpened
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

func ComputeStatistics(list []model.Complaint) model.ComplaintStatistics {
	st := model.ComplaintStatistics{
		Total:      len(list),
		ByCategory: make(map[model.ComplaintCategory]int),
	}
	for _, c := range list {
		switch c.Status {
		case model.StatusPending:
			st.ByStatus.Pending++
		case model.StatusInProgress:
			st.ByStatus.InProgress++
		case model.StatusResolved:
			st.ByStatus.Resolved++
		case model.StatusEscalated:
			st.ByStatus.Escalated++
		}
		switch c.Priority {
		case model.PriorityHigh:
			st.ByPriority.High++
		case model.PriorityMedium:
			st.ByPriority.Medium++
		case model.PriorityLow:
			st.ByPriority.Low++
		}
		st.ByCategory[c.Category]++

		if c.IsOpen() && c.DaysOpened > OverdueAfterDays {
			st.Overdue++
		}
		if c.IsOpen() && c.DaysOpened >= CriticalAfterDays {
			st.Critical++
		}
	}
	st.ResolutionRate = percent(st.ByStatus.Resolved, st.Total)
	st.AvgResolutionTime = avgResolutionDays(list)
	return st
}

func ComputeAdminStats(list []model.Complaint) model.AdminStats {
	st := ComputeStatistics(list)
	out := model.AdminStats{
		TotalComplaints:      st.Total,
		PendingComplaints:    st.ByStatus.Pending,
		InProgressComplaints: st.ByStatus.InProgress,
		ResolvedComplaints:   st.ByStatus.Resolved,
		EscalatedComplaints:  st.ByStatus.Escalated,
		ResolutionRate:       st.ResolutionRate,
		AvgResolutionTime:    st.AvgResolutionTime,
	}
	for _, c := range list {
		if !c.IsOpen() || c.DaysOpened <= 0 {
			continue
		}
		out.OverdueComplaints++
		switch {
		case c.DaysOpened >= CriticalAfterDays:
			out.CriticalOverdue++
		case c.DaysOpened >= HighAfterDays:
			out.HighUrgencyOverdue++
		case c.DaysOpened >= ModerateAfterDays:
			out.ModerateOverdue++
		}
	}

	recent := append([]model.Complaint(nil), list...)
	SortComplaints(recent, SortOptions{Field: SortByUpdated, Desc: true})
	if len(recent) > RecentComplaintsLimit {
		recent = recent[:RecentComplaintsLimit]
	}
	out.RecentComplaints = recent
	return out
}

// groupPerformance Pending 与 In Progress 合并计入 pending
func groupPerformance(name string, list []model.Complaint) model.GroupPerformance {
	g := model.GroupPerformance{Name: name, Total: len(list)}
	for _, c := range list {
		switch c.Status {
		case model.StatusResolved:
			g.Resolved++
		case model.StatusPending, model.StatusInProgress:
			g.Pending++
		case model.StatusEscalated:
			g.Escalated++
		}
	}
	g.ResolutionRate = percent(g.Resolved, g.Total)
	g.AvgResolutionTime = avgResolutionDays(list)
	return g
}

// CategoryPerformance 按首次出现的顺序返回
func CategoryPerformance(list []model.Complaint) []model.GroupPerformance {
	var order []model.ComplaintCategory
	groups := make(map[model.ComplaintCategory][]model.Complaint)
	for _, c := range list {
		if _, ok := groups[c.Category]; !ok {
			order = append(order, c.Category)
		}
		groups[c.Category] = append(groups[c.Category], c)
	}
	out := make([]model.GroupPerformance, 0, len(order))
	for _, cat := range order {
		out = append(out, groupPerformance(string(cat), groups[cat]))
	}
	return out
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthlyTrends 以 now 所在月份为最后一个月，共 months 个月
func MonthlyTrends(list []model.Complaint, now time.Time, months int) []model.TrendPoint {
	byMonth := make(map[string][]model.Complaint)
	for _, c := range list {
		key := monthKey(c.DateSubmitted)
		byMonth[key] = append(byMonth[key], c)
	}

	y, m, _ := now.UTC().Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := first.AddDate(0, -i, 0)
		key := monthKey(month)
		g := groupPerformance(key, byMonth[key])
		out = append(out, model.TrendPoint{
			Month:             month.Format("Jan 2006"),
			MonthKey:          key,
			Submitted:         g.Total,
			Resolved:          g.Resolved,
			Pending:           g.Pending,
			Escalated:         g.Escalated,
			ResolutionRate:    g.ResolutionRate,
			AvgResolutionTime: g.AvgResolutionTime,
		})
	}
	return out
}

func truncateName(name string) string {
	r := []rune(name)
	if len(r) > UniversityNameMaxLength {
		return string(r[:UniversityNameMaxLength]) + "..."
	}
	return name
}

// UniversityComparison 按投诉总数降序
func UniversityComparison(list []model.Complaint) []model.GroupPerformance {
	var order []string
	groups := make(map[string][]model.Complaint)
	for _, c := range list {
		if _, ok := groups[c.University]; !ok {
			order = append(order, c.University)
		}
		groups[c.University] = append(groups[c.University], c)
	}

	out := make([]model.GroupPerformance, 0, len(order))
	for _, uni := range order {
		g := groupPerformance(truncateName(uni), groups[uni])
		g.FullName = uni
		for _, c := range groups[uni] {
			if IsCriticalComplaint(c) {
				g.CriticalCount++
			}
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

func PriorityAnalysis(list []model.Complaint) []model.PriorityAnalysis {
	out := make([]model.PriorityAnalysis, 0, len(model.ComplaintPriorities))
	for _, p := range model.ComplaintPriorities {
		var group []model.Complaint
		pa := model.PriorityAnalysis{Priority: p}
		for _, c := range list {
			if c.Priority != p {
				continue
			}
			group = append(group, c)
			if c.Status == model.StatusResolved {
				pa.Resolved++
			} else if c.DaysOpened > OverdueAfterDays {
				pa.Overdue++
			}
		}
		pa.Total = len(group)
		pa.ResolutionRate = percent(pa.Resolved, pa.Total)
		pa.AvgResolutionTime = avgResolutionDays(group)
		out = append(out, pa)
	}
	return out
}

func ComputeMetrics(list []model.Complaint, now time.Time) model.ReportMetrics {
	st := ComputeStatistics(list)
	m := model.ReportMetrics{
		ComplaintStatistics: st,
		UniversityMetrics:   make(map[string]model.GroupPerformance),
	}

	// 非 Pending 的投诉视为一天内已响应
	responded, responseSum := 0, 0
	for _, c := range list {
		if c.Status == model.StatusPending {
			continue
		}
		responded++
		if c.DaysOpened < 1 {
			responseSum += c.DaysOpened
		} else {
			responseSum++
		}
	}
	if responded > 0 {
		m.AvgResponseTime = math.Round(float64(responseSum)/float64(responded)*10) / 10
	}

	for _, g := range UniversityComparison(list) {
		g.Name = g.FullName
		g.CriticalCount = 0
		m.UniversityMetrics[g.FullName] = g
	}
	m.PerformanceTrends = MonthlyTrends(list, now, MetricsTrendMonths)

	for _, c := range list {
		if c.Status != model.StatusResolved {
			continue
		}
		if c.DaysOpened <= OverdueAfterDays {
			m.Efficiency.OnTime++
		} else {
			m.Efficiency.Delayed++
		}
	}
	m.Efficiency.EscalationRate = percent(st.ByStatus.Escalated, st.Total)
	return m
}

// EscalationOverview 已升级的投诉，按级别降序，其次按打开天数降序
func EscalationOverview(list []model.Complaint) model.EscalationSummary {
	sum := model.EscalationSummary{
		ByLevel: map[model.EscalationLevel]int{
			model.EscalationFaculty: 0,
			model.EscalationHOD:     0,
			model.EscalationDean:    0,
		},
		Items: []model.Complaint{},
	}
	for _, c := range list {
		if c.IsOpen() && c.DaysOpened > OverdueAfterDays {
			sum.Urgent++
		}
		if c.Status != model.StatusEscalated {
			continue
		}
		sum.Items = append(sum.Items, c)
		sum.ByLevel[c.EscalationLevel]++
	}
	sort.SliceStable(sum.Items, func(i, j int) bool {
		a, b := sum.Items[i], sum.Items[j]
		if a.EscalationLevel != b.EscalationLevel {
			return a.EscalationLevel > b.EscalationLevel
		}
		return a.DaysOpened > b.DaysOpened
	})
	sum.Total = len(sum.Items)
	return sum
}
