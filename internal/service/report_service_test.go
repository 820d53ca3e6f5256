package service

import (
	"testing"
	"time"

	"scms_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportFixture() []model.Complaint {
	return []model.Complaint{
		{ID: "COMP-001", University: "Indian Institute of Technology (IIT) Delhi", Category: model.CategoryAcademics,
			Priority: model.PriorityHigh, Status: model.StatusInProgress, EscalationLevel: 1,
			DateSubmitted: day(2024, 3, 2), LastUpdated: day(2024, 3, 9), DaysOpened: 8},
		{ID: "COMP-002", University: "Indian Institute of Technology (IIT) Delhi", Category: model.CategoryHostel,
			Priority: model.PriorityMedium, Status: model.StatusResolved, EscalationLevel: 1,
			DateSubmitted: day(2024, 2, 5), LastUpdated: day(2024, 2, 10), DaysOpened: 5},
		{ID: "COMP-003", University: "JNU", Category: model.CategoryMess,
			Priority: model.PriorityHigh, Status: model.StatusEscalated, EscalationLevel: 2,
			DateSubmitted: day(2024, 2, 20), LastUpdated: day(2024, 3, 1), DaysOpened: 18},
		{ID: "COMP-004", University: "JNU", Category: model.CategoryAcademics,
			Priority: model.PriorityLow, Status: model.StatusPending, EscalationLevel: 1,
			DateSubmitted: day(2024, 3, 10), LastUpdated: day(2024, 3, 10), DaysOpened: 0},
		{ID: "COMP-005", University: "University of Delhi", Category: model.CategoryAdministration,
			Priority: model.PriorityHigh, Status: model.StatusEscalated, EscalationLevel: 3,
			DateSubmitted: day(2024, 1, 15), LastUpdated: day(2024, 3, 3), DaysOpened: 45},
		{ID: "COMP-006", University: "Indian Institute of Technology (IIT) Delhi", Category: model.CategoryMess,
			Priority: model.PriorityLow, Status: model.StatusResolved, EscalationLevel: 1,
			DateSubmitted: day(2024, 1, 20), LastUpdated: day(2024, 2, 4), DaysOpened: 15},
	}
}

func TestComputeStatistics(t *testing.T) {
	st := ComputeStatistics(reportFixture())

	assert.Equal(t, 6, st.Total)
	assert.Equal(t, model.StatusBreakdown{Pending: 1, InProgress: 1, Resolved: 2, Escalated: 2}, st.ByStatus)
	assert.Equal(t, model.PriorityBreakdown{High: 3, Medium: 1, Low: 2}, st.ByPriority)
	assert.Equal(t, 2, st.ByCategory[model.CategoryAcademics])
	assert.Equal(t, 2, st.ByCategory[model.CategoryMess])
	assert.Equal(t, 33, st.ResolutionRate)
	assert.Equal(t, 10, st.AvgResolutionTime)
	assert.Equal(t, 3, st.Overdue)
	assert.Equal(t, 2, st.Critical)
}

func TestComputeStatisticsEmpty(t *testing.T) {
	st := ComputeStatistics(nil)

	assert.Equal(t, 0, st.Total)
	assert.Equal(t, 0, st.ResolutionRate)
	assert.Equal(t, 0, st.AvgResolutionTime)
	assert.NotNil(t, st.ByCategory)
}

func TestComputeAdminStats(t *testing.T) {
	st := ComputeAdminStats(reportFixture())

	assert.Equal(t, 6, st.TotalComplaints)
	assert.Equal(t, 1, st.PendingComplaints)
	assert.Equal(t, 3, st.OverdueComplaints)
	assert.Equal(t, 2, st.CriticalOverdue)
	assert.Equal(t, 1, st.HighUrgencyOverdue)
	assert.Equal(t, 0, st.ModerateOverdue)

	require.Len(t, st.RecentComplaints, RecentComplaintsLimit)
	assert.Equal(t, "COMP-004", st.RecentComplaints[0].ID)
	assert.Equal(t, "COMP-001", st.RecentComplaints[1].ID)
}

func TestCategoryPerformance(t *testing.T) {
	groups := CategoryPerformance(reportFixture())

	require.Len(t, groups, 4)
	assert.Equal(t, "Academics", groups[0].Name)
	assert.Equal(t, 2, groups[0].Total)
	assert.Equal(t, 2, groups[0].Pending, "pending and in progress are counted together")

	mess := groups[2]
	assert.Equal(t, "Mess", mess.Name)
	assert.Equal(t, 1, mess.Resolved)
	assert.Equal(t, 1, mess.Escalated)
	assert.Equal(t, 50, mess.ResolutionRate)
	assert.Equal(t, 15, mess.AvgResolutionTime)
}

func TestMonthlyTrends(t *testing.T) {
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	trends := MonthlyTrends(reportFixture(), now, 3)

	require.Len(t, trends, 3)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, []string{trends[0].MonthKey, trends[1].MonthKey, trends[2].MonthKey})
	assert.Equal(t, "Jan 2024", trends[0].Month)

	jan := trends[0]
	assert.Equal(t, 2, jan.Submitted)
	assert.Equal(t, 1, jan.Resolved)
	assert.Equal(t, 1, jan.Escalated)

	mar := trends[2]
	assert.Equal(t, 2, mar.Submitted)
	assert.Equal(t, 2, mar.Pending)
	assert.Equal(t, 0, mar.ResolutionRate)
}

func TestMonthlyTrendsCrossesYear(t *testing.T) {
	trends := MonthlyTrends(nil, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 2)

	require.Len(t, trends, 2)
	assert.Equal(t, "2023-12", trends[0].MonthKey)
	assert.Equal(t, 0, trends[0].Submitted)
}

func TestUniversityComparison(t *testing.T) {
	groups := UniversityComparison(reportFixture())

	require.Len(t, groups, 3)
	iit := groups[0]
	assert.Equal(t, "Indian Institute of Technology...", iit.Name)
	assert.Equal(t, "Indian Institute of Technology (IIT) Delhi", iit.FullName)
	assert.Equal(t, 3, iit.Total)
	assert.Equal(t, 67, iit.ResolutionRate)
	assert.Equal(t, 0, iit.CriticalCount)

	assert.Equal(t, "JNU", groups[1].Name)
	assert.Equal(t, 1, groups[1].CriticalCount)
	assert.Equal(t, "University of Delhi", groups[2].Name)
}

func TestPriorityAnalysis(t *testing.T) {
	out := PriorityAnalysis(reportFixture())

	require.Len(t, out, 3)
	high := out[0]
	assert.Equal(t, model.PriorityHigh, high.Priority)
	assert.Equal(t, 3, high.Total)
	assert.Equal(t, 0, high.Resolved)
	assert.Equal(t, 3, high.Overdue)

	low := out[2]
	assert.Equal(t, model.PriorityLow, low.Priority)
	assert.Equal(t, 2, low.Total)
	assert.Equal(t, 1, low.Resolved)
	assert.Equal(t, 50, low.ResolutionRate)
	assert.Equal(t, 15, low.AvgResolutionTime)
}

func TestComputeMetrics(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	m := ComputeMetrics(reportFixture(), now)

	assert.Equal(t, 6, m.Total)
	assert.Equal(t, 1.0, m.AvgResponseTime)
	assert.Len(t, m.PerformanceTrends, MetricsTrendMonths)
	assert.Equal(t, "2023-10", m.PerformanceTrends[0].MonthKey)

	iit, ok := m.UniversityMetrics["Indian Institute of Technology (IIT) Delhi"]
	require.True(t, ok)
	assert.Equal(t, "Indian Institute of Technology (IIT) Delhi", iit.Name)

	assert.Equal(t, 1, m.Efficiency.OnTime)
	assert.Equal(t, 1, m.Efficiency.Delayed)
	assert.Equal(t, 33, m.Efficiency.EscalationRate)
}

func TestComputeMetricsResponseTime(t *testing.T) {
	list := []model.Complaint{
		{Status: model.StatusInProgress, DaysOpened: 0},
		{Status: model.StatusResolved, DaysOpened: 5},
		{Status: model.StatusPending, DaysOpened: 9},
	}
	m := ComputeMetrics(list, testNow)
	assert.Equal(t, 0.5, m.AvgResponseTime)
}

func TestEscalationOverview(t *testing.T) {
	sum := EscalationOverview(reportFixture())

	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 3, sum.Urgent)
	assert.Equal(t, map[model.EscalationLevel]int{1: 0, 2: 1, 3: 1}, sum.ByLevel)
	require.Len(t, sum.Items, 2)
	assert.Equal(t, "COMP-005", sum.Items[0].ID)
	assert.Equal(t, "COMP-003", sum.Items[1].ID)
}

func TestReportServiceUsesSource(t *testing.T) {
	source := &staticSource{list: reportFixture()}
	r := NewReportService(source, fixedClock{t: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)})

	assert.Equal(t, 6, r.Statistics().Total)
	assert.Len(t, r.Trends(0), DefaultTrendMonths)
	assert.Len(t, r.Trends(2), 2)
	assert.Len(t, r.Categories(), 4)
	assert.Len(t, r.Universities(), 3)
	assert.Len(t, r.Priorities(), 3)
	assert.Equal(t, 2, r.Escalations().Total)
	assert.Equal(t, 6, r.AdminStats().TotalComplaints)
	assert.Equal(t, 6, r.Metrics().Total)
}
