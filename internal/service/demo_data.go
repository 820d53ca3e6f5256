package service

import (
	"time"

	"scms_backend/internal/model"
)

type demoComplaint struct {
	studentID   string
	studentName string
	university  string
	category    model.ComplaintCategory
	description string
	priority    model.ComplaintPriority
	status      model.ComplaintStatus
	level       model.EscalationLevel
	daysOpened  int
	updatedDays int
	department  model.DepartmentKey
	comment     string
}

var demoComplaints = []demoComplaint{
	{"STU-001", "Rahul Sharma", "Indian Institute of Technology (IIT) Delhi", model.CategoryAcademics,
		"Unable to access course materials on the institute portal. Getting authentication errors repeatedly despite multiple password resets.",
		model.PriorityHigh, model.StatusInProgress, model.EscalationFaculty, 8, 0, model.DepartmentAcademics,
		"Complaint received and acknowledged. Our technical team is investigating the portal authentication issues."},
	{"STU-001", "Rahul Sharma", "Indian Institute of Technology (IIT) Delhi", model.CategoryHostel,
		"Water leakage in hostel room H-412 causing damage to personal belongings including laptop and books. Urgent repair needed.",
		model.PriorityMedium, model.StatusInProgress, model.EscalationFaculty, 15, 2, model.DepartmentStudentAffairs,
		"Maintenance team has been notified and will inspect the room tomorrow."},
	{"STU-002", "Priya Singh", "Jawaharlal Nehru University (JNU), New Delhi", model.CategoryMess,
		"Consistent food quality issues in the central mess. Multiple students have reported stomach problems after meals.",
		model.PriorityHigh, model.StatusEscalated, model.EscalationHOD, 18, 5, model.DepartmentFoodServices,
		"We have initiated a comprehensive review of our food safety protocols and vendor quality checks."},
	{"STU-003", "Arjun Reddy", "Indian Institute of Technology (IIT) Bombay", model.CategoryFacilities,
		"Central library WiFi connectivity issues persisting for over a month. Unable to access online journals and databases.",
		model.PriorityMedium, model.StatusPending, model.EscalationFaculty, 32, 0, "", ""},
	{"STU-004", "Ananya Patel", "University of Delhi", model.CategoryAdministration,
		"Academic transcript processing delayed for over 3 weeks. Need urgent processing for scholarship application deadline.",
		model.PriorityHigh, model.StatusInProgress, model.EscalationFaculty, 45, 10, model.DepartmentAdministration,
		"Your transcript request has been prioritized due to the scholarship deadline."},
	{"STU-006", "Sneha Gupta", "National Institute of Technology (NIT) Trichy", model.CategoryAcademics,
		"Final semester project submission portal not working. Unable to upload project documents despite multiple attempts.",
		model.PriorityHigh, model.StatusPending, model.EscalationFaculty, 5, 0, "", ""},
	{"STU-008", "Kavitha Nair", "Indian Institute of Information Technology (IIIT) Hyderabad", model.CategoryAdministration,
		"Fee reimbursement for medical emergency not processed despite submitting all required documents 2 months ago.",
		model.PriorityHigh, model.StatusEscalated, model.EscalationHOD, 68, 20, model.DepartmentAdministration,
		"This case has been escalated to the Finance Committee for immediate review."},
	{"STU-009", "Ravi Mehta", "Birla Institute of Technology and Science (BITS), Pilani", model.CategoryMess,
		"Vegetarian food options extremely limited in the evening mess. Request for more variety in vegetarian menu.",
		model.PriorityLow, model.StatusResolved, model.EscalationFaculty, 15, 15, model.DepartmentFoodServices,
		"We have added 5 new vegetarian dishes to our evening menu effective from this week."},
}

// DemoComplaints 演示数据，日期相对 now 计算，老化后天数与 daysOpened 一致
func DemoComplaints(now time.Time, dir *Directory, ids IDGenerator) []model.Complaint {
	if dir == nil {
		dir = NewDirectory(nil)
	}
	if ids == nil {
		ids = NewSequentialIDGenerator()
	}
	today := model.DateOnly(now)

	out := make([]model.Complaint, 0, len(demoComplaints))
	for _, d := range demoComplaints {
		submitted := today.AddDate(0, 0, -d.daysOpened)
		c := model.Complaint{
			ID:              ids.NextID(),
			StudentID:       d.studentID,
			StudentName:     d.studentName,
			University:      d.university,
			Category:        d.category,
			Description:     d.description,
			Priority:        d.priority,
			Status:          d.status,
			EscalationLevel: d.level,
			DateSubmitted:   submitted,
			LastUpdated:     submitted.AddDate(0, 0, d.updatedDays),
			DaysOpened:      d.daysOpened,
			Comments:        []model.Comment{},
			Version:         1,
		}
		if d.department != "" {
			head, _ := dir.Head(d.department)
			at := submitted.Add(10 * time.Hour)
			c.AssignedDepartment = d.department
			c.AssignedDepartmentHead = head
			c.DepartmentAssignedBy = "System Administrator"
			c.DepartmentAssignedAt = &at
			if d.comment != "" {
				c.Comments = append(c.Comments, model.Comment{
					ID:        model.GenerateUUID(),
					Author:    head,
					Message:   d.comment,
					Timestamp: at.Add(time.Hour),
					Role:      model.DepartmentHead,
				})
			}
		}
		out = append(out, c)
	}
	return out
}
