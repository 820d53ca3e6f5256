package service

import (
	"strings"
	"testing"
	"time"

	"scms_backend/internal/model"
	"scms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 9, 45, 0, 0, time.UTC)

func validSubmission() Submission {
	return Submission{
		StudentID:   "STU-001",
		StudentName: "Rahul Sharma",
		University:  "IIT Delhi",
		Category:    model.CategoryHostel,
		Description: "Water leakage in room H-412",
		Priority:    model.PriorityHigh,
	}
}

func TestStrictPolicy(t *testing.T) {
	p := StrictPolicy{}

	assert.True(t, p.Allow(model.StatusPending, model.StatusInProgress))
	assert.True(t, p.Allow(model.StatusPending, model.StatusResolved))
	assert.True(t, p.Allow(model.StatusInProgress, model.StatusEscalated))
	assert.True(t, p.Allow(model.StatusEscalated, model.StatusInProgress))
	assert.True(t, p.Allow(model.StatusResolved, model.StatusResolved))

	assert.False(t, p.Allow(model.StatusInProgress, model.StatusPending))
	assert.False(t, p.Allow(model.StatusEscalated, model.StatusPending))
	assert.False(t, p.Allow(model.StatusResolved, model.StatusInProgress))
	assert.False(t, p.Allow(model.StatusResolved, model.StatusPending))

	reopen := StrictPolicy{AllowReopen: true}
	assert.True(t, reopen.Allow(model.StatusResolved, model.StatusInProgress))
	assert.False(t, reopen.Allow(model.StatusResolved, model.StatusEscalated))
}

func TestNewTransitionPolicy(t *testing.T) {
	assert.IsType(t, PermissivePolicy{}, NewTransitionPolicy(util.PolicyPermissive, false))
	assert.IsType(t, PermissivePolicy{}, NewTransitionPolicy("", false))
	assert.Equal(t, StrictPolicy{AllowReopen: true}, NewTransitionPolicy(util.PolicyStrict, true))
}

func TestNewComplaint(t *testing.T) {
	c, err := NewComplaint(validSubmission(), "COMP-001", testNow, DefaultAttachmentPolicy())
	require.NoError(t, err)

	assert.Equal(t, "COMP-001", c.ID)
	assert.Equal(t, model.StatusPending, c.Status)
	assert.Equal(t, model.EscalationFaculty, c.EscalationLevel)
	assert.Equal(t, 0, c.DaysOpened)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), c.DateSubmitted)
	assert.Equal(t, c.DateSubmitted, c.LastUpdated)
	assert.NotNil(t, c.Comments)
	assert.Empty(t, c.Comments)
	assert.Empty(t, c.AssignedDepartment)
}

func TestNewComplaintDefaultsPriority(t *testing.T) {
	sub := validSubmission()
	sub.Priority = ""

	c, err := NewComplaint(sub, "COMP-001", testNow, DefaultAttachmentPolicy())
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, c.Priority)
}

func TestNewComplaintStampsAttachments(t *testing.T) {
	sub := validSubmission()
	sub.Attachments = []model.AttachmentFile{{Name: "leak.png", Type: "Image/PNG", Size: 2048}}

	c, err := NewComplaint(sub, "COMP-001", testNow, DefaultAttachmentPolicy())
	require.NoError(t, err)
	require.Len(t, c.Attachments, 1)
	assert.NotEmpty(t, c.Attachments[0].ID)
	assert.Equal(t, "image/png", c.Attachments[0].Type)
	assert.Equal(t, testNow, c.Attachments[0].UploadedAt)
}

func TestNewComplaintValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Submission)
		field  string
	}{
		{"missing student", func(s *Submission) { s.StudentID = " " }, "studentId"},
		{"unknown category", func(s *Submission) { s.Category = "Sports" }, "category"},
		{"unknown priority", func(s *Submission) { s.Priority = "Urgent" }, "priority"},
		{"blank description", func(s *Submission) { s.Description = "   " }, "description"},
		{"only a script block", func(s *Submission) { s.Description = "<script>alert(1)</script>" }, "description"},
		{"only an iframe tag", func(s *Submission) { s.Description = " <iframe src=x> " }, "description"},
		{"description too long", func(s *Submission) { s.Description = strings.Repeat("a", util.MaxDescriptionLength+1) }, "description"},
		{"bad attachment", func(s *Submission) {
			s.Attachments = []model.AttachmentFile{{Name: "run.exe", Type: "application/x-msdownload", Size: 10}}
		}, "attachments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)

			_, err := NewComplaint(sub, "COMP-001", testNow, DefaultAttachmentPolicy())
			var ve *util.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	_, err := NewComplaint(validSubmission(), "", testNow, DefaultAttachmentPolicy())
	assert.True(t, util.IsValidationError(err))
}

func TestNewComplaintAcceptsMaxLengthDescription(t *testing.T) {
	sub := validSubmission()
	sub.Description = strings.Repeat("ä", util.MaxDescriptionLength)

	_, err := NewComplaint(sub, "COMP-001", testNow, DefaultAttachmentPolicy())
	assert.NoError(t, err)
}

func TestSanitizeText(t *testing.T) {
	tests := map[string]string{
		"plain text":                               "plain text",
		"  padded  ":                               "padded",
		"<script>alert('x')</script>hello":         "hello",
		"<SCRIPT src=x>\nalert(1)\n</script >done": "done",
		`<iframe src="evil">`:                      "",
		"click javascript:alert(1)":                "click alert(1)",
		"a < b & c":                                "a &lt; b &amp; c",
		`say "hi" / it's`:                          "say &quot;hi&quot; &#x2F; it&#x27;s",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeText(in), "input %q", in)
	}
}

func TestUpdateStatus(t *testing.T) {
	c := model.Complaint{Status: model.StatusPending, EscalationLevel: model.EscalationFaculty, LastUpdated: testNow.AddDate(0, 0, -3)}

	out, err := UpdateStatus(c, model.StatusEscalated, PermissivePolicy{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEscalated, out.Status)
	assert.Equal(t, model.EscalationFaculty, out.EscalationLevel, "status update never raises the level")
	assert.Equal(t, model.DateOnly(testNow), out.LastUpdated)

	_, err = UpdateStatus(c, "Closed", PermissivePolicy{}, testNow)
	assert.True(t, util.IsValidationError(err))

	resolved := model.Complaint{Status: model.StatusResolved}
	_, err = UpdateStatus(resolved, model.StatusPending, StrictPolicy{}, testNow)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	out, err = UpdateStatus(resolved, model.StatusPending, PermissivePolicy{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, out.Status)
}

func TestEscalate(t *testing.T) {
	c := model.Complaint{Status: model.StatusPending, EscalationLevel: model.EscalationFaculty}

	c, err := Escalate(c, PermissivePolicy{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEscalated, c.Status)
	assert.Equal(t, model.EscalationHOD, c.EscalationLevel)

	c, err = Escalate(c, PermissivePolicy{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.EscalationDean, c.EscalationLevel)

	c, err = Escalate(c, PermissivePolicy{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.EscalationDean, c.EscalationLevel, "level is capped at dean")

	_, err = Escalate(model.Complaint{Status: model.StatusResolved, EscalationLevel: model.EscalationFaculty}, PermissivePolicy{}, testNow)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	zero, err := Escalate(model.Complaint{Status: model.StatusPending}, PermissivePolicy{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.EscalationHOD, zero.EscalationLevel)
}

func TestAddComment(t *testing.T) {
	original := model.Complaint{
		Status:     model.StatusInProgress,
		DaysOpened: 4,
		Comments:   []model.Comment{{ID: "c1", Author: "Dr. Priya Sharma", Message: "Looking into it"}},
	}

	out, err := AddComment(original, CommentInput{
		Author:  "Rahul Sharma",
		Role:    model.Student,
		Message: "Any update? <b>please</b>",
	}, testNow, DefaultAttachmentPolicy())
	require.NoError(t, err)

	require.Len(t, out.Comments, 2)
	assert.Len(t, original.Comments, 1, "input complaint is not modified")
	added := out.Comments[1]
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "Rahul Sharma", added.Author)
	assert.Equal(t, model.Student, added.Role)
	assert.Equal(t, "Any update? &lt;b&gt;please&lt;&#x2F;b&gt;", added.Message)
	assert.Equal(t, testNow, added.Timestamp)
	assert.Equal(t, model.StatusInProgress, out.Status)
	assert.Equal(t, 4, out.DaysOpened)
	assert.Equal(t, model.DateOnly(testNow), out.LastUpdated)
}

func TestAddCommentValidation(t *testing.T) {
	c := model.Complaint{Status: model.StatusPending}
	policy := DefaultAttachmentPolicy()

	_, err := AddComment(c, CommentInput{Message: "hi"}, testNow, policy)
	assert.True(t, util.IsValidationError(err))

	_, err = AddComment(c, CommentInput{Author: "x", Role: "guest", Message: "hi"}, testNow, policy)
	assert.True(t, util.IsValidationError(err))

	_, err = AddComment(c, CommentInput{Author: "x", Message: " "}, testNow, policy)
	assert.True(t, util.IsValidationError(err))

	_, err = AddComment(c, CommentInput{Author: "x", Message: "<script>x</script>"}, testNow, policy)
	var ve *util.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "message", ve.Field)
}

func TestAddCommentCountsExistingAttachments(t *testing.T) {
	pdf := func(name string) model.AttachmentFile {
		return model.AttachmentFile{Name: name, Type: util.MimePDF, Size: 8 * util.MB}
	}
	c := model.Complaint{
		Attachments: []model.AttachmentFile{pdf("a.pdf")},
		Comments:    []model.Comment{{Author: "x", Attachments: []model.AttachmentFile{pdf("b.pdf")}}},
	}

	_, err := AddComment(c, CommentInput{
		Author:      "Rahul Sharma",
		Message:     "one more",
		Attachments: []model.AttachmentFile{pdf("c.pdf"), pdf("d.pdf")},
	}, testNow, DefaultAttachmentPolicy())

	var ve *util.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "total attachment size")
}
