package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"scms_backend/internal/model"
	"scms_backend/internal/util"
)

// TransitionPolicy 状态流转策略
type TransitionPolicy interface {
	Allow(from, to model.ComplaintStatus) bool
}

// PermissivePolicy 任意状态之间都可以切换
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(from, to model.ComplaintStatus) bool {
	return true
}

// StrictPolicy 只允许业务流程图中的边，已解决的投诉默认不可重开
type StrictPolicy struct {
	AllowReopen bool
}

var strictTransitions = map[model.ComplaintStatus][]model.ComplaintStatus{
	model.StatusPending:    {model.StatusInProgress, model.StatusEscalated, model.StatusResolved},
	model.StatusInProgress: {model.StatusResolved, model.StatusEscalated},
	model.StatusEscalated:  {model.StatusInProgress, model.StatusResolved},
}

func (p StrictPolicy) Allow(from, to model.ComplaintStatus) bool {
	if from == to {
		return true
	}
	if from == model.StatusResolved {
		return p.AllowReopen && to == model.StatusInProgress
	}
	for _, s := range strictTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func NewTransitionPolicy(name string, allowReopen bool) TransitionPolicy {
	if name == util.PolicyStrict {
		return StrictPolicy{AllowReopen: allowReopen}
	}
	return PermissivePolicy{}
}

// Submission 学生提交的投诉内容，身份字段由控制器从令牌中填充
type Submission struct {
	StudentID   string                  `json:"-"`
	StudentName string                  `json:"-"`
	University  string                  `json:"-"`
	Category    model.ComplaintCategory `json:"category" binding:"required"`
	Description string                  `json:"description" binding:"required"`
	Priority    model.ComplaintPriority `json:"priority"`
	Attachments []model.AttachmentFile  `json:"attachments"`
}

func (s Submission) validate(policy AttachmentPolicy) error {
	if strings.TrimSpace(s.StudentID) == "" {
		return util.NewValidationError("studentId", "is required")
	}
	if !s.Category.Valid() {
		return util.NewValidationError("category", "unknown category %q", s.Category)
	}
	if s.Priority != "" && !s.Priority.Valid() {
		return util.NewValidationError("priority", "unknown priority %q", s.Priority)
	}
	if err := validateText("description", s.Description); err != nil {
		return err
	}
	return policy.Validate(nil, s.Attachments)
}

// validateText 清洗后为空视为未填写，长度按原文计算
func validateText(field, text string) error {
	if SanitizeText(text) == "" {
		return util.NewValidationError(field, "is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) > util.MaxDescriptionLength {
		return util.NewValidationError(field, "must be less than %d characters", util.MaxDescriptionLength)
	}
	return nil
}

var (
	dangerousBlocks = regexp.MustCompile(`(?is)<(script|iframe|object|embed)\b.*?</(script|iframe|object|embed)\s*>`)
	dangerousTags   = regexp.MustCompile(`(?i)<(script|iframe|object|embed)\b[^>]*>`)
	jsProtocol      = regexp.MustCompile(`(?i)javascript:`)

	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"/", "&#x2F;",
	)
)

// SanitizeText 去掉脚本类标签后做 HTML 转义
func SanitizeText(s string) string {
	s = dangerousBlocks.ReplaceAllString(s, "")
	s = dangerousTags.ReplaceAllString(s, "")
	s = jsProtocol.ReplaceAllString(s, "")
	return htmlEscaper.Replace(strings.TrimSpace(s))
}

func stampAttachments(files []model.AttachmentFile, now time.Time) []model.AttachmentFile {
	if len(files) == 0 {
		return nil
	}
	out := make([]model.AttachmentFile, len(files))
	for i, f := range files {
		if f.ID == "" {
			f.ID = model.GenerateUUID()
		}
		if f.UploadedAt.IsZero() {
			f.UploadedAt = now.UTC()
		}
		f.Type = util.NormalizeMimeType(f.Type)
		out[i] = f
	}
	return out
}

// NewComplaint 校验并创建投诉，初始状态 Pending、级别 1、天数 0
func NewComplaint(sub Submission, id string, now time.Time, policy AttachmentPolicy) (model.Complaint, error) {
	if strings.TrimSpace(id) == "" {
		return model.Complaint{}, util.NewValidationError("id", "is required")
	}
	if err := sub.validate(policy); err != nil {
		return model.Complaint{}, err
	}

	priority := sub.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	today := model.DateOnly(now)

	return model.Complaint{
		ID:              id,
		StudentID:       sub.StudentID,
		StudentName:     sub.StudentName,
		University:      sub.University,
		Category:        sub.Category,
		Description:     SanitizeText(sub.Description),
		Priority:        priority,
		Status:          model.StatusPending,
		EscalationLevel: model.EscalationFaculty,
		DateSubmitted:   today,
		LastUpdated:     today,
		DaysOpened:      0,
		Attachments:     stampAttachments(sub.Attachments, now),
		Comments:        []model.Comment{},
	}, nil
}

// UpdateStatus 只修改状态和 LastUpdated，置为 Escalated 不会提升级别
func UpdateStatus(c model.Complaint, to model.ComplaintStatus, policy TransitionPolicy, now time.Time) (model.Complaint, error) {
	if !to.Valid() {
		return c, util.NewValidationError("status", "unknown status %q", to)
	}
	if !policy.Allow(c.Status, to) {
		return c, fmt.Errorf("%w: %s -> %s", util.ErrInvalidTransition, c.Status, to)
	}
	c.Status = to
	c.LastUpdated = model.DateOnly(now)
	return c, nil
}

// Escalate 状态置为 Escalated 并提升一级，最高到院长级
func Escalate(c model.Complaint, policy TransitionPolicy, now time.Time) (model.Complaint, error) {
	if c.Status == model.StatusResolved || !policy.Allow(c.Status, model.StatusEscalated) {
		return c, fmt.Errorf("%w: cannot escalate a %s complaint", util.ErrInvalidTransition, c.Status)
	}
	level := c.EscalationLevel
	if level < model.EscalationFaculty {
		level = model.EscalationFaculty
	}
	if level < model.MaxEscalationLevel {
		level++
	}
	c.EscalationLevel = level
	c.Status = model.StatusEscalated
	c.LastUpdated = model.DateOnly(now)
	return c, nil
}

// CommentInput 评论内容，作者和角色由控制器从令牌中填充
type CommentInput struct {
	Author          string                 `json:"-"`
	Role            model.UserRole         `json:"-"`
	Message         string                 `json:"message" binding:"required"`
	Attachments     []model.AttachmentFile `json:"attachments"`
	ExpectedVersion int64                  `json:"expectedVersion"`
}

// allAttachments 投诉本身和评论中的附件合计受同一限制
func allAttachments(c model.Complaint) []model.AttachmentFile {
	out := append([]model.AttachmentFile(nil), c.Attachments...)
	for _, cm := range c.Comments {
		out = append(out, cm.Attachments...)
	}
	return out
}

// AddComment 追加评论，不改变状态、级别和天数
func AddComment(c model.Complaint, in CommentInput, now time.Time, policy AttachmentPolicy) (model.Complaint, error) {
	if strings.TrimSpace(in.Author) == "" {
		return c, util.NewValidationError("author", "is required")
	}
	if in.Role != "" && !in.Role.Valid() {
		return c, util.NewValidationError("role", "unknown role %q", in.Role)
	}
	if err := validateText("message", in.Message); err != nil {
		return c, err
	}
	if err := policy.Validate(allAttachments(c), in.Attachments); err != nil {
		return c, err
	}

	comment := model.Comment{
		ID:          model.GenerateUUID(),
		Author:      in.Author,
		Message:     SanitizeText(in.Message),
		Timestamp:   now.UTC(),
		Role:        in.Role,
		Attachments: stampAttachments(in.Attachments, now),
	}
	comments := make([]model.Comment, len(c.Comments), len(c.Comments)+1)
	copy(comments, c.Comments)
	c.Comments = append(comments, comment)
	c.LastUpdated = model.DateOnly(now)
	return c, nil
}
