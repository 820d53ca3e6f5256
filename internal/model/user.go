package model

type UserRole string

const (
	Student        UserRole = "student"
	Admin          UserRole = "admin"
	DepartmentHead UserRole = "department-head"
)

func (r UserRole) Valid() bool {
	return r == Student || r == Admin || r == DepartmentHead
}

// Actor 当前请求的操作人，来自外部签发的令牌，本服务不保存用户
type Actor struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Role       UserRole      `json:"role"`
	University string        `json:"university"`
	Department DepartmentKey `json:"department,omitempty"` // 仅 department-head
}
