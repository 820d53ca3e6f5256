package model

// DepartmentKey 部门稳定标识，区别于展示名称
type DepartmentKey string

const (
	DepartmentAcademics      DepartmentKey = "academics"
	DepartmentStudentAffairs DepartmentKey = "student-affairs"
	DepartmentFoodServices   DepartmentKey = "food-services"
	DepartmentFacilities     DepartmentKey = "facilities"
	DepartmentAdministration DepartmentKey = "administration"
	DepartmentGeneral        DepartmentKey = "general"
)

// RoutedDepartments 分类路由可能返回的全部部门，配置的部门目录必须包含这些键
var RoutedDepartments = []DepartmentKey{
	DepartmentAcademics,
	DepartmentStudentAffairs,
	DepartmentFoodServices,
	DepartmentFacilities,
	DepartmentAdministration,
	DepartmentGeneral,
}

// swagger:model Department
type Department struct {
	Key         DepartmentKey       `json:"key" mapstructure:"key"`
	Name        string              `json:"name" mapstructure:"name"`
	Head        string              `json:"head" mapstructure:"head"`
	Email       string              `json:"email" mapstructure:"email"`
	Phone       string              `json:"phone" mapstructure:"phone"`
	Description string              `json:"description" mapstructure:"description"`
	Categories  []ComplaintCategory `json:"categories" mapstructure:"categories"`
}

// DefaultDepartments 默认部门目录，可被配置文件覆盖
func DefaultDepartments() []Department {
	return []Department{
		{
			Key:         DepartmentAcademics,
			Name:        "Academic Affairs",
			Head:        "Dr. Priya Sharma",
			Email:       "academic.head@university.in",
			Phone:       "+91-11-2659-1234",
			Categories:  []ComplaintCategory{CategoryAcademics},
			Description: "Handles all academic-related complaints including course content, examination issues, and faculty concerns",
		},
		{
			Key:         DepartmentStudentAffairs,
			Name:        "Student Affairs & Hostel Management",
			Head:        "Prof. Rajesh Kumar",
			Email:       "student.affairs@university.in",
			Phone:       "+91-11-2659-1235",
			Categories:  []ComplaintCategory{CategoryHostel},
			Description: "Manages hostel facilities, student accommodation, and residential life issues",
		},
		{
			Key:         DepartmentFoodServices,
			Name:        "Food Services & Mess Committee",
			Head:        "Dr. Anita Gupta",
			Email:       "mess.committee@university.in",
			Phone:       "+91-11-2659-1236",
			Categories:  []ComplaintCategory{CategoryMess},
			Description: "Oversees dining hall operations, food quality, and nutrition services",
		},
		{
			Key:         DepartmentFacilities,
			Name:        "Facilities Management & Infrastructure",
			Head:        "Eng. Vikram Singh",
			Email:       "facilities@university.in",
			Phone:       "+91-11-2659-1237",
			Categories:  []ComplaintCategory{CategoryFacilities},
			Description: "Handles campus infrastructure, maintenance, utilities, and facility upgrades",
		},
		{
			Key:         DepartmentAdministration,
			Name:        "Administrative Services",
			Head:        "Mrs. Sunita Patel",
			Email:       "admin.services@university.in",
			Phone:       "+91-11-2659-1238",
			Categories:  []ComplaintCategory{CategoryAdministration},
			Description: "Manages administrative processes, documentation, and bureaucratic procedures",
		},
		{
			Key:         DepartmentGeneral,
			Name:        "General Administration",
			Head:        "Dr. Manoj Verma",
			Email:       "general.admin@university.in",
			Phone:       "+91-11-2659-1239",
			Categories:  []ComplaintCategory{CategoryOther},
			Description: "Handles miscellaneous complaints and coordinates with other departments",
		},
	}
}
