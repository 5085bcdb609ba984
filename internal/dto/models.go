package dto

const MaxResumeSize = 5 * 1024 * 1024

var Departments = []string{
	"Human Resources",
	"Engineering",
	"Marketing",
	"Sales",
	"Finance",
	"Operations",
	"Customer Support",
	"Product Management",
	"Quality Assurance",
	"Design",
}

var Designations = []string{
	"Manager",
	"Senior Developer",
	"Developer",
	"Junior Developer",
	"Team Lead",
	"Director",
	"Vice President",
	"Executive",
	"Analyst",
	"Specialist",
	"Coordinator",
	"Associate",
	"Intern",
}

var Relationships = []string{
	"Spouse",
	"Parent",
	"Sibling",
	"Child",
	"Friend",
	"Relative",
	"Other",
}

var ResumeExtensions = []string{".pdf", ".doc", ".docx"}

// UniqueKey names a business key the store keeps unique.
type UniqueKey string

const (
	KeyEmployeeID UniqueKey = "employeeId"
	KeyEmail      UniqueKey = "email"
)

func ParseUniqueKey(s string) (UniqueKey, bool) {
	switch UniqueKey(s) {
	case KeyEmployeeID, KeyEmail:
		return UniqueKey(s), true
	}
	return "", false
}
