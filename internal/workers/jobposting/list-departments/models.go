// internal/workers/jobposting/list-departments/models.go
package listdepartments

import "jobposting-workers/internal/models"

type Input struct {
	// Principal is the requester's login name; empty checks the service identity.
	Principal string `json:"principal,omitempty"`
	// Department selects the default department when it is accessible.
	Department string `json:"department,omitempty"`
}

// Output carries the merged divisions of every accessible department in
// Divisions, and those of the default department in DefaultDivisions.
type Output struct {
	Departments         []models.Department `json:"departments"`
	DepartmentLibraries []string            `json:"departmentLibraries"`
	Divisions           []string            `json:"divisions"`
	DefaultDepartment   string              `json:"defaultDepartment,omitempty"`
	DefaultDivisions    []string            `json:"defaultDivisions"`
	DefaultDivision     string              `json:"defaultDivision,omitempty"`
}
