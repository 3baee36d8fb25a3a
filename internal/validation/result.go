// Package validation provides pre-flight checks run before stitching.
package validation

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// Result collects the checks performed so far.
type Result struct {
	Steps    []ValidationStep
	Warnings []string
}

func (r *Result) add(name string, passed bool, details string) {
	r.Steps = append(r.Steps, ValidationStep{Name: name, Passed: passed, Details: details})
}

func (r *Result) warn(message string) {
	r.Warnings = append(r.Warnings, message)
}

// IsValid returns true if all validation checks passed.
func (r *Result) IsValid() bool {
	for _, step := range r.Steps {
		if !step.Passed {
			return false
		}
	}
	return true
}

// GetFailures returns descriptions of failed validation checks.
func (r *Result) GetFailures() []string {
	var failures []string
	for _, step := range r.Steps {
		if !step.Passed {
			failures = append(failures, step.Name+": "+step.Details)
		}
	}
	return failures
}
