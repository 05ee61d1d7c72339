package member

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-+()]{8,15}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationError reports field-level problems found before any write.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid member fields: %s", strings.Join(names, ", "))
}

func validateInput(input Input) error {
	fields := make(map[string]string)
	if strings.TrimSpace(input.FirstName) == "" {
		fields["firstName"] = "first name is required"
	}
	if strings.TrimSpace(input.LastName) == "" {
		fields["lastName"] = "last name is required"
	}
	if !phonePattern.MatchString(input.Phone) {
		fields["phone"] = "phone must be 8 to 15 digits, spaces, dashes, plus signs or parentheses"
	}
	if !emailPattern.MatchString(input.Email) {
		fields["email"] = "email address is malformed"
	}
	if strings.TrimSpace(input.EmergencyContactName) == "" {
		fields["emergencyContactName"] = "emergency contact name is required"
	}
	if !phonePattern.MatchString(input.EmergencyContactPhone) {
		fields["emergencyContactPhone"] = "emergency contact phone is malformed"
	}
	if input.HasInsurance && strings.TrimSpace(input.InsuranceCompany) == "" {
		fields["insuranceCompany"] = "insurance company is required when insured"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
