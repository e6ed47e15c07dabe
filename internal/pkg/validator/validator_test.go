package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsEmpty(c.input), "IsEmpty(%q)", c.input)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"hr@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"hr@", "@example.com", "hr@.com", "hr@com", " ", ""}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2024-01-01", "2024-02-29", "2000-12-31"}
	invalid := []string{"2023-02-29", "2024-13-01", "01-01-2024", "2024/01/01", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		assert.True(t, ok, s)
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		assert.False(t, ok, s)
	}
}

func TestIsDateRange(t *testing.T) {
	assert.True(t, IsDateRange("2024-01-01", "2024-01-31"))
	assert.True(t, IsDateRange("2024-01-01", "2024-01-01"))
	assert.False(t, IsDateRange("2024-02-01", "2024-01-31"))
	assert.False(t, IsDateRange("bad", "2024-01-31"))
}

func TestIsInSlice(t *testing.T) {
	statuses := []string{"pending", "approved", "rejected"}
	assert.True(t, IsInSlice("approved", statuses))
	assert.False(t, IsInSlice("APPROVED", statuses))
	assert.False(t, IsInSlice("", statuses))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "employee_id", Message: "employee_id is required"},
		{Field: "reason", Message: "reason is required"},
	}
	assert.Equal(t, "employee_id: employee_id is required; reason: reason is required", errs.Error())
	assert.Equal(t, map[string]string{
		"employee_id": "employee_id is required",
		"reason":      "reason is required",
	}, errs.ToMap())
}

func TestMaxLength(t *testing.T) {
	assert.True(t, MaxLength("terlambat", 9))
	assert.False(t, MaxLength("terlambat", 8))
}
