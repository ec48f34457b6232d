package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("a"))
	assert.False(t, IsEmpty("  a  "))
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.domain.co.id",
		"a+tag@b.io",
	}
	invalid := []string{
		"",
		"plainaddress",
		"@missing-local.org",
		"user@",
		"user@domain",
	}

	for _, e := range valid {
		assert.True(t, IsValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, IsValidEmail(e), e)
	}
}

func TestIsValidLatitude(t *testing.T) {
	assert.True(t, IsValidLatitude(0))
	assert.True(t, IsValidLatitude(-90))
	assert.True(t, IsValidLatitude(90))
	assert.False(t, IsValidLatitude(90.0001))
	assert.False(t, IsValidLatitude(-91))
}

func TestIsValidLongitude(t *testing.T) {
	assert.True(t, IsValidLongitude(0))
	assert.True(t, IsValidLongitude(-180))
	assert.True(t, IsValidLongitude(180))
	assert.False(t, IsValidLongitude(180.5))
	assert.False(t, IsValidLongitude(-181))
}

func TestMinLength(t *testing.T) {
	assert.True(t, MinLength("a reason.", 5))
	assert.False(t, MinLength("short", 10))
	assert.False(t, MinLength("          ", 1))
	assert.True(t, MinLength("  padded out  ", 10))
}

func TestIsValidDate(t *testing.T) {
	_, ok := IsValidDate("2024-01-15")
	assert.True(t, ok)
	_, ok = IsValidDate("15-01-2024")
	assert.False(t, ok)
	_, ok = IsValidDate("")
	assert.False(t, ok)
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "latitude", Message: "latitude must be between -90 and 90"},
		{Field: "reason", Message: "reason must be at least 10 characters"},
	}

	assert.Contains(t, errs.Error(), "latitude")
	assert.Contains(t, errs.Error(), "reason")

	m := errs.ToMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "reason must be at least 10 characters", m["reason"])
}
