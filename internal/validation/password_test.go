package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "inkwell2026", false},
		{"Exactly Min Length", "abcdef12", false},
		{"Exactly Max Length", strings.Repeat("b", 127) + "1", false},
		{"Too Short", "abc12", true},
		{"Too Long", strings.Repeat("b", 128) + "1", true},
		{"Entirely Numeric", "1234567890", true},
		{"No Digit", "onlyletters", true},
		{"Common", "Password123", true},
		{"Unicode Characters", "Ångström42", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "ada@example.com", false},
		{"Plus Addressing", "ada+blog@example.co.uk", false},
		{"Missing At", "ada.example.com", true},
		{"Missing TLD", "ada@example", true},
		{"Spaces", "ada @example.com", true},
		{"Too Long", strings.Repeat("a", 250) + "@x.io", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}

func TestValidatePhone(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidatePhone(""))
	assert.NoError(t, ValidatePhone("0123456789"))
	assert.Error(t, ValidatePhone("012345678"))
	assert.Error(t, ValidatePhone("01234567890"))
	assert.Error(t, ValidatePhone("01234abcde"))
}

func TestValidateWebsite(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateWebsite(""))
	assert.NoError(t, ValidateWebsite("https://ada.dev/blog"))
	assert.Error(t, ValidateWebsite("ada.dev"))
	assert.Error(t, ValidateWebsite("ftp://ada.dev"))
}

func TestValidateLength(t *testing.T) {
	t.Parallel()
	assert.EqualError(t, ValidateLength("title", "   ", 1, 10), "title is required")
	assert.Error(t, ValidateLength("title", "abcdefghijk", 1, 10))
	assert.NoError(t, ValidateLength("title", "hello", 1, 10))
}
