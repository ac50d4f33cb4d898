package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTravelerName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"plain", "Asha Rao", true},
		{"initials and apostrophe", "J. O'Neil-Smith", true},
		{"unicode letters", "Zoë Ñúñez", true},
		{"empty", "  ", false},
		{"too short", "A", false},
		{"digits", "Traveler 1", false},
		{"markup", "<b>Asha</b>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateTravelerName(tt.input)
			assert.Equal(t, tt.valid, valid, msg)
		})
	}
}

func TestValidateIDProofAndEmail(t *testing.T) {
	valid, _ := ValidateIDProof("")
	assert.True(t, valid)
	valid, _ = ValidateIDProof("A1234-5678")
	assert.True(t, valid)
	valid, _ = ValidateIDProof("x;drop")
	assert.False(t, valid)

	valid, _ = ValidateEmail("")
	assert.True(t, valid)
	valid, _ = ValidateEmail("asha@example.com")
	assert.True(t, valid)
	valid, _ = ValidateEmail("asha@")
	assert.False(t, valid)
}

func TestSanitizeAndFreeText(t *testing.T) {
	assert.Equal(t, "Window seat &amp; veg meals", SanitizeString(" <i>Window seat</i> & veg meals "))

	assert.NoError(t, ValidateFreeText("special_requests", "Vegetarian meals", MaxSpecialRequestsLength))
	assert.Error(t, ValidateFreeText("special_requests", `<img onerror="x">`, MaxSpecialRequestsLength))
	assert.Error(t, ValidateFreeText("special_requests", strings.Repeat("a", 11), 10))
}
