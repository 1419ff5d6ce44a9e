package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"jane@example.com", true},
		{"a.b+c@sub.example.co", true},
		{"not-an-email", false},
		{"jane@example", false},
		{"jane doe@example.com", false},
		{"@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.in))
		})
	}
}

func TestPasswordListsEveryViolation(t *testing.T) {
	r := Password("short")
	assert.False(t, r.Valid)
	assert.Equal(t, []string{MsgPasswordLength, MsgPasswordUppercase, MsgPasswordDigit}, r.Errors)

	r = Password("")
	assert.Equal(t, []string{MsgPasswordLength, MsgPasswordUppercase, MsgPasswordLowercase, MsgPasswordDigit}, r.Errors)

	r = Password("SHORT")
	assert.ElementsMatch(t, []string{MsgPasswordLength, MsgPasswordLowercase, MsgPasswordDigit}, r.Errors)
}

func TestPasswordAccepts(t *testing.T) {
	r := Password("Secret123")
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
}

func TestPasswordLengthCountsCharacters(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Ab1éééé", false},
		{"Ab1ééééé", true},
		{"Ab1defgh", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r := Password(tt.in)
			assert.Equal(t, tt.want, r.Valid)
			if !tt.want {
				assert.Equal(t, []string{MsgPasswordLength}, r.Errors)
			}
		})
	}
}

func TestRequiredAndLength(t *testing.T) {
	assert.False(t, Required("  ", "name").Valid)
	assert.Equal(t, []string{"name is required"}, Required("", "name").Errors)
	assert.True(t, Required("Jane", "name").Valid)

	r := StringLength("ab", "title", 3, 5)
	assert.Equal(t, []string{"title must be at least 3 characters long"}, r.Errors)
	r = StringLength("abcdef", "title", 3, 5)
	assert.Equal(t, []string{"title must be no more than 5 characters long"}, r.Errors)

	m := Merge(Required("", "a"), Required("", "b"), Required("x", "c"))
	assert.False(t, m.Valid)
	assert.Len(t, m.Errors, 2)
}
