package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFormatPhoneForDisplay verifies the load-time normalization rule:
// only bare 10-digit strings are reformatted.
func TestFormatPhoneForDisplay(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"Bare ten digits", "5551234567", "(555) 123-4567"},
		{"Already formatted", "(555) 123-4567", "(555) 123-4567"},
		{"Empty", "", ""},
		{"Too short", "12345", "12345"},
		{"Too long", "15551234567", "15551234567"},
		{"Dashed", "555-123-4567", "555-123-4567"},
		{"Ten chars with letter", "555123456a", "555123456a"},
		{"Ten chars with space", "555 123456", "555 123456"},
		// Non-ASCII digits are not digits for this rule.
		{"Arabic-Indic digits", "٥٥٥١٢٣٤٥٦٧", "٥٥٥١٢٣٤٥٦٧"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhoneForDisplay(tt.raw))
		})
	}
}

// TestFormatPhone_AllTenDigitInputs checks the (ddd) ddd-dddd shape over a spread of inputs.
func TestFormatPhone_AllTenDigitInputs(t *testing.T) {
	for _, digits := range []string{"0000000000", "9999999999", "0123456789", "5559998888"} {
		got := FormatPhone(digits)
		require.Len(t, got, 14)
		assert.Equal(t, "("+digits[:3]+") "+digits[3:6]+"-"+digits[6:], got)
	}
}

// TestValidatePhone_Idempotent verifies that validating a validated or formatted
// number again yields the same digits.
func TestValidatePhone_Idempotent(t *testing.T) {
	inputs := []string{"555-999-8888", "(555) 999-8888", "5559998888", " 555.999.8888 ", "+1 555 999 888"}

	for _, in := range inputs {
		first, err := ValidatePhone(in)
		if err != nil {
			continue
		}
		second, err := ValidatePhone(first)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		third, err := ValidatePhone(FormatPhone(first))
		require.NoError(t, err)
		assert.Equal(t, first, third)
	}
}

func TestStripNonDigits(t *testing.T) {
	assert.Equal(t, "5559998888", StripNonDigits("(555) 999-8888"))
	assert.Equal(t, "", StripNonDigits("phone"))
	assert.Equal(t, "1", StripNonDigits("٣1"), "Only ASCII digits are kept")
}

func TestContactList_FindAndCount(t *testing.T) {
	list := Normalize([]ContactRecord{{Name: "A", Phone: "1"}, {Name: "B", Phone: "2"}})

	c, ok := list.Find("2")
	require.True(t, ok)
	assert.Equal(t, "B", c.Name)

	_, ok = list.Find("3")
	assert.False(t, ok)

	assert.Equal(t, 2, list.CheckedCount())
	assert.Equal(t, 1, list.Toggle("1").CheckedCount())
}

func TestCardLines_Order(t *testing.T) {
	lines := cardLines(ContactDisplayModel{Name: "Alice", RawPhone: "5551234567"})
	assert.Equal(t, []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:Alice",
		"N:;Alice;;;",
		"TEL;TYPE=CELL:5551234567",
		"END:VCARD",
	}, lines)
}

func TestEditState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "editing", StateEditing.String())
	assert.Equal(t, "validating", StateValidating.String())
}
