package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
		"123e4567-e89b-42d3-a456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"",
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2025-01-10", "2024-02-29"}
	invalid := []string{"2025-13-01", "2025-02-30", "10-01-2025", "2025/01/10", ""}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "start_date", Message: "start_date is required"},
		{Field: "end_date", Message: "end_date is required"},
	}
	assert.Equal(t, "start_date: start_date is required; end_date: end_date is required", errs.Error())
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{{Field: "reason", Message: "reason is required"}}
	assert.Equal(t, map[string]string{"reason": "reason is required"}, errs.ToMap())
}

type structSample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Days  int    `json:"days" validate:"gte=0,lte=365"`
	Color string `json:"-" validate:"omitempty,oneof=red blue"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		errs := Struct(&structSample{Name: "ok", Days: 10})
		assert.Nil(t, errs)
	})

	t.Run("reports json field names", func(t *testing.T) {
		errs := Struct(&structSample{Days: 400})
		require.Len(t, errs, 2)
		m := errs.ToMap()
		assert.Equal(t, "name is required", m["name"])
		assert.Equal(t, "days must be less than or equal to 365", m["days"])
	})

	t.Run("string length", func(t *testing.T) {
		errs := Struct(&structSample{Name: "toolong"})
		require.Len(t, errs, 1)
		assert.Equal(t, "name must not exceed 5 characters", errs[0].Message)
	})

	t.Run("ignored json name falls back to field name", func(t *testing.T) {
		errs := Struct(&structSample{Name: "ok", Color: "green"})
		require.Len(t, errs, 1)
		assert.Equal(t, "Color", errs[0].Field)
	})
}
