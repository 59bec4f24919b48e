package money

import (
	"math"
	"testing"
)

func TestHeadline(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "£0"},
		{"small", 5, "£5"},
		{"hundreds", 999, "£999"},
		{"thousand boundary", 1000, "£1,000"},
		{"standard tier", 1300, "£1,300"},
		{"rounds half up", 1299.5, "£1,300"},
		{"rounds down", 1299.49, "£1,299"},
		{"millions", 1234567.5, "£1,234,568"},
		{"negative", -300, "-£300"},
		{"tiny negative rounds to zero", -0.4, "£0"},
		{"NaN", math.NaN(), "£0"},
		{"infinity", math.Inf(1), "£0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Headline(tt.input); got != tt.expect {
				t.Errorf("Headline(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestItemised(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "£0.00"},
		{"whole pounds", 1300, "£1,300.00"},
		{"pence", 42.5, "£42.50"},
		{"half penny rounds away from zero", 10.275, "£10.28"},
		{"ten thousands", 12345.678, "£12,345.68"},
		{"negative", -300, "-£300.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Itemised(tt.input); got != tt.expect {
				t.Errorf("Itemised(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		input  float64
		expect string
	}{
		{300.0 / 1300.0 * 100, "23.1%"},
		{0, "0.0%"},
		{100, "100.0%"},
		{math.NaN(), "0.0%"},
	}

	for _, tt := range tests {
		if got := Percent(tt.input); got != tt.expect {
			t.Errorf("Percent(%v) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}

func TestGroupThousands(t *testing.T) {
	tests := map[string]string{
		"1":       "1",
		"12":      "12",
		"123":     "123",
		"1234":    "1,234",
		"12345":   "12,345",
		"123456":  "123,456",
		"1234567": "1,234,567",
	}

	for input, expect := range tests {
		if got := groupThousands(input); got != expect {
			t.Errorf("groupThousands(%q) = %q, want %q", input, got, expect)
		}
	}
}
