package kjson

import "testing"

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		neg      bool
		digits   string
		exponent int32
	}{
		{"99.99", false, "9999", -2},
		{"-0.001", true, "1", -3},
		{"0", false, "0", 0},
		{"-0", false, "0", 0},
		{"1.50", false, "15", -1},
		{"1000", false, "1", 3},
		{"1.5e-3", false, "15", -4},
		{"2.5E6", false, "25", 5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDecimal(tt.input)
			if err != nil {
				t.Fatalf("ParseDecimal failed: %v", err)
			}
			if d.Neg != tt.neg || d.Digits != tt.digits || d.Exponent != tt.exponent {
				t.Errorf("Expected {%v %s %d}, got {%v %s %d}",
					tt.neg, tt.digits, tt.exponent, d.Neg, d.Digits, d.Exponent)
			}
		})
	}
}

func TestParseDecimal_Invalid(t *testing.T) {
	for _, input := range []string{"", "abc", "NaN", "Infinity", "-Inf"} {
		if _, err := ParseDecimal(input); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestDecimal_String(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"99.99", "99.99"},
		{"-0.001", "-0.001"},
		{"0", "0.0"},
		{"5", "5.0"},
		{"1000", "1000.0"},
		{"1.5e-3", "0.0015"},
		{"0.000001", "0.000001"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDecimal(tt.input)
			if err != nil {
				t.Fatalf("ParseDecimal failed: %v", err)
			}
			if got := d.String(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}

			// The rendering must parse back to the same value.
			back, err := ParseDecimal(d.String())
			if err != nil {
				t.Fatalf("Re-parse failed: %v", err)
			}
			if back != d {
				t.Errorf("String round-trip changed value: %+v != %+v", back, d)
			}
		})
	}
}

func TestDecimalLiteral(t *testing.T) {
	if !IsDecimalLiteral("99.99m") || !IsDecimalLiteral("-1.5e-3m") {
		t.Error("Valid literals rejected")
	}
	if IsDecimalLiteral("99.99") || IsDecimalLiteral("m") || IsDecimalLiteral("1..2m") {
		t.Error("Invalid literals accepted")
	}

	d, err := ParseDecimalLiteral("99.99m")
	if err != nil {
		t.Fatalf("ParseDecimalLiteral failed: %v", err)
	}
	if d.Digits != "9999" || d.Exponent != -2 {
		t.Errorf("Unexpected: %+v", d)
	}
}

func TestDecimal_Apd(t *testing.T) {
	d := mustDecimal(t, "-12.5")
	apd := d.Apd()
	if apd.String() != "-12.5" {
		t.Errorf("Expected -12.5, got %s", apd.String())
	}
}
