package version

import (
	"errors"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input string
		major uint16
		minor uint16
	}{
		{"1.0", 1, 0},
		{"1.1", 1, 1},
		{"2.0", 2, 0},
		{"10.23", 10, 23},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if v.Major != tt.major {
				t.Errorf("Major = %d, want %d", v.Major, tt.major)
			}
			if v.Minor != tt.minor {
				t.Errorf("Minor = %d, want %d", v.Minor, tt.minor)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"1",
		"abc",
		"1.0.0",
		"1.x",
		"-1.0",
		".1",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Errorf("Parse(%q) should return error", input)
			}
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse(\"x\") should panic")
		}
	}()
	MustParse("x")
}

func TestFormatVersion_String(t *testing.T) {
	if got := MustParse("10.23").String(); got != "10.23" {
		t.Errorf("String() = %q, want %q", got, "10.23")
	}
}

func TestCompatible(t *testing.T) {
	v1 := MustParse("1.0")
	v11 := MustParse("1.1")
	v2 := MustParse("2.0")

	if !v1.Compatible(v11) || !v11.Compatible(v1) {
		t.Error("1.0 and 1.1 should be compatible")
	}
	if v1.Compatible(v2) || v2.Compatible(v1) {
		t.Error("1.0 and 2.0 should NOT be compatible")
	}
}

func TestReadable(t *testing.T) {
	reader := MustParse("1.1")

	tests := []struct {
		doc  string
		want bool
	}{
		{"1.0", true},
		{"1.1", true},
		{"1.2", false},
		{"2.0", false},
		{"0.9", false},
	}
	for _, tt := range tests {
		if got := reader.Readable(MustParse(tt.doc)); got != tt.want {
			t.Errorf("1.1 Readable(%s) = %v, want %v", tt.doc, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	if err := Check(""); err != nil {
		t.Errorf("Check(\"\") = %v, want nil", err)
	}
	if err := Check(Current); err != nil {
		t.Errorf("Check(Current) = %v, want nil", err)
	}
	if err := Check("1.x"); err == nil || errors.Is(err, ErrUnsupported) {
		t.Errorf("Check(\"1.x\") = %v, want a parse error", err)
	}
	if err := Check("2.0"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Check(\"2.0\") = %v, want ErrUnsupported", err)
	}
	if err := Check("1.9"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Check(\"1.9\") = %v, want ErrUnsupported", err)
	}
}

func TestCurrent(t *testing.T) {
	v, err := Parse(Current)
	if err != nil {
		t.Fatalf("Parse(Current) returned error: %v", err)
	}
	if v.Major != 1 || v.Minor != 0 {
		t.Errorf("Current version = %s, want 1.0", v)
	}
}
