package log

import "testing"

func TestCategoryString(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{CategorySettle, "SETTLE"},
		{CategoryPush, "PUSH"},
		{CategoryInvoke, "INVOKE"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range []Category{CategorySettle, CategoryPush, CategoryInvoke, CategoryError} {
		got, ok := ParseCategory(c.String())
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCategory("bogus"); ok {
		t.Error("ParseCategory accepted an unknown name")
	}
}

func TestSignalKindString(t *testing.T) {
	if SignalKindState.String() != "STATE" {
		t.Errorf("got %q", SignalKindState.String())
	}
	if SignalKindEvent.String() != "EVENT" {
		t.Errorf("got %q", SignalKindEvent.String())
	}
	if SignalKind(9).String() != "UNKNOWN" {
		t.Errorf("got %q", SignalKind(9).String())
	}
}
