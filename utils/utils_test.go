package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2025-03-01", "2025-03-01", false},
		{" 2025-03-01 ", "2025-03-01", false},
		{"2025-03-01T08:30", "2025-03-01", false},
		{"2025-03-01 08:30:00", "2025-03-01", false},
		{"2025-03-01T08:30:00Z", "", false},
		{"01/03/2025", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDate(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tc.in, err)
		}
		if tc.want != "" && got.Format(DateLayout) != tc.want {
			t.Fatalf("ParseDate(%q) = %s, want %s", tc.in, got.Format(DateLayout), tc.want)
		}
	}

	p, err := ParseDatePtr("  ")
	if err != nil || p != nil {
		t.Fatalf("blank optional date should be nil, got %v (%v)", p, err)
	}
}

func TestFormatDate(t *testing.T) {
	if FormatDate(time.Time{}) != "" || FormatDatePtr(nil) != "" || FormatDateTime(time.Time{}) != "" {
		t.Fatalf("zero values should format as empty")
	}
	d := time.Date(2025, 3, 1, 14, 5, 9, 0, time.Local)
	if FormatDate(d) != "2025-03-01" || FormatDateTime(d) != "2025-03-01 14:05:09" {
		t.Fatalf("unexpected formatting %s / %s", FormatDate(d), FormatDateTime(d))
	}
}

func TestCanonicalStatusAndLabel(t *testing.T) {
	tests := map[string]string{
		"approved_rm": "APPROVED_RM",
		"pending-ibu": "APPROVED_RM",
		"rm pending":  "SUBMITTED_RM",
		"Published":   "LIVE",
		" draft ":     "DRAFT",
		"something":   "SOMETHING",
	}
	for in, want := range tests {
		if got := CanonicalStatus(in); got != want {
			t.Fatalf("CanonicalStatus(%q) = %s, want %s", in, got, want)
		}
	}
	if StatusLabel("rework_ibu") != "Rework requested by IBU Head" {
		t.Fatalf("unexpected label %q", StatusLabel("rework_ibu"))
	}
	if StatusLabel("mystery") != "mystery" {
		t.Fatalf("unknown statuses keep their code")
	}
}

func TestTruncate(t *testing.T) {
	if Truncate("short", 10) != "short" {
		t.Fatalf("short strings are kept")
	}
	if got := Truncate("héllo wörld", 5); got != "héllo..." {
		t.Fatalf("unexpected truncation %q", got)
	}
}

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"ida@example.com", " milo@iris.example.com "} {
		if !ValidateEmail(ok) {
			t.Fatalf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", "ida", "ida@", "@example.com"} {
		if ValidateEmail(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}

func TestNotBlankValidation(t *testing.T) {
	type payload struct {
		Title string `json:"title" validate:"notblank,max=5"`
	}
	if err := ValidateStruct(payload{Title: "   "}); err == nil {
		t.Fatalf("blank title should fail")
	}
	if err := ValidateStruct(payload{Title: "\x00 \x00"}); err == nil {
		t.Fatalf("null-byte title should fail")
	}
	if err := ValidateStruct(payload{Title: "toolong"}); err == nil {
		t.Fatalf("long title should fail")
	}
	if err := ValidateStruct(payload{Title: "ok"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  idea\x00 text \n"); got != "idea text" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	if got := SanitizeInput("\x00 idea"); got != "idea" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, msg := ValidatePassword("short"); ok || msg == "" {
		t.Fatalf("short password should fail with a message")
	}
	if ok, _ := ValidatePassword("long-enough"); !ok {
		t.Fatalf("8+ character password should pass")
	}
}
