package bodii

import "testing"

func TestParseDateTimeOrNowRequiresDateWithTime(t *testing.T) {
	t.Parallel()
	if _, err := parseDateTimeOrNow("", "09:00"); err == nil {
		t.Fatalf("expected time without date to fail")
	}
}

func TestParseDateTimeOrNowRejectsMalformedDate(t *testing.T) {
	t.Parallel()
	if _, err := parseDateTimeOrNow("03/10/2026", ""); err == nil {
		t.Fatalf("expected malformed date to fail")
	}
}

func TestParseDateTimeRequiresBothParts(t *testing.T) {
	t.Parallel()
	if _, err := parseDateTime("2026-03-10", ""); err == nil {
		t.Fatalf("expected missing time to fail")
	}
	if _, err := parseDateTime("", "06:30"); err == nil {
		t.Fatalf("expected missing date to fail")
	}
}

func TestParseInt64ArgRejectsNonPositive(t *testing.T) {
	t.Parallel()
	if _, err := parseInt64Arg("id", "0"); err == nil {
		t.Fatalf("expected zero id to fail")
	}
	if _, err := parseInt64Arg("id", "abc"); err == nil {
		t.Fatalf("expected non-numeric id to fail")
	}
}
