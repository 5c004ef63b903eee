package quantity_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/quantity"
)

func TestRoundKcal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"0", 0},
		{"471.42857", 471},
		{"471.5", 472},
		{"1648.75", 1649},
		{"-0.4", 0},
	}
	for _, c := range cases {
		d, err := decimal.NewFromString(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got := quantity.RoundKcal(d); got != c.want {
			t.Errorf("RoundKcal(%s) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRoundTenth(t *testing.T) {
	t.Parallel()

	d := decimal.RequireFromString("32.1428")
	if got := quantity.RoundTenth(d); !got.Equal(decimal.RequireFromString("32.1")) {
		t.Errorf("RoundTenth = %s, want 32.1", got)
	}
	up := decimal.RequireFromString("0.25")
	if got := quantity.RoundTenth(up); !got.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("RoundTenth(0.25) = %s, want 0.3", got)
	}
}

func TestPercentShare(t *testing.T) {
	t.Parallel()

	part := decimal.New(400, 0)
	total := decimal.New(2000, 0)
	if got := quantity.PercentShare(part, total); !got.Equal(decimal.New(20, 0)) {
		t.Errorf("PercentShare = %s, want 20", got)
	}
	if got := quantity.PercentShare(part, decimal.Zero); !got.IsZero() {
		t.Errorf("PercentShare with zero total = %s, want 0", got)
	}
}

func TestClampNonNegative(t *testing.T) {
	t.Parallel()

	if got := quantity.ClampNonNegative(decimal.New(-5, 0)); !got.IsZero() {
		t.Errorf("negative clamp = %s, want 0", got)
	}
	pos := decimal.RequireFromString("12.5")
	if got := quantity.ClampNonNegative(pos); !got.Equal(pos) {
		t.Errorf("positive clamp = %s, want 12.5", got)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	d, err := quantity.Parse("1609.84")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !d.Equal(decimal.RequireFromString("1609.84")) {
		t.Errorf("Parse = %s, want 1609.84", d)
	}

	zero, err := quantity.Parse("")
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if !zero.IsZero() {
		t.Errorf("Parse(\"\") = %s, want 0", zero)
	}

	if _, err := quantity.Parse("not-a-number"); err == nil {
		t.Fatal("expected error for malformed decimal")
	}
}
