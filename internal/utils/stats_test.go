package utils

import (
	"errors"
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{1000.0 / 3000.0, 0.33},
		{4500.0 / 3000.0, 1.5},
		{2.0 / 3.0, 0.67},
		{250.0 / 2000.0, 0.12},
		{1250.0 / 2000.0, 0.62},
		{500.0 / 4000.0, 0.12},
		{375.0 / 1000.0, 0.38},
		{0, 0},
	}
	for _, tc := range cases {
		if got := Round(tc.in, 2); got != tc.want {
			t.Fatalf("Round(%v, 2) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if got := Round(math.Inf(1), 2); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf to pass through, got %v", got)
	}
}

func TestAppErrorUnwraps(t *testing.T) {
	err := NewAppError("load", "read report", ErrMalformedReport)
	if !errors.Is(err, ErrMalformedReport) {
		t.Fatalf("expected AppError to unwrap to ErrMalformedReport")
	}
	if err.Error() != "load: read report: malformed report" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if msg := NewAppError("op", "msg", nil).Error(); msg != "op: msg" {
		t.Fatalf("unexpected message %q", msg)
	}
}
