package pricing

import (
	"testing"
	"time"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{10, 10},
		{9.999, 10},
		{9.994, 9.99},
		{55.0000001, 55},
		{0.005, 0.01},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDiscountedPrice(t *testing.T) {
	if got := DiscountedPrice(100, 15); got != 85 {
		t.Fatalf("expected 85, got %v", got)
	}
	if got := DiscountedPrice(19.99, 0); got != 19.99 {
		t.Fatalf("expected price unchanged for zero percent, got %v", got)
	}
	if got := DiscountedPrice(9.99, 33); got != 6.69 {
		t.Fatalf("expected 6.69, got %v", got)
	}
}

func TestPercentOf(t *testing.T) {
	if got := PercentOf(60, 10); got != 6 {
		t.Fatalf("expected 6, got %v", got)
	}
	if got := PercentOf(33.33, 10); got != 3.33 {
		t.Fatalf("expected 3.33, got %v", got)
	}
}

func TestInWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	if !InWindow(nil, nil, now) {
		t.Fatal("open-ended window should always match")
	}
	if !InWindow(&before, &after, now) {
		t.Fatal("now inside window should match")
	}
	if InWindow(&after, nil, now) {
		t.Fatal("window not started should not match")
	}
	if InWindow(nil, &before, now) {
		t.Fatal("expired window should not match")
	}
}
