package loyalty

import "testing"

func TestPointsFromAmount(t *testing.T) {
	cases := []struct {
		amount float64
		want   int
	}{
		{0, 0},
		{-10, 0},
		{19.99, 0},
		{20, 1},
		{199.99, 9},
		{200, 10},
		{1000, 50},
	}
	for _, tc := range cases {
		if got := PointsFromAmount(tc.amount); got != tc.want {
			t.Errorf("PointsFromAmount(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestDiscountFromPoints(t *testing.T) {
	cases := []struct {
		points int
		want   float64
	}{
		{0, 0},
		{-5, 0},
		{99, 0},
		{100, 10},
		{199, 10},
		{250, 20},
		{1000, 100},
	}
	for _, tc := range cases {
		if got := DiscountFromPoints(tc.points); got != tc.want {
			t.Errorf("DiscountFromPoints(%d) = %v, want %v", tc.points, got, tc.want)
		}
	}
}

func TestCanRedeem(t *testing.T) {
	if CanRedeem(100, 99) {
		t.Error("below-minimum request should be rejected")
	}
	if CanRedeem(99, 100) {
		t.Error("request above balance should be rejected")
	}
	if !CanRedeem(100, 100) {
		t.Error("exact balance at minimum should be accepted")
	}
}
