package payment

import "testing"

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		total float64
		want  int64
	}{
		{0, 0},
		{100.00, 10000},
		{250.50, 25050},
		{350.50, 35050},
		{0.01, 1},
		{19.99, 1999},
	}

	for _, tt := range tests {
		if got := MinorUnits(tt.total); got != tt.want {
			t.Errorf("MinorUnits(%v) = %d, want %d", tt.total, got, tt.want)
		}
	}
}
