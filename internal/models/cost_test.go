package models

import "testing"

func TestEvaluateCostBand(t *testing.T) {
	thresholds := CostThresholds{Warning: 100, Critical: 150}

	tests := []struct {
		name  string
		spend float64
		want  CostBand
	}{
		{"well under warning", 50, CostBandOK},
		{"just under warning", 99.99, CostBandOK},
		{"exactly warning", 100, CostBandWarning},
		{"between thresholds", 120, CostBandWarning},
		{"exactly critical", 150, CostBandCritical},
		{"above critical never falls back", 200, CostBandCritical},
		{"zero spend", 0, CostBandOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateCostBand(tt.spend, thresholds); got != tt.want {
				t.Errorf("EvaluateCostBand(%v) = %v, want %v", tt.spend, got, tt.want)
			}
		})
	}
}

func TestEvaluateCostBandUnsetThresholds(t *testing.T) {
	// Zero-valued thresholds disable banding rather than dividing by zero.
	if got := EvaluateCostBand(1000, CostThresholds{}); got != CostBandOK {
		t.Errorf("EvaluateCostBand with unset thresholds = %v, want OK", got)
	}
}

func TestCostBandString(t *testing.T) {
	tests := []struct {
		band CostBand
		want string
	}{
		{CostBandOK, "OK"},
		{CostBandWarning, "WARNING"},
		{CostBandCritical, "CRITICAL"},
	}
	for _, tt := range tests {
		if got := tt.band.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
