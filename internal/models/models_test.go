package models

import "testing"

func TestSeverityMappingIsTotal(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label AlertnessLabel
		want  float64
	}{
		{AlertnessAlert, 0.0},
		{AlertnessLowVigilant, 0.5},
		{AlertnessVeryDrowsy, 1.0},
		{AlertnessLabel("garbage"), 0.0},
	}

	for _, tc := range cases {
		if got := tc.label.Severity(); got != tc.want {
			t.Errorf("Severity(%q) = %v, want %v", tc.label, got, tc.want)
		}
		// deterministic on repeated calls
		if got := tc.label.Severity(); got != tc.want {
			t.Errorf("Severity(%q) second call = %v, want %v", tc.label, got, tc.want)
		}
	}
}
