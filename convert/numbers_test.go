package convert

import "testing"

func TestRounding(t *testing.T) {
	if got := OneDecimal(3.14159); got != 3.1 {
		t.Errorf("OneDecimal = %v", got)
	}
	if got := TwoDecimals(3.14159); got != 3.14 {
		t.Errorf("TwoDecimals = %v", got)
	}
	// math.Round rounds half away from zero
	if got := RoundFloat64(-1.25, 1); got != -1.3 {
		t.Errorf("RoundFloat64(-1.25, 1) = %v", got)
	}
}

func TestMwToKw(t *testing.T) {
	if got := MwToKw(2.0); got != 2000.0 {
		t.Errorf("MwToKw(2.0) = %v", got)
	}
}

func TestKwhFromKw(t *testing.T) {
	if got := KwhFromKw(1200, 60); got != 1200.0 {
		t.Errorf("hourly KwhFromKw = %v", got)
	}
	if got := KwhFromKw(1200, 15); got != 300.0 {
		t.Errorf("quarter-hour KwhFromKw = %v", got)
	}
	if got := KwhFromKw(0, 30); got != 0.0 {
		t.Errorf("zero KwhFromKw = %v", got)
	}
}
