package types

import (
	"encoding/json"
	"testing"
)

func TestPowerCurvePointsSorted(t *testing.T) {
	pc := PowerCurve{}
	pc.Set(12, 2000)
	pc.Set(3, 0)
	pc.Set(7.5, 900)

	points := pc.Points()
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	want := []PowerCurvePoint{{3, 0}, {7.5, 900}, {12, 2000}}
	for i, p := range points {
		if p != want[i] {
			t.Errorf("points[%d] = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestPowerCurvePointsDropsBadKeys(t *testing.T) {
	pc := PowerCurve{"3": 0, "twelve": 2000}
	if points := pc.Points(); len(points) != 1 {
		t.Errorf("got %d points, want 1", len(points))
	}
}

func TestPowerCurveJSONRoundTrip(t *testing.T) {
	pc := PowerCurve{"3.5": 120, "12": 2000}
	buf, err := json.Marshal(pc)
	if err != nil {
		t.Fatal(err)
	}

	var back PowerCurve
	if err := json.Unmarshal(buf, &back); err != nil {
		t.Fatal(err)
	}
	if back["3.5"] != 120 || back["12"] != 2000 {
		t.Errorf("round trip mangled curve: %v", back)
	}
}
