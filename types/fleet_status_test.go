package types

import (
	"slices"
	"testing"
)

func TestFleetStatusMap(t *testing.T) {
	m := NewFleetStatusMap()
	m.SetStatus(7, FleetStatusOn)
	m.SetStatus(3, FleetStatusOff)
	m.SetStatus(11, FleetStatusOn)

	if s, ok := m.GetStatus(7); !ok || s != FleetStatusOn {
		t.Errorf("GetStatus(7) = %q, %v", s, ok)
	}
	if _, ok := m.GetStatus(42); ok {
		t.Error("GetStatus(42) should miss")
	}

	active := m.ActiveFleetIDs()
	if !slices.Equal(active, []int64{7, 11}) {
		t.Errorf("ActiveFleetIDs() = %v, want [7 11]", active)
	}
}

func TestActiveFleetIDsIgnoresBadKeys(t *testing.T) {
	m := FleetStatusMap{"bogus": FleetStatusOn, "5": FleetStatusOn}
	if active := m.ActiveFleetIDs(); !slices.Equal(active, []int64{5}) {
		t.Errorf("ActiveFleetIDs() = %v, want [5]", active)
	}
}
