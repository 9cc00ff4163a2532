package types

import (
	"sort"
	"strconv"
)

// FleetStatus is the on/off state of one turbine fleet at one timestamp.
type FleetStatus string

const (
	FleetStatusOn  FleetStatus = "on"
	FleetStatusOff FleetStatus = "off"
)

// FleetStatusMap records per-fleet statuses on a generation record. Keys
// are fleet ids serialized as decimal strings (the map is stored in a JSON
// column).
type FleetStatusMap map[string]FleetStatus

func NewFleetStatusMap() FleetStatusMap {
	return make(FleetStatusMap)
}

func (m FleetStatusMap) SetStatus(fleetID int64, status FleetStatus) {
	m[strconv.FormatInt(fleetID, 10)] = status
}

func (m FleetStatusMap) GetStatus(fleetID int64) (FleetStatus, bool) {
	s, ok := m[strconv.FormatInt(fleetID, 10)]
	return s, ok
}

// ActiveFleetIDs returns the ids of fleets marked "on", ascending.
func (m FleetStatusMap) ActiveFleetIDs() []int64 {
	ids := make([]int64, 0, len(m))
	for k, s := range m {
		if s != FleetStatusOn {
			continue
		}
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
