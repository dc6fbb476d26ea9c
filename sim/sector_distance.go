package sim

// SectorDistanceIndex answers "which sector is nearest" questions for one
// origin sector. It expands symmetrically from the origin (left neighbour
// before right) and buckets sector indices by light status, so every bucket is
// already sorted by distance. Light status and car assignment are captured at
// build time; occupancy and car fullness are read live, since passengers keep
// moving while the index is in use.
type SectorDistanceIndex struct {
	origin   int
	station  *Station
	order    []int
	byStatus map[LightStatus][]int
}

// NewSectorDistanceIndex builds the index for origin. The origin itself is
// never part of any result.
func NewSectorDistanceIndex(st *Station, origin int) *SectorDistanceIndex {
	idx := &SectorDistanceIndex{
		origin:   origin,
		station:  st,
		order:    make([]int, 0, max(0, st.Len()-1)),
		byStatus: make(map[LightStatus][]int),
	}
	for d := 1; d < st.Len(); d++ {
		for _, i := range [2]int{origin - d, origin + d} {
			sector := st.Sector(i)
			if sector == nil {
				continue
			}
			idx.order = append(idx.order, i)
			idx.byStatus[sector.Light.Status] = append(idx.byStatus[sector.Light.Status], i)
		}
	}
	return idx
}

// Origin returns the sector the index was built for.
func (idx *SectorDistanceIndex) Origin() int {
	return idx.origin
}

// Distance returns the number of sectors between the origin and i.
func (idx *SectorDistanceIndex) Distance(i int) int {
	if i < idx.origin {
		return idx.origin - i
	}
	return i - idx.origin
}

// Within returns the sectors with the given status at most maxDistance away,
// nearest first.
func (idx *SectorDistanceIndex) Within(maxDistance int, status LightStatus) []int {
	var out []int
	for _, i := range idx.byStatus[status] {
		if idx.Distance(i) > maxDistance {
			break
		}
		out = append(out, i)
	}
	return out
}

// HasWithin reports whether any sector with the given status lies within
// maxDistance.
func (idx *SectorDistanceIndex) HasWithin(maxDistance int, status LightStatus) bool {
	bucket := idx.byStatus[status]
	return len(bucket) > 0 && idx.Distance(bucket[0]) <= maxDistance
}

// Nearest returns the nearest sector with the given status, restricted to
// sectors with a parked car when withCar is set.
func (idx *SectorDistanceIndex) Nearest(status LightStatus, withCar bool) (int, bool) {
	return idx.NearestWithin(idx.station.Len(), status, withCar)
}

// NearestWithin is Nearest limited to maxDistance. Equal distances resolve to
// the lower occupancy, then the lower index.
func (idx *SectorDistanceIndex) NearestWithin(maxDistance int, status LightStatus, withCar bool) (int, bool) {
	return idx.nearest(idx.byStatus[status], maxDistance, func(s *StationSector) bool {
		return !withCar || s.HasCar()
	})
}

// LeastOccupiedWithin returns the least occupied sector with the given status
// within maxDistance. Ties resolve to the lower index.
func (idx *SectorDistanceIndex) LeastOccupiedWithin(maxDistance int, status LightStatus, withCar bool) (int, bool) {
	best, bestOcc := -1, 0
	for _, i := range idx.byStatus[status] {
		if idx.Distance(i) > maxDistance {
			break
		}
		sector := idx.station.Sector(i)
		if withCar && !sector.HasCar() {
			continue
		}
		occ := sector.Len()
		if best < 0 || occ < bestOcc || (occ == bestOcc && i < best) {
			best, bestOcc = i, occ
		}
	}
	return best, best >= 0
}

// NearestFreeCar returns the nearest sector, of any light status, in front of
// a car that still has room. Cars with room left over for the passengers
// already queued in front of them come first; only when every free place is
// spoken for does any car that is not full qualify.
func (idx *SectorDistanceIndex) NearestFreeCar(train *Train) (int, bool) {
	carOf := func(s *StationSector) *TrainCar {
		if !s.HasCar() {
			return nil
		}
		return train.Car(s.CarIndex)
	}
	maxDistance := idx.station.Len()
	if to, ok := idx.nearest(idx.order, maxDistance, func(s *StationSector) bool {
		car := carOf(s)
		return car != nil && car.Free() > s.Len()
	}); ok {
		return to, true
	}
	return idx.nearest(idx.order, maxDistance, func(s *StationSector) bool {
		car := carOf(s)
		return car != nil && !car.IsFull()
	})
}

// nearest scans candidates, which must be sorted by distance, and keeps the
// least occupied sector among those at the smallest matching distance.
func (idx *SectorDistanceIndex) nearest(candidates []int, maxDistance int, keep func(*StationSector) bool) (int, bool) {
	best, bestDist, bestOcc := -1, 0, 0
	for _, i := range candidates {
		d := idx.Distance(i)
		if d > maxDistance || (best >= 0 && d > bestDist) {
			break
		}
		sector := idx.station.Sector(i)
		if !keep(sector) {
			continue
		}
		occ := sector.Len()
		if best < 0 || occ < bestOcc || (occ == bestOcc && i < best) {
			best, bestDist, bestOcc = i, d, occ
		}
	}
	return best, best >= 0
}
