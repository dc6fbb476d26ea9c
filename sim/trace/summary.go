package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	LightCounts      map[string]int `json:"light_counts"` // light status → sectors set to it
	TotalMoves       int            `json:"total_moves"`  // passengers moved
	MeanMoveDistance float64        `json:"mean_move_distance"`
	MaxMoveDistance  int            `json:"max_move_distance"`
	MovesByReason    map[string]int `json:"moves_by_reason"` // reason → passengers moved
	Destinations     map[int]int    `json:"destinations"`    // sector → passengers received
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		LightCounts:   make(map[string]int),
		MovesByReason: make(map[string]int),
		Destinations:  make(map[int]int),
	}
	if st == nil {
		return summary
	}

	for _, l := range st.Lights {
		summary.LightCounts[l.Status]++
	}

	totalDistance := 0
	for _, m := range st.Moves {
		if m.Count <= 0 {
			continue
		}
		summary.TotalMoves += m.Count
		summary.MovesByReason[m.Reason] += m.Count
		summary.Destinations[m.To] += m.Count
		totalDistance += m.Distance * m.Count
		if m.Distance > summary.MaxMoveDistance {
			summary.MaxMoveDistance = m.Distance
		}
	}
	if summary.TotalMoves > 0 {
		summary.MeanMoveDistance = float64(totalDistance) / float64(summary.TotalMoves)
	}

	return summary
}
