// Package trace provides decision-trace recording for platform runs.
// It has no dependencies on sim/ and stores pure data types.
package trace

// LightRecord captures the colour a sector light was set to from its car's weight.
type LightRecord struct {
	Clock     float64
	Sector    int
	Car       int
	CarWeight float64
	Status    string
}

// Move reasons.
const (
	ReasonYellowLight = "yellow-light"
	ReasonRedLight    = "red-light"
	ReasonNoLight     = "no-light"
	ReasonNoCar       = "no-car"
	ReasonCarFull     = "car-full"
)

// MoveRecord captures passengers relocated between sectors.
type MoveRecord struct {
	Clock    float64
	From     int
	To       int
	Count    int
	Distance int
	Reason   string
	Target   string // light status of the destination
}
