package sim

import "math"

// DrivingTime returns the seconds a train needs to cover distanceKm from
// standstill to standstill: accelerate to cruise speed, cruise, decelerate.
// When the distance is too short to reach cruise speed the profile is
// triangular and the train turns to braking at its peak speed.
func DrivingTime(distanceKm float64, k KinematicsConfig) float64 {
	distance := distanceKm * 1000
	if distance <= 0 {
		return 0
	}
	cruise := k.CruiseSpeedKmh / 3.6 // m/s

	accelTime := cruise / k.Acceleration
	accelDistance := 0.5 * k.Acceleration * accelTime * accelTime
	decelTime := cruise / k.Deceleration
	decelDistance := 0.5 * k.Deceleration * decelTime * decelTime

	if accelDistance+decelDistance >= distance {
		// v^2/2a + v^2/2d = distance
		peak := math.Sqrt(2 * distance * k.Acceleration * k.Deceleration / (k.Acceleration + k.Deceleration))
		return peak/k.Acceleration + peak/k.Deceleration
	}

	cruiseTime := (distance - accelDistance - decelDistance) / cruise
	return accelTime + cruiseTime + decelTime
}
