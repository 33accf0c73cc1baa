package speech

import "math"

// Rate and volume bounds of the engine scale.
const (
	MinEngineRate   = -10
	MaxEngineRate   = 10
	MinEngineVolume = 0
	MaxEngineVolume = 100
)

// EngineRate maps a configured speech rate (1.0 = normal) onto the engine's
// -10..10 scale: round((rate-1)*10), clamped.
func EngineRate(rate float64) int {
	if math.IsNaN(rate) {
		return 0
	}
	return clamp(int(math.Round((rate-1)*10)), MinEngineRate, MaxEngineRate)
}

// EngineVolume maps a configured volume (1.0 = full) onto 0..100:
// round(volume*100), clamped.
func EngineVolume(volume float64) int {
	if math.IsNaN(volume) {
		return MaxEngineVolume
	}
	return clamp(int(math.Round(volume*100)), MinEngineVolume, MaxEngineVolume)
}

// rateFactor converts an engine rate into a tempo multiplier. Each end of
// the scale is three times faster or slower than normal.
func rateFactor(rate int) float64 {
	return math.Pow(3, float64(clamp(rate, MinEngineRate, MaxEngineRate))/10)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
