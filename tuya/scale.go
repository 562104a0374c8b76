package tuya

// The upstream control protocol and the UI do not share units. Brightness is
// presented on an 11-100 scale but transmitted on 0-1000; color temperature
// is presented on 1000-10000 but transmitted on a Kelvin-like range. The
// conversion constants below are part of the wire protocol and must not
// change.

const colorTempFactor = 4.033

// BrightnessToWire converts a UI brightness level (11-100) to the wire scale
// (0-1000). Exact for integers.
func BrightnessToWire(level int) int {
	return level * 10
}

// BrightnessFromWire converts a wire brightness value back to the UI scale.
func BrightnessFromWire(wire int) int {
	return wire / 10
}

// ColorTempToWire converts a UI color temperature (1000-10000) to the wire
// range.
func ColorTempToWire(temp float64) float64 {
	return (temp-1000)*colorTempFactor + 1000
}

// ColorTempFromWire converts a wire color temperature back to the UI range.
// The round trip is accurate to within one unit.
func ColorTempFromWire(wire float64) float64 {
	return (wire-1000)/colorTempFactor + 1000
}
