package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle math.
const EarthRadiusMeters = 6371000.0

// metersPerDegree approximates one degree of latitude at the Earth's surface.
const metersPerDegree = 111320.0

// IsValidLatitude reports whether lat is a usable latitude in decimal degrees.
func IsValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// IsValidLongitude reports whether lon is a usable longitude in decimal degrees.
func IsValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && lon >= -180 && lon <= 180
}

// IsValidCoordinatePair reports whether lat/lon together form a usable fix.
func IsValidCoordinatePair(lat, lon float64) bool {
	return IsValidLatitude(lat) && IsValidLongitude(lon)
}

// E7ToDecimal converts an integer-scaled E7 coordinate to decimal degrees.
func E7ToDecimal(v int64) float64 {
	return float64(v) / 1e7
}

// DecimalToE7 converts decimal degrees to the E7 integer encoding. The round
// trip is exact only at the rounding boundary; callers must tolerate drift of
// up to 1e-7 degrees.
func DecimalToE7(v float64) int64 {
	return int64(math.Round(v * 1e7))
}

// DMSToDecimal converts degrees/minutes/seconds plus a hemisphere reference
// ("N", "S", "E", "W") to signed decimal degrees.
func DMSToDecimal(degrees, minutes, seconds float64, ref string) float64 {
	decimal := degrees + minutes/60 + seconds/3600
	if ref == "S" || ref == "W" {
		return -decimal
	}
	return decimal
}

// HaversineDistance returns the great-circle distance in meters between two
// coordinate pairs.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// Bearing returns the initial great-circle bearing in degrees [0, 360) from
// the first coordinate toward the second.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	theta := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(theta+360, 360)
}

// Box is an axis-aligned bounding box in decimal degrees.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the coordinate pair falls inside the box.
func (b Box) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// BoundingBox returns an approximate box extending radiusMeters from the
// center in each direction. Longitude degrees are corrected by the cosine of
// the center latitude; the approximation degrades near the poles.
func BoundingBox(lat, lon, radiusMeters float64) Box {
	dLat := radiusMeters / metersPerDegree
	cosLat := math.Cos(lat * math.Pi / 180)
	if math.Abs(cosLat) < 1e-9 {
		cosLat = 1e-9
	}
	dLon := radiusMeters / (metersPerDegree * cosLat)
	return Box{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
		MinLon: lon - dLon,
		MaxLon: lon + dLon,
	}
}
