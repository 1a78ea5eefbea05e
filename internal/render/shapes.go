// Package render turns game frames into images.
package render

import "math"

// Point is a vertex in world coordinates.
type Point struct {
	X, Y float64
}

// asteroidProfiles are closed outlines in units of the asteroid radius,
// y pointing down. The first vertex is repeated at the end.
var asteroidProfiles = [...][]Point{
	{
		{-0.25, -1}, {0.5, -1}, {1, -0.25}, {1, 0.5}, {0, 1}, {0, 0.05},
		{-0.5, 1}, {-1, 0.25}, {-0.5, 0}, {-1, -0.25}, {-0.6667, -0.625},
		{-0.5, -0.625}, {-0.25, -1},
	},
	{
		{0, -0.5}, {0.25, -1}, {1, -0.5}, {0.75, 0}, {1, 0.5}, {0.25, 1},
		{-0.5, 1}, {-1, 0.5}, {-1, -0.5}, {-0.5, -1}, {0, -0.5},
	},
	{
		{-0.5, -1}, {0.25, -1}, {1, -0.5}, {1, -0.25}, {0.25, 0}, {1, 0.25},
		{0.3333, 1}, {0.1, 0.75}, {-0.5, 1}, {-1, 0.3333}, {-1, -0.3333},
		{-0.25, -0.3333}, {-0.5, -1},
	},
}

// saucerProfile is the saucer hull in units of its half-extents.
var saucerProfile = []Point{
	{-1, 0}, {-0.5, 1}, {0.5, 1}, {1, 0}, {0.5, -0.4}, {0.25, -1},
	{-0.25, -1}, {-0.5, -0.4}, {-1, 0}, {1, 0},
}

// AsteroidOutline returns the polyline for an asteroid of the given shape.
func AsteroidOutline(shape int, x, y, r float64) []Point {
	if shape < 0 || shape >= len(asteroidProfiles) {
		shape = 0
	}
	profile := asteroidProfiles[shape]
	out := make([]Point, len(profile))
	for i, p := range profile {
		out[i] = Point{X: x + p.X*r, Y: y + p.Y*r}
	}
	return out
}

// SaucerOutline returns the polyline for a saucer.
func SaucerOutline(x, y, rx, ry float64) []Point {
	out := make([]Point, len(saucerProfile))
	for i, p := range saucerProfile {
		out[i] = Point{X: x + p.X*rx, Y: y + p.Y*ry}
	}
	return out
}

// ShipOutline returns the ship's arrowhead: a nose at the heading and two
// swept wings with a notch between them.
func ShipOutline(x, y, heading, r float64) []Point {
	outer := r * math.Sqrt2
	inner := outer - r*2/3
	at := func(deg, length float64) Point {
		rad := deg * math.Pi / 180
		return Point{X: x + length*math.Cos(rad), Y: y - length*math.Sin(rad)}
	}
	nose := at(heading, r)
	return []Point{
		nose,
		at(heading+215, outer),
		at(heading+190, inner),
		at(heading+170, inner),
		at(heading+145, outer),
		nose,
	}
}

// FlameOutline returns the exhaust triangle drawn while thrusting.
func FlameOutline(x, y, heading, r float64) []Point {
	at := func(deg, length float64) Point {
		rad := deg * math.Pi / 180
		return Point{X: x + length*math.Cos(rad), Y: y - length*math.Sin(rad)}
	}
	return []Point{
		at(heading+195, r*0.8),
		at(heading+180, r*1.6),
		at(heading+165, r*0.8),
	}
}
