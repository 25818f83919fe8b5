package render

import (
	"math"

	"telemetry-dashboard/app/src/domain"
)

// Eye is the fixed viewpoint of the 2D projection, looking at the origin
// with Z up. It matches the camera the TFT display was designed around.
var Eye = domain.Vec3{X: -1.8, Y: -1.8, Z: 1.3}

type basis struct {
	right, up domain.Vec3
}

var view = newBasis(Eye)

func newBasis(eye domain.Vec3) basis {
	forward := normalize(scale(eye, -1))
	right := normalize(cross(forward, domain.Vec3{Z: 1}))
	up := cross(right, forward)
	return basis{right: right, up: up}
}

// Project maps a scene position to orthographic screen coordinates.
func Project(p domain.Vec3) (x, y float64) {
	return dot(p, view.right), dot(p, view.up)
}

func dot(a, b domain.Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func scale(a domain.Vec3, k float64) domain.Vec3 {
	return domain.Vec3{X: a.X * k, Y: a.Y * k, Z: a.Z * k}
}

func cross(a, b domain.Vec3) domain.Vec3 {
	return domain.Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func normalize(a domain.Vec3) domain.Vec3 {
	n := math.Sqrt(dot(a, a))
	if n == 0 {
		return a
	}
	return scale(a, 1/n)
}
