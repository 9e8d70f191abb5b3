package pose

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ayusman/faceaim/internal/coords"
)

// Intrinsics is a pinhole camera model without lens distortion.
type Intrinsics struct {
	Focal float64 `json:"focal"` // pixels, same on both axes
	CX    float64 `json:"cx"`
	CY    float64 `json:"cy"`
}

// FromFrameSize approximates intrinsics for an uncalibrated webcam: the
// focal length is the frame width and the principal point is the frame
// center.
func FromFrameSize(width, height int) Intrinsics {
	return Intrinsics{
		Focal: float64(width),
		CX:    float64(width) / 2,
		CY:    float64(height) / 2,
	}
}

// IsZero reports whether the intrinsics are unset.
func (in Intrinsics) IsZero() bool {
	return in.Focal == 0
}

// Matrix returns the 3x3 camera matrix.
func (in Intrinsics) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		in.Focal, 0, in.CX,
		0, in.Focal, in.CY,
		0, 0, 1,
	})
}

// Estimate is a head pose: a rotation vector (axis times angle, radians)
// and a translation, mapping model space into camera space.
type Estimate struct {
	Rotation    [3]float64 `json:"rotation"`
	Translation [3]float64 `json:"translation"`
}

// Rodrigues converts a rotation vector into a rotation matrix.
func Rodrigues(r [3]float64) *mat.Dense {
	theta := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
	if theta < 1e-12 {
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	}
	kx, ky, kz := r[0]/theta, r[1]/theta, r[2]/theta

	k := mat.NewDense(3, 3, []float64{
		0, -kz, ky,
		kz, 0, -kx,
		-ky, kx, 0,
	})
	var k2 mat.Dense
	k2.Mul(k, k)

	rot := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	var term mat.Dense
	term.Scale(math.Sin(theta), k)
	rot.Add(rot, &term)
	term.Scale(1-math.Cos(theta), &k2)
	rot.Add(rot, &term)
	return rot
}

// Project maps a model-space point into image pixels.
func Project(e Estimate, in Intrinsics, p [3]float64) coords.Point {
	rot := Rodrigues(e.Rotation)

	var cam mat.VecDense
	cam.MulVec(rot, mat.NewVecDense(3, p[:]))
	cam.AddVec(&cam, mat.NewVecDense(3, e.Translation[:]))

	z := cam.AtVec(2)
	if z == 0 {
		return coords.NoFace
	}

	var img mat.VecDense
	img.MulVec(in.Matrix(), &cam)
	return coords.Point{X: img.AtVec(0) / z, Y: img.AtVec(1) / z}
}

// ProjectModel projects every model landmark, as a detector would see the
// head under pose e.
func ProjectModel(e Estimate, in Intrinsics) [68]coords.Point {
	var out [68]coords.Point
	for i, p := range modelPoints {
		out[i] = Project(e, in, p)
	}
	return out
}
