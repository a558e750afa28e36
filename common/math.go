package common

import (
	"math"
)

// slerpLinearThreshold is the cosine above which two rotations are treated as parallel and
// blended with a normalized lerp instead of a true slerp.
const slerpLinearThreshold = 0.9995

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order.
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// BuildTRSMatrix constructs a 4x4 column-major matrix from a translation, a unit
// quaternion rotation (x, y, z, w) and a scale. The result is T * R * S.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - t: translation
//   - r: rotation quaternion (x, y, z, w)
//   - s: per-axis scale
func BuildTRSMatrix(out []float32, t [3]float32, r [4]float32, s [3]float32) {
	x, y, z, w := r[0], r[1], r[2], r[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	out[0] = (1 - 2*(yy+zz)) * s[0]
	out[1] = (2 * (xy + wz)) * s[0]
	out[2] = (2 * (xz - wy)) * s[0]
	out[3] = 0

	out[4] = (2 * (xy - wz)) * s[1]
	out[5] = (1 - 2*(xx+zz)) * s[1]
	out[6] = (2 * (yz + wx)) * s[1]
	out[7] = 0

	out[8] = (2 * (xz + wy)) * s[2]
	out[9] = (2 * (yz - wx)) * s[2]
	out[10] = (1 - 2*(xx+yy)) * s[2]
	out[11] = 0

	out[12] = t[0]
	out[13] = t[1]
	out[14] = t[2]
	out[15] = 1
}

// Lerp3 linearly interpolates each component of a and b by t.
// t == 0 returns a exactly.
//
// Parameters:
//   - a: start vector
//   - b: end vector
//   - t: blend factor, normally in [0, 1]
//
// Returns:
//   - [3]float32: the interpolated vector
func Lerp3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// QuatIdentity returns the identity rotation (0, 0, 0, 1).
func QuatIdentity() [4]float32 {
	return [4]float32{0, 0, 0, 1}
}

// QuatDot returns the four-component dot product of two quaternions.
func QuatDot(a, b [4]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

// QuatLength returns the Euclidean norm of q.
func QuatLength(q [4]float32) float32 {
	return float32(math.Sqrt(float64(QuatDot(q, q))))
}

// QuatNormalize scales q to unit length. A zero quaternion normalizes to the identity.
//
// Parameters:
//   - q: quaternion to normalize
//
// Returns:
//   - [4]float32: the unit quaternion
func QuatNormalize(q [4]float32) [4]float32 {
	l := QuatLength(q)
	if l == 0 {
		return QuatIdentity()
	}
	inv := 1 / l
	return [4]float32{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// QuatFromAxisAngle builds a unit quaternion rotating angle radians around axis.
// The axis does not need to be normalized; a zero axis yields the identity.
//
// Parameters:
//   - axis: rotation axis
//   - angle: rotation angle in radians
//
// Returns:
//   - [4]float32: the rotation as (x, y, z, w)
func QuatFromAxisAngle(axis [3]float32, angle float32) [4]float32 {
	l := math.Sqrt(float64(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2]))
	if l == 0 {
		return QuatIdentity()
	}
	half := float64(angle) / 2
	s := math.Sin(half) / l
	return [4]float32{
		float32(float64(axis[0]) * s),
		float32(float64(axis[1]) * s),
		float32(float64(axis[2]) * s),
		float32(math.Cos(half)),
	}
}

// QuatMul returns the Hamilton product a * b (apply b, then a).
func QuatMul(a, b [4]float32) [4]float32 {
	return [4]float32{
		a[3]*b[0] + a[0]*b[3] + a[1]*b[2] - a[2]*b[1],
		a[3]*b[1] - a[0]*b[2] + a[1]*b[3] + a[2]*b[0],
		a[3]*b[2] + a[0]*b[1] - a[1]*b[0] + a[2]*b[3],
		a[3]*b[3] - a[0]*b[0] - a[1]*b[1] - a[2]*b[2],
	}
}

// QuatAngle returns the rotation angle in radians separating two unit quaternions,
// in [0, π]. q and -q represent the same rotation and are 0 apart.
//
// Parameters:
//   - a: first rotation
//   - b: second rotation
//
// Returns:
//   - float32: angular distance in radians
func QuatAngle(a, b [4]float32) float32 {
	d := math.Abs(float64(QuatDot(a, b)))
	if d > 1 {
		d = 1
	}
	return float32(2 * math.Acos(d))
}

// QuatSlerp spherically interpolates between two unit quaternions along the shortest arc.
// t <= 0 returns a and t >= 1 returns b unchanged. Nearly parallel inputs fall back to a
// normalized lerp.
//
// Parameters:
//   - a: start rotation
//   - b: end rotation
//   - t: blend factor in [0, 1]
//
// Returns:
//   - [4]float32: the interpolated unit rotation
func QuatSlerp(a, b [4]float32, t float32) [4]float32 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}

	ax, ay, az, aw := float64(a[0]), float64(a[1]), float64(a[2]), float64(a[3])
	bx, by, bz, bw := float64(b[0]), float64(b[1]), float64(b[2]), float64(b[3])
	cos := ax*bx + ay*by + az*bz + aw*bw
	if cos < 0 {
		bx, by, bz, bw = -bx, -by, -bz, -bw
		cos = -cos
	}

	tf := float64(t)
	var wa, wb float64
	if cos > slerpLinearThreshold {
		wa, wb = 1-tf, tf
	} else {
		theta := math.Acos(cos)
		sin := math.Sin(theta)
		wa = math.Sin((1-tf)*theta) / sin
		wb = math.Sin(tf*theta) / sin
	}

	x := wa*ax + wb*bx
	y := wa*ay + wb*by
	z := wa*az + wb*bz
	w := wa*aw + wb*bw
	l := math.Sqrt(x*x + y*y + z*z + w*w)
	if l == 0 {
		return a
	}
	return [4]float32{float32(x / l), float32(y / l), float32(z / l), float32(w / l)}
}
