// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Transform is the local translation, rotation and scale of a hierarchy object relative to its parent.
type Transform struct {
	// Translation is the offset from the parent's origin.
	Translation [3]float32

	// Rotation is a unit quaternion stored as (x, y, z, w).
	Rotation [4]float32

	// Scale is the per-axis scale factor.
	Scale [3]float32
}

// IdentityTransform returns a Transform with no translation, no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: QuatIdentity(),
		Scale:    [3]float32{1, 1, 1},
	}
}

// Matrix writes the transform as a column-major 4x4 matrix (T * R * S).
//
// Returns:
//   - [16]float32: the local matrix
func (t Transform) Matrix() [16]float32 {
	var m [16]float32
	BuildTRSMatrix(m[:], t.Translation, t.Rotation, t.Scale)
	return m
}
