package hierarchy

import "github.com/Carmen-Shannon/oxy-anim/common"

// objectSpec collects Spawn options before the object is inserted.
type objectSpec struct {
	name      string
	parent    ObjectID
	transform common.Transform
}

// ObjectBuilderOption is a functional option for configuring an object during Spawn.
type ObjectBuilderOption func(*objectSpec)

// WithName sets the object's name. Names are the segments that animation paths match against.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - ObjectBuilderOption: functional option to set the name
func WithName(name string) ObjectBuilderOption {
	return func(o *objectSpec) {
		o.name = name
	}
}

// WithParent spawns the object as the last child of parent.
//
// Parameters:
//   - parent: the parent object
//
// Returns:
//   - ObjectBuilderOption: functional option to set the parent
func WithParent(parent ObjectID) ObjectBuilderOption {
	return func(o *objectSpec) {
		o.parent = parent
	}
}

// WithTranslation sets the initial local translation.
//
// Parameters:
//   - x, y, z: translation components
//
// Returns:
//   - ObjectBuilderOption: functional option to set the translation
func WithTranslation(x, y, z float32) ObjectBuilderOption {
	return func(o *objectSpec) {
		o.transform.Translation = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial local rotation as a quaternion (x, y, z, w).
//
// Parameters:
//   - q: the rotation quaternion
//
// Returns:
//   - ObjectBuilderOption: functional option to set the rotation
func WithRotation(q [4]float32) ObjectBuilderOption {
	return func(o *objectSpec) {
		o.transform.Rotation = q
	}
}

// WithScale sets the initial local scale.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - ObjectBuilderOption: functional option to set the scale
func WithScale(sx, sy, sz float32) ObjectBuilderOption {
	return func(o *objectSpec) {
		o.transform.Scale = [3]float32{sx, sy, sz}
	}
}

// WithTransform sets the whole initial local transform.
//
// Parameters:
//   - t: the transform
//
// Returns:
//   - ObjectBuilderOption: functional option to set the transform
func WithTransform(t common.Transform) ObjectBuilderOption {
	return func(o *objectSpec) {
		o.transform = t
	}
}
