// Package light synthesizes the derived light sources of a level
// compile: procedural light entities (suns, surface lights, jitter
// clones) and one-bounce radiosity area lights.
package light

import "github.com/Faultbox/bsplight/pkg/vec"

// The configurable fields of a light entity distinguish an authored
// value from a default. Each option type carries its fallback and an
// explicit/default tag, so resolution logic consults one place instead
// of a raw value plus a side boolean.

// FloatOpt is a float setting with a default fallback.
type FloatOpt struct {
	def float64
	val float64
	set bool
}

// Float returns a FloatOpt with the given default.
func Float(def float64) FloatOpt { return FloatOpt{def: def} }

// Set marks the option explicit with the given value.
func (o *FloatOpt) Set(v float64) { o.val, o.set = v, true }

// Value returns the explicit value, or the default.
func (o FloatOpt) Value() float64 {
	if o.set {
		return o.val
	}
	return o.def
}

// IsSet reports whether the option was explicitly set.
func (o FloatOpt) IsSet() bool { return o.set }

// IntOpt is an integer setting with a default fallback.
type IntOpt struct {
	def int
	val int
	set bool
}

// Int returns an IntOpt with the given default.
func Int(def int) IntOpt { return IntOpt{def: def} }

// Set marks the option explicit with the given value.
func (o *IntOpt) Set(v int) { o.val, o.set = v, true }

// Value returns the explicit value, or the default.
func (o IntOpt) Value() int {
	if o.set {
		return o.val
	}
	return o.def
}

// IsSet reports whether the option was explicitly set.
func (o IntOpt) IsSet() bool { return o.set }

// Vec3Opt is a vector setting with a default fallback.
type Vec3Opt struct {
	def vec.Vec3
	val vec.Vec3
	set bool
}

// Vec returns a Vec3Opt with the given default.
func Vec(def vec.Vec3) Vec3Opt { return Vec3Opt{def: def} }

// Set marks the option explicit with the given value.
func (o *Vec3Opt) Set(v vec.Vec3) { o.val, o.set = v, true }

// Value returns the explicit value, or the default.
func (o Vec3Opt) Value() vec.Vec3 {
	if o.set {
		return o.val
	}
	return o.def
}

// IsSet reports whether the option was explicitly set.
func (o Vec3Opt) IsSet() bool { return o.set }

// StringOpt is a string setting with a default fallback.
type StringOpt struct {
	def string
	val string
	set bool
}

// Str returns a StringOpt with the given default.
func Str(def string) StringOpt { return StringOpt{def: def} }

// Set marks the option explicit with the given value.
func (o *StringOpt) Set(v string) { o.val, o.set = v, true }

// Value returns the explicit value, or the default.
func (o StringOpt) Value() string {
	if o.set {
		return o.val
	}
	return o.def
}

// IsSet reports whether the option was explicitly set.
func (o StringOpt) IsSet() bool { return o.set }
