package sylph

import (
	"sync/atomic"

	"github.com/sylphengine/sylph/geometry"
)

// fixtureIDs issues process-unique fixture identities. Identity must not
// depend on list position: removing a fixture would otherwise change the
// hash of every later fixture on the body and break contact caches keyed
// on it.
var fixtureIDs atomic.Uint64

// Fixture attaches a shape to a body along with its collision filter and
// sensor flag. A sensor fixture is detected like any other but is meant to
// be resolved by the caller as a notification only.
type Fixture struct {
	id       uint64
	shape    *Shape
	filter   Filter
	sensor   bool
	userData any
}

// Shape is re-exported so most callers only import the root package for
// pipeline assembly.
type Shape = geometry.Shape

// NewFixture wraps a shape with the default filter.
func NewFixture(shape *Shape) (*Fixture, error) {
	if shape == nil {
		return nil, geometry.ErrNilArgument
	}
	return &Fixture{id: fixtureIDs.Add(1), shape: shape, filter: DefaultFilter{}}, nil
}

// ID returns the fixture's process-unique identity. It never changes, in
// particular not when other fixtures are removed from the body.
func (f *Fixture) ID() uint64 { return f.id }

// Shape returns the fixture's shape.
func (f *Fixture) Shape() *Shape { return f.shape }

// Filter returns the collision filter.
func (f *Fixture) Filter() Filter { return f.filter }

// SetFilter replaces the collision filter. A nil filter resets to the
// default.
func (f *Fixture) SetFilter(filter Filter) {
	if filter == nil {
		filter = DefaultFilter{}
	}
	f.filter = filter
}

// Sensor reports whether the fixture is a sensor.
func (f *Fixture) Sensor() bool { return f.sensor }

// SetSensor marks the fixture as a sensor.
func (f *Fixture) SetSensor(sensor bool) { f.sensor = sensor }

// UserData returns the user-attached value.
func (f *Fixture) UserData() any { return f.userData }

// SetUserData attaches an arbitrary value to the fixture.
func (f *Fixture) SetUserData(v any) { f.userData = v }
