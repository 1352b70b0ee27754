// Package sylph provides the core types of a 2D collision detection
// pipeline: bodies made of shape fixtures, collision filters, pair identity
// for tracking contacts across frames, and tunable detection parameters.
//
// Geometry lives in the geometry subpackage, spatial indexes in broadphase,
// exact overlap tests in narrowphase, and contact point generation in
// manifold.
package sylph
