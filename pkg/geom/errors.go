package geom

const (
	// ErrTypeMalformedGeometry is the error type for vertex or index buffers
	// that cannot be read as triangles.
	ErrTypeMalformedGeometry = "malformed-geometry"

	// ErrTypeDegenerateProjection is the error type for a projection
	// direction that runs parallel to the projection plane.
	ErrTypeDegenerateProjection = "degenerate-projection"
)
