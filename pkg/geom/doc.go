// Package geom turns mesh buffers into triangles and flattens 3D points onto
// a fixed projection plane. Both operations are pure: the same buffers and
// plane always yield the same triangles and projected coordinates.
package geom
