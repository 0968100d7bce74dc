package geom

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/meshfill/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is a mesh triangle. It is never mutated after extraction.
type Triangle struct {
	A, B, C v3.Vec
}

// Area returns the surface area of the triangle.
func (t Triangle) Area() float64 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Length() / 2
}

// Extract reads triangles from a flat position buffer (3 floats per
// vertex). With an index buffer, every three indices form a triangle;
// without one, every nine floats do. Triangles come back in buffer order.
func Extract(positions []float32, indices []uint32) ([]Triangle, error) {
	if indices == nil {
		return extractSoup(positions)
	}
	return extractIndexed(positions, indices)
}

// ExtractMesh extracts the triangles of a kernel mesh.
func ExtractMesh(m *kernel.Mesh) ([]Triangle, error) {
	return Extract(m.Vertices, m.Indices)
}

func extractSoup(positions []float32) ([]Triangle, error) {
	if len(positions)%9 != 0 {
		return nil, errors.New("position buffer length is not a multiple of 9").
			WithType(ErrTypeMalformedGeometry).
			WithTag("positions", len(positions))
	}

	tris := make([]Triangle, 0, len(positions)/9)
	for i := 0; i < len(positions); i += 9 {
		tris = append(tris, Triangle{
			A: vertex(positions, i),
			B: vertex(positions, i+3),
			C: vertex(positions, i+6),
		})
	}
	return tris, nil
}

func extractIndexed(positions []float32, indices []uint32) ([]Triangle, error) {
	if len(positions)%3 != 0 {
		return nil, errors.New("position buffer length is not a multiple of 3").
			WithType(ErrTypeMalformedGeometry).
			WithTag("positions", len(positions))
	}
	if len(indices)%3 != 0 {
		return nil, errors.New("index buffer length is not a multiple of 3").
			WithType(ErrTypeMalformedGeometry).
			WithTag("indices", len(indices))
	}

	vertexCount := uint64(len(positions) / 3)
	tris := make([]Triangle, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		var corners [3]v3.Vec
		for j := 0; j < 3; j++ {
			idx := indices[i+j]
			if uint64(idx) >= vertexCount {
				return nil, errors.New("index out of range").
					WithType(ErrTypeMalformedGeometry).
					WithTag("index", idx).
					WithTag("vertices", vertexCount)
			}
			corners[j] = vertex(positions, int(idx)*3)
		}
		tris = append(tris, Triangle{A: corners[0], B: corners[1], C: corners[2]})
	}
	return tris, nil
}

func vertex(positions []float32, offset int) v3.Vec {
	return v3.Vec{
		X: float64(positions[offset]),
		Y: float64(positions[offset+1]),
		Z: float64(positions[offset+2]),
	}
}

// Bounds returns the bounding box of a flat position buffer. Trailing floats
// that do not form a whole vertex are ignored; an empty buffer yields a
// zero box.
func Bounds(positions []float32) sdf.Box3 {
	n := len(positions) / 3
	if n == 0 {
		return sdf.Box3{}
	}
	box := sdf.Box3{Min: vertex(positions, 0), Max: vertex(positions, 0)}
	for i := 1; i < n; i++ {
		v := vertex(positions, i*3)
		box.Min = box.Min.Min(v)
		box.Max = box.Max.Max(v)
	}
	return box
}
