package kernel

import "math"

// Mesh is a triangulated surface.
// Vertices has 3 floats per vertex (x,y,z) and normals has 3 floats per
// vertex. Indices, when present, has 3 entries per triangle; a nil Indices
// means the vertex buffer is a triangle soup read 9 floats at a time.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// IsIndexed reports whether triangles are read through the index buffer.
func (m *Mesh) IsIndexed() bool {
	return m.Indices != nil
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m.IsIndexed() {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 9
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// BoundingBox returns the min/max reduction over every vertex position.
// An empty mesh yields a zero box.
func (m *Mesh) BoundingBox() (min, max [3]float64) {
	if m.VertexCount() == 0 {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for v := 0; v+2 < len(m.Vertices); v += 3 {
		for i := 0; i < 3; i++ {
			c := float64(m.Vertices[v+i])
			min[i] = math.Min(min[i], c)
			max[i] = math.Max(max[i], c)
		}
	}
	return min, max
}
