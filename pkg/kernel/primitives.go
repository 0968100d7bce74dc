package kernel

// cubeCorners lists the eight corners of a unit cube centered on the origin.
var cubeCorners = [8][3]float32{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// cubeFaces holds two outward-wound triangles per cube face.
var cubeFaces = [36]uint32{
	0, 2, 1, 0, 3, 2, // -z
	4, 5, 6, 4, 6, 7, // +z
	0, 1, 5, 0, 5, 4, // -y
	3, 7, 6, 3, 6, 2, // +y
	0, 4, 7, 0, 7, 3, // -x
	1, 2, 6, 1, 6, 5, // +x
}

// CubeMesh returns an exact 12 triangle cube with the given half extent,
// centered on the origin. When indexed is false the same triangles are
// emitted as a triangle soup with a nil index buffer.
func CubeMesh(halfExtent float32, indexed bool) *Mesh {
	corners := make([]float32, 0, len(cubeCorners)*3)
	for _, c := range cubeCorners {
		corners = append(corners, c[0]*halfExtent, c[1]*halfExtent, c[2]*halfExtent)
	}
	m := expand(corners, cubeFaces[:], indexed)
	m.PartName = "cube"
	return m
}

// octahedronFaces holds the eight faces over the vertices
// +x, -x, +y, -y, +z, -z.
var octahedronFaces = [24]uint32{
	0, 2, 4, 2, 1, 4, 1, 3, 4, 3, 0, 4,
	2, 0, 5, 1, 2, 5, 3, 1, 5, 0, 3, 5,
}

// OctahedronMesh returns a closed octahedron whose vertices sit at
// distance size along each axis.
func OctahedronMesh(size float32) *Mesh {
	verts := []float32{
		size, 0, 0, -size, 0, 0,
		0, size, 0, 0, -size, 0,
		0, 0, size, 0, 0, -size,
	}
	m := expand(verts, octahedronFaces[:], true)
	m.PartName = "octahedron"
	return m
}

func expand(verts []float32, faces []uint32, indexed bool) *Mesh {
	if indexed {
		idx := make([]uint32, len(faces))
		copy(idx, faces)
		return &Mesh{Vertices: verts, Indices: idx}
	}

	soup := make([]float32, 0, len(faces)*3)
	for _, i := range faces {
		soup = append(soup, verts[i*3], verts[i*3+1], verts[i*3+2])
	}
	return &Mesh{Vertices: soup}
}
