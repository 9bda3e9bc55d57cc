package kernel

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which shard this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Triangle returns the three corners of triangle i.
func (m *Mesh) Triangle(i int) [3][3]float32 {
	var tri [3][3]float32
	for j := 0; j < 3; j++ {
		v := m.Indices[i*3+j] * 3
		tri[j] = [3]float32{m.Vertices[v], m.Vertices[v+1], m.Vertices[v+2]}
	}
	return tri
}

// Append adds the triangles of o to m, offsetting o's indices.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}
