package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

const (
	// TriangleRadius is the distance of every vertex from the origin in
	// clip space.
	TriangleRadius = 0.5

	// vertexStride is the packed size of one vertex: vec4 position followed
	// by vec3 color, both float32.
	vertexStride = 28

	// vertexCount is the number of vertices drawn per frame.
	vertexCount = 3

	// vertexDataSize is the size of one frame's vertex upload.
	vertexDataSize = vertexStride * vertexCount

	// vertexSpacing is the angle between consecutive vertices.
	vertexSpacing = 2 * math.Pi / 3
)

// Vertex is one triangle corner in clip space. Values stay float64 until
// they are packed for upload.
type Vertex struct {
	Position [4]float64 // x, y, z, w
	Color    [3]float64 // r, g, b
}

// vertexColors are the fixed red, green and blue corner colors.
var vertexColors = [vertexCount][3]float64{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// Angles returns the three vertex angles for time t (seconds) and view id.
// Each view is phase-shifted by its id. The time term is reduced modulo a
// full turn first so that wall-clock magnitudes keep full float64
// precision; the resulting angles are equivalent.
func Angles(t float64, id int64) [3]float64 {
	a0 := math.Mod(t, 2*math.Pi) + float64(id)
	a1 := a0 + vertexSpacing
	a2 := a1 + vertexSpacing
	return [3]float64{a0, a1, a2}
}

// TriangleVertices returns the frame's vertices: a triangle of radius 0.5
// centred on the origin, rotated by Angles(t, id), z=0, w=1.
func TriangleVertices(t float64, id int64) [3]Vertex {
	var out [3]Vertex
	for i, a := range Angles(t, id) {
		out[i] = Vertex{
			Position: [4]float64{TriangleRadius * math.Cos(a), TriangleRadius * math.Sin(a), 0, 1},
			Color:    vertexColors[i],
		}
	}
	return out
}

// packVertices converts vertices to the GPU layout in buf, which must hold
// vertexDataSize bytes.
func packVertices(buf []byte, verts [3]Vertex) []byte {
	buf = buf[:vertexDataSize]
	for i := range verts {
		v := &verts[i]
		pos := f32.Vec4{float32(v.Position[0]), float32(v.Position[1]), float32(v.Position[2]), float32(v.Position[3])}
		col := f32.Vec3{float32(v.Color[0]), float32(v.Color[1]), float32(v.Color[2])}
		writeVertex(buf[i*vertexStride:], pos, col)
	}
	return buf
}

func writeVertex(buf []byte, pos f32.Vec4, col f32.Vec3) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(pos[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(pos[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(pos[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(pos[3]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(col[0]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(col[1]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(col[2]))
}

// vertexLayout describes the packed vertex for the pipeline.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x3, Offset: 16, ShaderLocation: 1}, // color
			},
		},
	}
}
