package flock

// TransformSize is the number of floats exported per agent (one 4x4 matrix).
const TransformSize = 16

// MatrixOrder is the element layout of an exported matrix.
type MatrixOrder int

const (
	// ColumnMajor is the OpenGL / WebGL layout (three.js Matrix4.elements).
	ColumnMajor MatrixOrder = iota
	// RowMajor lists the matrix one row after the other.
	RowMajor
)

// Export returns a freshly allocated buffer with one column-major model
// matrix per agent, in population order. Its length is TransformSize*Len().
func (f *Flock) Export() []float32 {
	return f.ExportTo(make([]float32, 0, TransformSize*len(f.agents)), ColumnMajor)
}

// ExportTo writes the transforms into dst (reusing its capacity) and returns it.
func (f *Flock) ExportTo(dst []float32, order MatrixOrder) []float32 {
	dst = dst[:0]
	for _, a := range f.agents {
		m := a.Transform()
		if order == RowMajor {
			m = m.Transpose()
		}
		for _, e := range m {
			dst = append(dst, float32(e))
		}
	}
	return dst
}

// Translation offsets inside one column-major transform.
const (
	TranslationX = 12
	TranslationY = 13
	TranslationZ = 14
)

// Translation reads the position of the i-th agent back from a column-major buffer.
func Translation(buf []float32, i int) (x, y, z float32) {
	m := buf[i*TransformSize : (i+1)*TransformSize]
	return m[TranslationX], m[TranslationY], m[TranslationZ]
}

// Forward reads the facing direction (-Z axis) of the i-th agent from a column-major buffer.
func Forward(buf []float32, i int) (x, y, z float32) {
	m := buf[i*TransformSize : (i+1)*TransformSize]
	return -m[8], -m[9], -m[10]
}
