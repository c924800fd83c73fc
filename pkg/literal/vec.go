package literal

import (
	"strconv"
	"strings"
)

// Vec is the value of a vector, quaternion or color type. Components beyond
// Len are zero. Boolean vectors store 0 or 1 per component. Vec is comparable,
// so two equal vectors are equal under ==.
type Vec struct {
	Len int
	C   [4]float64
}

// V2, V3 and V4 build vectors from their components.
func V2(x, y float64) Vec       { return Vec{Len: 2, C: [4]float64{x, y}} }
func V3(x, y, z float64) Vec    { return Vec{Len: 3, C: [4]float64{x, y, z}} }
func V4(x, y, z, w float64) Vec { return Vec{Len: 4, C: [4]float64{x, y, z, w}} }

// Components returns the first Len components.
func (v Vec) Components() []float64 {
	return append([]float64(nil), v.C[:v.Len]...)
}

func (v Vec) String() string {
	parts := make([]string, v.Len)
	for i := 0; i < v.Len; i++ {
		parts[i] = strconv.FormatFloat(v.C[i], 'g', -1, 64)
	}
	return "[" + strings.Join(parts, "; ") + "]"
}
