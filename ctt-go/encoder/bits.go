package encoder

// Widths of the bit-unpacked encounter columns.
const (
	PartnerIDBits = 16
	MessageBits   = 8
)

// UnpackBits writes the width low bits of v, most significant first, as 0/1
// floats.
func UnpackBits(v, width int) []float32 {
	bits := make([]float32, width)
	for i := 0; i < width; i++ {
		if v>>uint(width-1-i)&1 == 1 {
			bits[i] = 1
		}
	}
	return bits
}

// PackBits is the inverse of UnpackBits: any non-zero entry is a set bit.
func PackBits(bits []float32) int {
	var v int
	for _, b := range bits {
		v <<= 1
		if b != 0 {
			v |= 1
		}
	}
	return v
}
