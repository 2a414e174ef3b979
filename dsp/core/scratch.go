package core

// EnsureLen resizes a scratch slice to n samples. The backing array is kept
// when it is large enough, so contents are stale and callers must overwrite
// them before reading.
func EnsureLen(buf []float64, n int) []float64 {
	n = max(n, 0)
	if n > cap(buf) {
		return make([]float64, n)
	}

	return buf[:n]
}
