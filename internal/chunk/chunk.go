// Package chunk splits the window offsets of a series into independent units
// of work.
package chunk

// Chunk is a contiguous range of window starts. A chunk reads
// series[Offset : Offset+Offsets+m-1] and produces Offsets distances.
type Chunk struct {
	Index   int
	Offset  int
	Offsets int
}

// End returns one past the last window start of the chunk.
func (c Chunk) End() int {
	return c.Offset + c.Offsets
}

// SeriesEnd returns one past the last sample read by the chunk for a query of
// length m.
func (c Chunk) SeriesEnd(m int) int {
	return c.Offset + c.Offsets + m - 1
}

// Partition splits the n-m+1 window starts of a series into at most w
// contiguous ranges whose sizes differ by at most one. The caller guarantees
// 1 <= m <= n.
func Partition(n, m, w int) []Chunk {
	offsets := n - m + 1
	if w < 1 {
		w = 1
	}
	if w > offsets {
		w = offsets
	}

	base, rem := offsets/w, offsets%w
	chunks := make([]Chunk, w)
	off := 0
	for i := range chunks {
		size := base
		if i < rem {
			size++
		}
		chunks[i] = Chunk{Index: i, Offset: off, Offsets: size}
		off += size
	}
	return chunks
}

// AutoWorkers picks a worker count for a profile of the given number of
// offsets: one per logical CPU, but never so many that a chunk holds fewer
// than max(minOffsets, m) window starts.
func AutoWorkers(offsets, m, cpus, minOffsets int) int {
	if minOffsets < m {
		minOffsets = m
	}
	if minOffsets < 1 {
		minOffsets = 1
	}
	w := (offsets + minOffsets - 1) / minOffsets
	if w > cpus {
		w = cpus
	}
	if w < 1 {
		w = 1
	}
	return w
}

// CapWorkers limits a fixed worker count to the number of offsets.
func CapWorkers(w, offsets int) int {
	if w > offsets {
		w = offsets
	}
	if w < 1 {
		w = 1
	}
	return w
}
