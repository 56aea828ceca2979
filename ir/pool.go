package ir

// poolChunkBase is the object count of the first pool chunk. Chunks double
// in size up to poolChunkCap.
const (
	poolChunkBase = 64
	poolChunkCap  = 64 * 1024
)

// Pool is a chunked bump allocator. Create returns pointers that stay valid
// for the life of the pool; ReleaseContents drops all live objects at once
// while keeping the backing chunks for reuse by the next compilation.
type Pool[T any] struct {
	chunks [][]T
	used   int // objects used in the last chunk
}

// Create allocates one zeroed object from the pool.
func (p *Pool[T]) Create() *T {
	if n := len(p.chunks); n == 0 || p.used == cap(p.chunks[n-1]) {
		size := poolChunkBase
		if n > 0 {
			size = cap(p.chunks[n-1]) * 2
			if size > poolChunkCap {
				size = poolChunkCap
			}
		}
		p.chunks = append(p.chunks, make([]T, size))
		p.used = 0
	}
	chunk := p.chunks[len(p.chunks)-1]
	obj := &chunk[p.used]
	p.used++
	return obj
}

// ReleaseContents zeroes every live object and rewinds the pool without
// returning memory to the runtime.
func (p *Pool[T]) ReleaseContents() {
	var zero T
	for i, chunk := range p.chunks {
		n := len(chunk)
		if i == len(p.chunks)-1 {
			n = p.used
		}
		for j := 0; j < n; j++ {
			chunk[j] = zero
		}
	}
	p.used = 0
	if len(p.chunks) > 1 {
		// Keep only the largest chunk so repeated use settles on one
		// allocation.
		p.chunks = p.chunks[len(p.chunks)-1:]
	}
}
