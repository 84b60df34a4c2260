package ir

// poolPageSize is the number of elements held by a single page of a pool.
const poolPageSize = 128

// pool is a page-based arena allocator. Handles into the entities it holds
// are stable for the pool's lifetime: the arena only grows, it never moves
// or frees individual elements (spec.md §9 design note: "the DFG never
// garbage-collects detached instructions; memory grows monotonically").
type pool[T any] struct {
	pages          []*[poolPageSize]T
	allocated, idx int
}

func newPool[T any]() pool[T] {
	var p pool[T]
	p.reset()
	return p
}

// allocate returns a pointer to a freshly zeroed T and its index in the
// arena.
func (p *pool[T]) allocate() (*T, int) {
	if p.idx == poolPageSize {
		p.pages = append(p.pages, new([poolPageSize]T))
		p.idx = 0
	}
	i := len(p.pages) - 1
	ret := &p.pages[i][p.idx]
	index := i*poolPageSize + p.idx
	p.idx++
	p.allocated++
	return ret, index
}

// view returns a pointer to the element at index i.
func (p *pool[T]) view(i int) *T {
	page, idx := i/poolPageSize, i%poolPageSize
	return &p.pages[page][idx]
}

func (p *pool[T]) len() int {
	return p.allocated
}

func (p *pool[T]) reset() {
	p.pages = p.pages[:0]
	p.idx = poolPageSize
	p.allocated = 0
}
