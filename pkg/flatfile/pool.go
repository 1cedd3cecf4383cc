package flatfile

import "sync"

// arenaPool recycles default-sized character arenas between parsers.
// Parsers configured with any other MaxBufferSize allocate their own.
var arenaPool = sync.Pool{
	New: func() interface{} {
		b := make([]rune, DefaultMaxBufferSize)
		return &b
	},
}

// getArena returns an arena of exactly size characters.
func getArena(size int) []rune {
	if size != DefaultMaxBufferSize {
		return make([]rune, size)
	}
	p := arenaPool.Get().(*[]rune)
	return *p
}

// putArena returns an arena to the pool. Arenas of other sizes are left to the GC.
func putArena(buf []rune) {
	if len(buf) != DefaultMaxBufferSize {
		return
	}
	// Drop the previous contents so pooled arenas do not pin decoded input.
	clear(buf)
	arenaPool.Put(&buf)
}
