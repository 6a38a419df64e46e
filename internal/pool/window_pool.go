package pool

import "sync"

// WindowSize is the size of the 6502 address space and of every output window.
const WindowSize = 1 << 16

// Window is a full 64 KiB address space. The compressed stream and the
// decruncher stub are laid out in the same window.
type Window [WindowSize]byte

var windowPool = sync.Pool{
	New: func() any { return new(Window) },
}

// GetWindow retrieves a zeroed Window from the pool.
//
// The caller must call the returned cleanup function to return the window to
// the pool, after which the window must not be used.
//
// Example:
//
//	win, release := pool.GetWindow()
//	defer release()
func GetWindow() (*Window, func()) {
	win, _ := windowPool.Get().(*Window)
	clear(win[:])

	return win, func() { windowPool.Put(win) }
}
