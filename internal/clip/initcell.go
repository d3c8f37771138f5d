package clip

import (
	"fmt"
	"sync"
)

// initCell is a single-flight, memoizing cell: the first start runs fn, every
// caller (concurrent or late) waits on the same done channel and reads the
// same settled error. It never forgets its outcome; replace the cell to retry.
type initCell struct {
	mu      sync.Mutex
	started bool
	settled bool
	err     error
	done    chan struct{}
}

func newInitCell() *initCell {
	return &initCell{done: make(chan struct{})}
}

// start launches fn on the first call and returns the settlement channel.
func (c *initCell) start(fn func() error) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		c.started = true
		go c.run(fn)
	}
	return c.done
}

func (c *initCell) run(fn func() error) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clip: init panicked: %v", r)
		}
		c.mu.Lock()
		c.err = err
		c.settled = true
		c.mu.Unlock()
		close(c.done)
	}()
	err = fn()
}

// result returns the settled outcome. Only meaningful once done is closed.
func (c *initCell) result() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *initCell) status() (started, settled bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started, c.settled, c.err
}
