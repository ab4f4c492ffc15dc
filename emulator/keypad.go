package emulator

import (
	"context"
	"sync"
)

// Keypad is the 16-key input pad, keys 0x0-0xF.
type Keypad interface {
	Press(key uint8)
	Release(key uint8)
	IsPressed(key uint8) bool
	// WaitForKey blocks until the next key press and returns its id.
	WaitForKey(ctx context.Context) (uint8, error)
}

// Pad is a Keypad safe for use from an input goroutine while the
// interpreter runs on another.
type Pad struct {
	mu      sync.Mutex
	keys    [KeyCount]bool
	waiters []chan uint8
}

func NewPad() *Pad {
	return &Pad{}
}

// Press marks key as held and hands it to every pending WaitForKey.
// Keys outside 0x0-0xF are ignored.
func (p *Pad) Press(key uint8) {
	if key >= KeyCount {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys[key] = true
	for _, w := range p.waiters {
		w <- key
	}
	p.waiters = nil
}

func (p *Pad) Release(key uint8) {
	if key >= KeyCount {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys[key] = false
}

func (p *Pad) IsPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keys[key]
}

// Keys returns the held state of all keys.
func (p *Pad) Keys() [KeyCount]bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keys
}

// WaitForKey returns the first key pressed after it is called. Keys already
// held do not count.
func (p *Pad) WaitForKey(ctx context.Context) (uint8, error) {
	return p.await(ctx, p.addWaiter())
}

func (p *Pad) addWaiter() chan uint8 {
	ch := make(chan uint8, 1)
	p.mu.Lock()
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()
	return ch
}

func (p *Pad) await(ctx context.Context, ch chan uint8) (uint8, error) {
	select {
	case key := <-ch:
		return key, nil
	case <-ctx.Done():
		p.removeWaiter(ch)
		// a Press may have handed over a key before the waiter was removed
		select {
		case key := <-ch:
			return key, nil
		default:
		}
		return 0, ctx.Err()
	}
}

func (p *Pad) removeWaiter(ch chan uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, w := range p.waiters {
		if w == ch {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return
		}
	}
}
