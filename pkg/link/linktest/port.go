// Package linktest provides in-memory link transports for tests.
package linktest

import (
	"io"
	"sync"
	"time"
)

// Port is an in-memory link.Port. Bytes injected are returned by Read,
// bytes written are recorded and forwarded to the peer if connected.
type Port struct {
	// OnWrite is invoked after each Write with a copy of the written bytes.
	// It must be set before the Port is used.
	OnWrite func(p []byte)

	lock    sync.Mutex
	rx      []byte
	timeout time.Duration
	writes  [][]byte
	peer    *Port
	closed  bool
	notify  chan struct{}
	closeCh chan struct{}
}

// NewPort creates a Port which blocks reads forever.
func NewPort() *Port {
	return &Port{
		timeout: -1,
		notify:  make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
}

// NewPair creates two Ports connected back to back.
func NewPair() (*Port, *Port) {
	a, b := NewPort(), NewPort()
	a.peer, b.peer = b, a
	return a, b
}

// Inject makes p available for Read.
func (p *Port) Inject(b []byte) {
	p.lock.Lock()
	p.rx = append(p.rx, b...)
	p.lock.Unlock()
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// SetReadTimeout implements link.Port. A negative timeout blocks.
func (p *Port) SetReadTimeout(timeout time.Duration) error {
	p.lock.Lock()
	p.timeout = timeout
	p.lock.Unlock()
	return nil
}

// Read implements io.Reader. It returns 0 bytes without an error when the
// read timeout expires, and io.EOF after Close.
func (p *Port) Read(b []byte) (int, error) {
	var timer <-chan time.Time
	for {
		p.lock.Lock()
		if len(p.rx) > 0 {
			n := copy(b, p.rx)
			p.rx = p.rx[n:]
			p.lock.Unlock()
			return n, nil
		}
		closed, timeout := p.closed, p.timeout
		p.lock.Unlock()
		if closed {
			return 0, io.EOF
		}
		if timer == nil && timeout >= 0 {
			timer = time.After(timeout)
		}
		select {
		case <-p.notify:
		case <-p.closeCh:
		case <-timer:
			return 0, nil
		}
	}
}

// ResetInputBuffer drops bytes not yet read.
func (p *Port) ResetInputBuffer() error {
	p.lock.Lock()
	p.rx = nil
	p.lock.Unlock()
	return nil
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	data := append([]byte(nil), b...)
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return 0, io.ErrClosedPipe
	}
	p.writes = append(p.writes, data)
	peer := p.peer
	p.lock.Unlock()
	if peer != nil {
		peer.Inject(data)
	}
	if p.OnWrite != nil {
		p.OnWrite(data)
	}
	return len(b), nil
}

// Writes returns a snapshot of all writes.
func (p *Port) Writes() [][]byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([][]byte(nil), p.writes...)
}

// WaitWrites waits until at least n writes are recorded or timeout expires.
func (p *Port) WaitWrites(n int, timeout time.Duration) [][]byte {
	deadline := time.Now().Add(timeout)
	for {
		writes := p.Writes()
		if len(writes) >= n || time.Now().After(deadline) {
			return writes
		}
		time.Sleep(time.Millisecond)
	}
}

// Close implements io.Closer.
func (p *Port) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.closed {
		p.closed = true
		close(p.closeCh)
	}
	return nil
}
