package flightsql

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hugr-lab/attach-go/driver"
)

// defaultMaxIdle is how long an unused pooled session survives before the
// next Get discards it.
const defaultMaxIdle = 5 * time.Minute

// pooledClient tracks one pooled session. inUse guards against handing a
// streaming session to a second caller.
type pooledClient struct {
	client   *Client
	lastUsed time.Time
	inUse    atomic.Bool
}

// Pool reuses ADBC sessions per (URI, credentials) key. There is no
// package-level pool: each Connector owns one, so two attached endpoints
// never share sessions by accident.
type Pool struct {
	mu      sync.Mutex
	clients map[string]*pooledClient
	maxIdle time.Duration

	// dial and healthy are swappable for tests.
	dial    func(ctx context.Context, opts driver.Options) (*Client, error)
	healthy func(c *Client) bool
}

// NewPool creates an empty pool with the default idle timeout.
func NewPool() *Pool {
	return &Pool{
		clients: make(map[string]*pooledClient),
		maxIdle: defaultMaxIdle,
		dial:    Dial,
		healthy: (*Client).Healthy,
	}
}

// lease is a checked-out session. pooled tells Put whether the session
// belongs to the pool or must be closed outright.
type lease struct {
	client *Client
	key    string
	pooled bool
}

// configKey hashes the connection identity. Null-byte delimiters keep
// ("u\x00p", "") and ("u", "\x00p") from colliding.
func configKey(opts driver.Options) string {
	h := sha256.New()
	h.Write([]byte(opts.URI))
	h.Write([]byte{0})
	h.Write([]byte(opts.Username))
	h.Write([]byte{0})
	h.Write([]byte(opts.Password))
	h.Write([]byte{0})
	h.Write([]byte(opts.Token))
	h.Write([]byte{0})
	if opts.SkipVerify {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get leases a session for opts, reusing an idle pooled one when it is
// healthy and fresh. When the pooled session is busy streaming, a second
// unpooled session is dialed so scans never serialize behind each other.
// Dials run outside the pool lock: a slow remote must not block other
// callers checking sessions in or out.
func (p *Pool) Get(ctx context.Context, opts driver.Options) (*lease, error) {
	key := configKey(opts)

	var stale *Client
	busy := false

	p.mu.Lock()
	if pc, ok := p.clients[key]; ok {
		switch {
		case pc.inUse.Load():
			busy = true
		case p.healthy(pc.client) && time.Since(pc.lastUsed) < p.maxIdle:
			pc.inUse.Store(true)
			pc.lastUsed = time.Now()
			p.mu.Unlock()
			return &lease{client: pc.client, key: key, pooled: true}, nil
		default:
			// Stale or dead: discard and dial fresh below.
			stale = pc.client
			delete(p.clients, key)
		}
	}
	p.mu.Unlock()

	if stale != nil {
		stale.Close()
	}

	client, err := p.dial(ctx, opts)
	if err != nil {
		return nil, err
	}
	if busy {
		return &lease{client: client, key: key, pooled: false}, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.clients[key]; ok {
		// A concurrent Get filled the slot while we dialed; this session
		// stays unmanaged.
		return &lease{client: client, key: key, pooled: false}, nil
	}
	pc := &pooledClient{client: client, lastUsed: time.Now()}
	pc.inUse.Store(true)
	p.clients[key] = pc
	return &lease{client: client, key: key, pooled: true}, nil
}

// Put returns a lease. Pooled sessions go back to the pool; unpooled ones
// are closed.
func (p *Pool) Put(l *lease) {
	if l == nil {
		return
	}
	if !l.pooled {
		l.client.Close()
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if pc, ok := p.clients[l.key]; ok && pc.client == l.client {
		pc.lastUsed = time.Now()
		pc.inUse.Store(false)
		return
	}
	// The pool dropped this session while it was out.
	l.client.Close()
}

// Close discards every pooled session.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, pc := range p.clients {
		pc.client.Close()
		delete(p.clients, key)
	}
}
