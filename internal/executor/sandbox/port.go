package sandbox

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/model"
)

// Port is a one-shot reply channel. The first Post settles it; later posts
// are dropped.
type Port struct {
	once    sync.Once
	settled atomic.Bool
	ch      chan model.Reply
}

func NewPort() *Port {
	return &Port{ch: make(chan model.Reply, 1)}
}

// Post settles the port with reply. It reports false if the port was
// already settled.
func (p *Port) Post(reply model.Reply) bool {
	posted := false
	p.once.Do(func() {
		p.ch <- reply
		p.settled.Store(true)
		posted = true
	})
	return posted
}

// Settled reports whether a reply has been posted.
func (p *Port) Settled() bool {
	return p.settled.Load()
}

// Receive blocks until the port is settled or ctx is done.
func (p *Port) Receive(ctx context.Context) (model.Reply, error) {
	select {
	case reply := <-p.ch:
		return reply, nil
	case <-ctx.Done():
		return model.Reply{}, apperror.Cancelled(context.Cause(ctx))
	}
}
