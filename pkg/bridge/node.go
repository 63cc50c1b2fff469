package bridge

import (
	"context"
	"time"

	"github.com/robotalks/humidistat/pkg/link"
)

// Node is the receive task of the Bridge Node.
type Node struct {
	Port        link.Port
	Acceptor    *Acceptor
	Reassembler *link.IdleReassembler
}

// NewNode creates a Node which reads port and dispatches to handler.
func NewNode(port link.Port, quietPeriod time.Duration, bufferSize int, handler link.FrameHandler) *Node {
	n := &Node{
		Port:     port,
		Acceptor: &Acceptor{Replies: port, Handler: handler},
	}
	n.Reassembler = link.NewIdleReassembler(link.NewFrameBuffer(bufferSize), n.Acceptor)
	if quietPeriod > 0 {
		n.Reassembler.QuietPeriod = quietPeriod
	}
	return n
}

// Name implements framework.Named.
func (n *Node) Name() string {
	return "bridge"
}

// Run implements framework.Runnable.
func (n *Node) Run(ctx context.Context) error {
	return n.Reassembler.RunPort(ctx, n.Port)
}
