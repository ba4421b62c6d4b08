package pipeline

import (
	"github.com/pkg/errors"

	"github.com/nf/intcode/vm"
)

// NATAddress is the destination of packets for the network's NAT.
const NATAddress = 255

// ErrHalted is returned by Network.Run when every node has halted.
var ErrHalted = errors.New("all nodes halted")

// Packet is a message between network nodes. Nodes send a packet as three
// consecutive output values: destination, X and Y.
type Packet struct {
	Dst, X, Y int64
}

// Network is a set of machines addressed 0..n-1 that exchange packets.
// A node waiting for input with nothing queued receives -1. When a full
// pass sends no packet and every node found its input empty, the network
// is idle and the NAT sends the last packet it received to node 0.
type Network struct {
	Nodes []*vm.Machine

	// Sent, if not nil, is called for every packet a node sends.
	Sent func(from int, p Packet)

	pending [][]int64
	nat     *Packet
}

// NewNetwork boots n copies of prog, giving each its address as first input.
func NewNetwork(prog []int64, n int, opts ...vm.Option) (*Network, error) {
	if n <= 0 || n > NATAddress {
		return nil, errors.Errorf("invalid network size %d", n)
	}
	nw := &Network{
		Nodes:   make([]*vm.Machine, n),
		pending: make([][]int64, n),
	}
	for i := range nw.Nodes {
		m, err := vm.New(opts...)
		if err != nil {
			return nil, err
		}
		if m.Output().Cap() < 3 {
			return nil, errors.Errorf("output queue of %d cannot hold a packet", m.Output().Cap())
		}
		if err := m.Load(prog); err != nil {
			return nil, err
		}
		m.PushInput(int64(i))
		nw.Nodes[i] = m
	}
	return nw, nil
}

// Run drives the network until the NAT sends node 0 the same Y value twice
// in a row. It returns the Y value of the first packet sent to the NAT and
// the repeated Y value.
func (nw *Network) Run() (first, repeated int64, err error) {
	var (
		gotFirst  bool
		delivered bool
		lastY     int64
	)
	for {
		idle, running := true, false
		for i, m := range nw.Nodes {
			if m.Halted() {
				continue
			}
			running = true
			nw.feed(i)
			if m.InputLen() == 0 {
				m.PushInput(-1)
			} else {
				idle = false
			}
			if _, err := m.Execute(); err != nil {
				return 0, 0, errors.Wrapf(err, "node %d", i)
			}
			for m.OutputLen() >= 3 {
				idle = false
				p := Packet{Dst: m.PopOutput(), X: m.PopOutput(), Y: m.PopOutput()}
				if nw.Sent != nil {
					nw.Sent(i, p)
				}
				switch {
				case p.Dst == NATAddress:
					if !gotFirst {
						first, gotFirst = p.Y, true
					}
					nw.nat = &p
				case p.Dst >= 0 && p.Dst < int64(len(nw.Nodes)):
					nw.pending[p.Dst] = append(nw.pending[p.Dst], p.X, p.Y)
				default:
					return 0, 0, errors.Errorf("node %d sent a packet to unknown address %d", i, p.Dst)
				}
			}
		}
		if !running {
			return 0, 0, ErrHalted
		}
		if !idle || nw.nat == nil || len(nw.pending[0]) > 0 {
			continue
		}
		y := nw.nat.Y
		if delivered && y == lastY {
			return first, y, nil
		}
		nw.pending[0] = append(nw.pending[0], nw.nat.X, y)
		delivered, lastY = true, y
	}
}

// feed moves queued packet values for node i into its input queue.
func (nw *Network) feed(i int) {
	m, q := nw.Nodes[i], nw.pending[i]
	for len(q) > 0 && !m.InputFull() {
		m.PushInput(q[0])
		q = q[1:]
	}
	nw.pending[i] = q
}
