package pipeline

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/nf/intcode/vm"
)

// Amplify runs one copy of prog per phase setting, connected in a ring.
// Each machine first receives its phase setting and the first machine then
// receives signal. It returns the last value the final machine sent once all
// machines have halted.
func Amplify(prog, phases []int64, signal int64, opts ...vm.Option) (int64, error) {
	if len(phases) == 0 {
		return 0, errors.New("no phases")
	}
	ms := make([]*vm.Machine, len(phases))
	for i := range ms {
		m, err := vm.New(opts...)
		if err != nil {
			return 0, err
		}
		if err := m.Load(prog); err != nil {
			return 0, err
		}
		ms[i] = m
	}
	p := New(ms...).Ring()
	for i, ph := range phases {
		ms[i].PushInput(ph)
	}
	ms[0].PushInput(signal)
	if err := p.Run(); err != nil {
		return 0, err
	}
	out := ms[len(ms)-1].Output().Values()
	if len(out) == 0 {
		return 0, errors.New("no output signal")
	}
	return out[len(out)-1], nil
}

// MaxSignal runs Amplify for every ordering of phases and returns the
// highest signal along with the ordering that produced it.
func MaxSignal(prog, phases []int64, signal int64, opts ...vm.Option) (best int64, order []int64, err error) {
	first := true
	permute(slices.Clone(phases), func(a []int64) bool {
		var s int64
		s, err = Amplify(prog, a, signal, opts...)
		if err != nil {
			return false
		}
		if first || s > best {
			best, order, first = s, slices.Clone(a), false
		}
		return true
	})
	return best, order, err
}

// permute calls f with every permutation of a, generated in place by Heap's
// algorithm, until f returns false.
func permute(a []int64, f func([]int64) bool) {
	c := make([]int, len(a))
	if !f(a) {
		return
	}
	for i := 0; i < len(a); {
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			if !f(a) {
				return
			}
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
}
