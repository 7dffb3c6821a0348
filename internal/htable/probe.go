package htable

// hashKey is the polynomial rolling hash h = h*31 + c over the key bytes,
// wrapping at 32 bits.
func hashKey(key string) uint32 {
	var h uint32
	for i := 0; i < len(key); i++ {
		h = uint32(key[i]) + 31*h
	}
	return h
}

// probe walks the slot indices visited for one key. The stride is fixed when
// the probe is created, so insert and search always walk the same sequence.
type probe struct {
	index    int
	stride   int
	capacity int
}

func (t *Table) newProbe(key string) probe {
	h := hashKey(key)
	return probe{
		index:    int(h % uint32(t.capacity)),
		stride:   t.stepper.step(h),
		capacity: t.capacity,
	}
}

// next returns the probe advanced by one stride.
func (p probe) next() probe {
	p.index = (p.index + p.stride) % p.capacity
	return p
}
