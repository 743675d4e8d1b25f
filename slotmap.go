package vkrender

// slotKey addresses a slot of a slotMap. The generation guards against a key
// outliving the value it was issued for.
type slotKey struct {
	index      uint32
	generation uint32
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// slotMap stores values in reusable slots addressed by generation checked keys.
// The zero value is ready to use and never issues the zero key.
type slotMap[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func (m *slotMap[T]) insert(v T) slotKey {
	var index uint32
	if n := len(m.free); n > 0 {
		index = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		index = uint32(len(m.slots))
		m.slots = append(m.slots, slot[T]{generation: 1})
	}
	s := &m.slots[index]
	s.value = v
	s.live = true
	m.count++
	return slotKey{index: index, generation: s.generation}
}

func (m *slotMap[T]) get(k slotKey) (T, bool) {
	if int(k.index) >= len(m.slots) {
		var zero T
		return zero, false
	}
	s := &m.slots[k.index]
	if !s.live || s.generation != k.generation {
		var zero T
		return zero, false
	}
	return s.value, true
}

// remove frees the slot of k and bumps its generation so k goes stale
func (m *slotMap[T]) remove(k slotKey) (T, bool) {
	v, ok := m.get(k)
	if !ok {
		return v, false
	}
	s := &m.slots[k.index]
	var zero T
	s.value = zero
	s.live = false
	s.generation++
	m.free = append(m.free, k.index)
	m.count--
	return v, true
}

// keys returns the keys of every live slot in index order
func (m *slotMap[T]) keys() []slotKey {
	ret := make([]slotKey, 0, m.count)
	for i := range m.slots {
		if m.slots[i].live {
			ret = append(ret, slotKey{index: uint32(i), generation: m.slots[i].generation})
		}
	}
	return ret
}

func (m *slotMap[T]) len() int {
	return m.count
}
