package htable

// Entry describes one slot of the table. Empty slots have Occupied false,
// zero Frequency and Collisions, and an empty Key.
type Entry struct {
	Index      int
	Frequency  int
	Collisions int
	Key        string
	Occupied   bool
}

// Frequency is one (frequency, word) pair of the listing.
type Frequency struct {
	Count int    `json:"count"`
	Word  string `json:"word"`
}

// Entries returns every slot in index order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.slots))
	for i, s := range t.slots {
		out[i] = Entry{Index: i}
		if s.used {
			out[i].Frequency = s.freq
			out[i].Collisions = s.collisions
			out[i].Key = s.key
			out[i].Occupied = true
		}
	}
	return out
}

// Frequencies lists the occupied slots in slot-index order. That order comes
// from the hash and probe policy, not from insertion or the alphabet, and is
// stable for a given capacity, policy and insertion sequence.
func (t *Table) Frequencies() []Frequency {
	out := make([]Frequency, 0, t.count)
	for _, s := range t.slots {
		if s.used {
			out = append(out, Frequency{Count: s.freq, Word: s.key})
		}
	}
	return out
}
