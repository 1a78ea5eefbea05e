package highscore

import (
	"sort"
	"sync"
)

// MaxEntries is the size of the persisted table.
const MaxEntries = 10

// NameLength is the number of letters in an entry's name.
const NameLength = 3

// Entry is a single table row.
type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Table is the ranked high-score list, highest first.
// Equal scores keep insertion order, so the earlier achiever ranks higher.
//
// Operations:
//   - Qualifies: O(1)
//   - Insert: O(n)
//   - Entries: O(n)
type Table struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
}

// NewTable creates a table holding at most limit entries, seeded with the
// given rows. Rows are sorted and truncated. Rows with a negative score or
// a name that is not NameLength letters are dropped.
func NewTable(limit int, seed []Entry) *Table {
	if limit <= 0 {
		limit = MaxEntries
	}
	t := &Table{
		entries: make([]Entry, 0, limit+1),
		limit:   limit,
	}
	for _, e := range seed {
		if e.Score < 0 || !ValidName(e.Name) {
			continue
		}
		t.entries = append(t.entries, e)
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].Score > t.entries[j].Score
	})
	if len(t.entries) > limit {
		t.entries = t.entries[:limit]
	}
	return t
}

// ValidName reports whether name is exactly NameLength ASCII letters.
func ValidName(name string) bool {
	if len(name) != NameLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// Qualifies reports whether score would enter the table: either the table
// has a free slot or the score beats the last entry.
func (t *Table) Qualifies(score int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.qualifies(score)
}

func (t *Table) qualifies(score int) bool {
	if len(t.entries) < t.limit {
		return true
	}
	return score > t.entries[len(t.entries)-1].Score
}

// Rank returns the 1-indexed position score would take, or 0 if it does
// not qualify.
func (t *Table) Rank(score int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.qualifies(score) {
		return 0
	}
	return t.position(score) + 1
}

// position is the index after every entry scoring >= score.
func (t *Table) position(score int) int {
	return sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Score < score
	})
}

// Insert places e in rank order and drops whatever falls off the end.
// Returns the 1-indexed rank, or 0 if the entry did not qualify.
func (t *Table) Insert(e Entry) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.qualifies(e.Score) {
		return 0
	}
	i := t.position(e.Score)
	t.entries = append(t.entries, Entry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = e
	if len(t.entries) > t.limit {
		t.entries = t.entries[:t.limit]
	}
	return i + 1
}

// Entries returns a copy of the rows, highest first.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Best returns the top score, or 0 for an empty table.
func (t *Table) Best() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		return 0
	}
	return t.entries[0].Score
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
