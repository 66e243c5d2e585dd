// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// journal maintains maps of slot writes in a stack.
// Each level inherits key/value of levels below it, giving
// save-restore/snapshot-revert behavior for state mutations.
type journal[K comparable, V any] struct {
	src    func(K) (V, error)
	levels []map[K]V
}

// newJournal creates a journal backed by src as the data source
// for keys that have never been written.
func newJournal[K comparable, V any](src func(K) (V, error)) *journal[K, V] {
	return &journal[K, V]{
		src:    src,
		levels: []map[K]V{make(map[K]V)},
	}
}

// Depth returns the current stack depth.
func (j *journal[K, V]) Depth() int {
	return len(j.levels)
}

// Push pushes a new level on the stack and returns the depth before push.
func (j *journal[K, V]) Push() int {
	j.levels = append(j.levels, make(map[K]V))
	return len(j.levels) - 1
}

// PopTo pops levels until the stack depth reaches depth,
// reverting all writes recorded above it.
func (j *journal[K, V]) PopTo(depth int) {
	if depth < 1 {
		depth = 1
	}
	for len(j.levels) > depth {
		j.levels = j.levels[:len(j.levels)-1]
	}
}

// Get returns the value for the given key, consulting the topmost
// level that has a write for it and falling back to src.
func (j *journal[K, V]) Get(key K) (V, error) {
	for i := len(j.levels) - 1; i >= 0; i-- {
		if v, ok := j.levels[i][key]; ok {
			return v, nil
		}
	}
	return j.src(key)
}

// Put records a write at the top of the stack.
func (j *journal[K, V]) Put(key K, value V) {
	j.levels[len(j.levels)-1][key] = value
}

// Entries returns the effective set of writes, lower levels
// overridden by upper ones.
func (j *journal[K, V]) Entries() map[K]V {
	merged := make(map[K]V)
	for _, lvl := range j.levels {
		for k, v := range lvl {
			merged[k] = v
		}
	}
	return merged
}

// Reset drops all recorded writes and collapses the stack.
func (j *journal[K, V]) Reset() {
	j.levels = []map[K]V{make(map[K]V)}
}
