// Package slots provides a thread-safe table of values keyed by
// monotonically allocated slot ids.
//
// Table is the membership structure behind census.Inventory. Ids start at 1
// and are never reused for the lifetime of a table, so a stale id can never
// alias a newer entry.
//
// # Basic Usage
//
//	t := slots.New[string]()
//	id := t.Insert(func(id uint64) string {
//	    return fmt.Sprintf("entry %d", id)
//	})
//
//	for _, e := range t.Snapshot() {
//	    fmt.Println(e.ID, e.Value) // Output: 1 entry 1
//	}
//
//	t.Remove(id)
//
// # Snapshots
//
// Snapshot copies the entries under a read lock and releases it before
// returning, so callers may Insert or Remove while walking the copy.
//
// # Sweeping
//
// Sweep removes every entry a predicate reports as dead in a single write
// critical section and returns how many were removed.
package slots
