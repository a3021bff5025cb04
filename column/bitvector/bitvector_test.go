package bitvector

import (
	"testing"

	"columnstore/column"
)

func mustAppend[T column.Value](t *testing.T, c *Column[T], vs ...T) {
	t.Helper()
	for _, v := range vs {
		if err := c.Append(v); err != nil {
			t.Fatalf("Append(%v): %v", v, err)
		}
	}
}

func assertGet[T column.Value](t *testing.T, c *Column[T], tid int, want T) {
	t.Helper()
	got, ok := c.Get(tid)
	if !ok {
		t.Fatalf("Get(%d): tid out of range", tid)
	}
	if got != want {
		t.Fatalf("Get(%d) = %v, want %v", tid, got, want)
	}
}

// assertInvariants checks B1 (exclusivity, via live bit count matching
// liveCount), B2 (no empty descriptor), and B3 (no empty byte plane).
func assertInvariants[T column.Value](t *testing.T, c *Column[T]) {
	t.Helper()

	for i := range c.distinct {
		if c.distinct[i].allZero() {
			t.Fatalf("descriptor %d (%v) is all-zero", i, c.distinct[i].value)
		}
	}

	for k := 0; k < c.byteCount; k++ {
		allZero := true
		for i := range c.distinct {
			if c.distinct[i].bits[k] != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			t.Fatalf("byte plane %d is empty across all descriptors", k)
		}
	}

	set := 0
	for p := 0; p < c.columnLength; p++ {
		owners := 0
		for i := range c.distinct {
			if c.distinct[i].test(p) {
				owners++
			}
		}
		if owners > 1 {
			t.Fatalf("bit position %d set in %d descriptors, want at most 1", p, owners)
		}
		if owners == 1 {
			set++
		}
	}
	if set != c.liveCount {
		t.Fatalf("live bit count = %d, liveCount field = %d", set, c.liveCount)
	}
}

func TestAppendAndRead(t *testing.T) {
	c := New[int64]("s1", column.INT)
	mustAppend(t, c, 1, 2, 1, 3, 1, 2)

	if c.Size() != 6 {
		t.Fatalf("Size() = %d, want 6", c.Size())
	}
	assertGet(t, c, 0, int64(1))
	assertGet(t, c, 5, int64(2))
	assertInvariants(t, c)
}

func TestPlaneCompaction(t *testing.T) {
	c := New[int64]("s5", column.INT)
	for i := int64(0); i < 16; i++ {
		mustAppend(t, c, i) // 16 distinct values
	}
	if c.byteCount != 2 || c.columnLength != 16 {
		t.Fatalf("byteCount=%d columnLength=%d, want 2,16", c.byteCount, c.columnLength)
	}

	// remove original TIDs 0..7, descending order so shifting TIDs never
	// invalidates a position still to be removed
	if err := c.RemovePositions(column.Positions{7, 6, 5, 4, 3, 2, 1, 0}); err != nil {
		t.Fatalf("RemovePositions: %v", err)
	}

	if c.byteCount != 1 {
		t.Fatalf("byteCount = %d, want 1 after plane compaction", c.byteCount)
	}
	if c.columnLength != 8 {
		t.Fatalf("columnLength = %d, want 8 after plane compaction", c.columnLength)
	}
	if c.Size() != 8 {
		t.Fatalf("Size() = %d, want 8", c.Size())
	}
	assertGet(t, c, 0, int64(8)) // original TID 8's value
	assertInvariants(t, c)
}

func TestUpdateMovesDescriptorAndCompacts(t *testing.T) {
	c := New[string]("s2", column.VARCHAR)
	mustAppend(t, c, "A", "B", "C")

	if err := c.Update(1, "A"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertInvariants(t, c)
	assertGet(t, c, 0, "A")
	assertGet(t, c, 1, "A")
	assertGet(t, c, 2, "C")

	for i := range c.distinct {
		if c.distinct[i].value == "B" {
			t.Fatalf("descriptor for orphaned value B still present: %+v", c.distinct[i])
		}
	}
}

func TestRemoveTombstonesThenResolvesLiveBitsOnly(t *testing.T) {
	c := New[int64]("s2b", column.INT)
	mustAppend(t, c, 1, 2, 3)

	if err := c.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assertInvariants(t, c)
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}
	assertGet(t, c, 0, int64(2))
	assertGet(t, c, 1, int64(3))
}

func TestRemovePositionsRequiresDescending(t *testing.T) {
	c := New[int64]("s6", column.INT)
	mustAppend(t, c, 1, 2, 3, 4)

	if err := c.RemovePositions(column.Positions{0, 1}); err != column.ErrUnsortedTIDs {
		t.Fatalf("RemovePositions ascending: err = %v, want ErrUnsortedTIDs", err)
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	c := New[int64]("rt", column.INT)
	for i := int64(0); i < 10; i++ {
		mustAppend(t, c, i%3)
	}
	if err := c.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if err := c.Store(dir); err != nil {
		t.Fatalf("Store: %v", err)
	}

	loaded := New[int64]("rt", column.INT)
	if err := loaded.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Size() != c.Size() {
		t.Fatalf("loaded Size() = %d, want %d", loaded.Size(), c.Size())
	}
	for tid := 0; tid < c.Size(); tid++ {
		want, _ := c.Get(tid)
		got, ok := loaded.Get(tid)
		if !ok || got != want {
			t.Fatalf("Get(%d) = %v, want %v", tid, got, want)
		}
	}
}
