package runlength

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

// assertMaximalRuns checks invariant R1.
func assertMaximalRuns[T column.Value](t *testing.T, c *Column[T]) {
	t.Helper()
	for i := 1; i < len(c.runs); i++ {
		if c.runs[i-1].value == c.runs[i].value {
			t.Fatalf("adjacent runs share value %v at index %d: %+v", c.runs[i].value, i, c.runs)
		}
	}
	sum := 0
	for _, r := range c.runs {
		sum += r.count
	}
	if sum != c.cachedSize {
		t.Fatalf("sum of run counts = %d, cachedSize = %d", sum, c.cachedSize)
	}
}

func TestAppendAndRead(t *testing.T) {
	c := New[float64]("s1", column.FLOAT)
	mustAppend(t, c, 1, 2, 1, 3, 1, 2)

	if c.Size() != 6 {
		t.Fatalf("Size() = %d, want 6", c.Size())
	}
	assertGet(t, c, 0, float64(1))
	assertGet(t, c, 5, float64(2))
	assertMaximalRuns(t, c)
}

func TestUpdateSplitsRun(t *testing.T) {
	c := New[string]("s3", column.VARCHAR)
	mustAppend(t, c, "A", "A", "A", "A")

	if err := c.Update(1, "B"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertMaximalRuns(t, c)

	want := []string{"A", "B", "A", "A"}
	for tid, w := range want {
		assertGet(t, c, tid, w)
	}
	if len(c.runs) != 3 {
		t.Fatalf("runs = %+v, want 3 runs", c.runs)
	}
}

func TestUpdateMergesRuns(t *testing.T) {
	c := New[string]("s4", column.VARCHAR)
	mustAppend(t, c, "A", "A", "B", "A", "A")

	if err := c.Update(2, "A"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertMaximalRuns(t, c)

	if len(c.runs) != 1 || c.runs[0].count != 5 || c.runs[0].value != "A" {
		t.Fatalf("runs = %+v, want single run (5,A)", c.runs)
	}
}

func TestRemoveReMergesAdjacentRuns(t *testing.T) {
	c := New[string]("s5", column.VARCHAR)
	mustAppend(t, c, "A", "A", "B", "A", "A") // [(2,A),(1,B),(2,A)]

	if err := c.Remove(2); err != nil { // removes the lone B
		t.Fatalf("Remove: %v", err)
	}
	assertMaximalRuns(t, c)

	if len(c.runs) != 1 || c.runs[0].count != 4 || c.runs[0].value != "A" {
		t.Fatalf("runs = %+v, want single merged run (4,A)", c.runs)
	}
	for tid := 0; tid < 4; tid++ {
		assertGet(t, c, tid, "A")
	}
}

func TestRemovePositionsRequiresDescending(t *testing.T) {
	c := New[int64]("s6", column.INT)
	mustAppend(t, c, 1, 2, 3, 4)

	if err := c.RemovePositions(column.Positions{1, 3}); err != column.ErrUnsortedTIDs {
		t.Fatalf("RemovePositions ascending: err = %v, want ErrUnsortedTIDs", err)
	}
	if err := c.RemovePositions(column.Positions{3, 1}); err != nil {
		t.Fatalf("RemovePositions descending: %v", err)
	}
	assertMaximalRuns(t, c)
	assertGet(t, c, 0, int64(1))
	assertGet(t, c, 1, int64(3))
}

func TestOutOfRange(t *testing.T) {
	c := New[int64]("s7", column.INT)
	mustAppend(t, c, 1)

	if _, ok := c.Get(5); ok {
		t.Fatal("Get(5): want out of range")
	}
	if err := c.Update(5, 1); err != column.ErrOutOfRange {
		t.Fatalf("Update(5): err = %v, want ErrOutOfRange", err)
	}
	if err := c.Remove(5); err != column.ErrOutOfRange {
		t.Fatalf("Remove(5): err = %v, want ErrOutOfRange", err)
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	c := New[int64]("rt", column.INT)
	mustAppend(t, c, 1, 1, 1, 1, 2, 2, 3)
	if err := c.Update(1, int64(9)); err != nil {
		t.Fatalf("Update: %v", err)
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
