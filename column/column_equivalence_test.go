package column_test

import (
	"testing"

	"columnstore/column"
	"columnstore/column/bitvector"
	"columnstore/column/dictionary"
	"columnstore/column/runlength"
)

// op is one step of a recorded mutation trace, generic over element type.
type op[T column.Value] struct {
	kind string // "append", "update", "remove"
	tid  int
	val  T
}

func runTrace[T column.Value](t *testing.T, c column.Column[T], trace []op[T]) {
	t.Helper()
	for _, o := range trace {
		var err error
		switch o.kind {
		case "append":
			err = c.Append(o.val)
		case "update":
			err = c.Update(o.tid, o.val)
		case "remove":
			err = c.Remove(o.tid)
		}
		if err != nil {
			t.Fatalf("%s: %v", o.kind, err)
		}
	}
}

func assertEquivalent[T column.Value](t *testing.T, a, b column.Column[T]) {
	t.Helper()
	if a.Size() != b.Size() {
		t.Fatalf("%s size=%d, %s size=%d", a.Name(), a.Size(), b.Name(), b.Size())
	}
	for tid := 0; tid < a.Size(); tid++ {
		va, _ := a.Get(tid)
		vb, _ := b.Get(tid)
		if va != vb {
			t.Fatalf("tid %d: %s=%v, %s=%v", tid, a.Name(), va, b.Name(), vb)
		}
	}
}

func TestEquivalenceAcrossEncodings_Int(t *testing.T) {
	trace := []op[int64]{
		{kind: "append", val: 1}, {kind: "append", val: 2}, {kind: "append", val: 1},
		{kind: "append", val: 3}, {kind: "append", val: 1}, {kind: "append", val: 2},
		{kind: "update", tid: 3, val: 2},
		{kind: "remove", tid: 0},
	}
	runEquivalence(t, column.INT, trace)
}

func TestEquivalenceAcrossEncodings_Float(t *testing.T) {
	trace := []op[float64]{
		{kind: "append", val: 1}, {kind: "append", val: 1}, {kind: "append", val: 1},
		{kind: "append", val: 1}, {kind: "update", tid: 1, val: 2},
		{kind: "append", val: 2}, {kind: "remove", tid: 2},
	}
	runEquivalence(t, column.FLOAT, trace)
}

func TestEquivalenceAcrossEncodings_String(t *testing.T) {
	trace := []op[string]{
		{kind: "append", val: "A"}, {kind: "append", val: "A"}, {kind: "append", val: "B"},
		{kind: "append", val: "A"}, {kind: "append", val: "A"},
		{kind: "update", tid: 2, val: "A"},
		{kind: "append", val: "C"},
		{kind: "remove", tid: 0},
	}
	runEquivalence(t, column.VARCHAR, trace)
}

func runEquivalence[T column.Value](t *testing.T, elemType column.ElementType, trace []op[T]) {
	t.Helper()

	d := dictionary.New[T]("d", elemType)
	r := runlength.New[T]("r", elemType)
	b := bitvector.New[T]("b", elemType)

	runTrace(t, d, trace)
	runTrace(t, r, trace)
	runTrace(t, b, trace)

	assertEquivalent[T](t, d, r)
	assertEquivalent[T](t, r, b)
}
