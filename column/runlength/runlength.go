// Package runlength implements the run-length-encoded column: an ordered
// sequence of maximal (count, value) runs.
package runlength

import (
	"bytes"
	"fmt"
	"io"

	"columnstore/column"
	"columnstore/logger"
	"columnstore/store"
)

type run[T column.Value] struct {
	count int
	value T
}

// Column is a run-length-encoded positional column over element type T.
//
// Invariant R1: no two adjacent runs share the same value.
// Invariant R2: cachedSize equals the sum of count over all runs.
type Column[T column.Value] struct {
	name       string
	elemType   column.ElementType
	runs       []run[T]
	cachedSize int
	scratch    T
}

// New returns an empty run-length column named name holding elements of elemType.
func New[T column.Value](name string, elemType column.ElementType) *Column[T] {
	return &Column[T]{name: name, elemType: elemType}
}

func (c *Column[T]) Name() string { return c.name }
func (c *Column[T]) ElementType() column.ElementType { return c.elemType }
func (c *Column[T]) Size() int { return c.cachedSize }

// Append extends the last run if v matches its value, else starts a new run.
func (c *Column[T]) Append(v T) error {
	if n := len(c.runs); n > 0 && c.runs[n-1].value == v {
		c.runs[n-1].count++
	} else {
		c.runs = append(c.runs, run[T]{count: 1, value: v})
	}
	c.cachedSize++
	return nil
}

// AppendAny delegates to Append after validating v's dynamic type.
func (c *Column[T]) AppendAny(v column.Any) error {
	t, err := column.CastAny[T](c.elemType, v)
	if err != nil {
		return err
	}
	return c.Append(t)
}

// AppendRange appends every element of values in order, stopping on the
// first failure. An empty range is itself a failure.
func (c *Column[T]) AppendRange(values []T) error {
	if len(values) == 0 {
		return column.ErrEmptyRange
	}
	for _, v := range values {
		if err := c.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// locate returns the index of the run containing tid, and the cumulative
// count of all runs before it.
func (c *Column[T]) locate(tid int) (runIdx, cumBefore int) {
	cum := 0
	for i, r := range c.runs {
		if tid < cum+r.count {
			return i, cum
		}
		cum += r.count
	}
	return -1, cum
}

// Get returns the value at tid and whether tid was in range.
func (c *Column[T]) Get(tid int) (T, bool) {
	var zero T
	if tid < 0 || tid >= c.cachedSize {
		return zero, false
	}
	i, _ := c.locate(tid)
	return c.runs[i].value, true
}

// expand flattens runs[lo:hi+1] into one value-per-element slice.
func expand[T column.Value](runs []run[T]) []T {
	out := make([]T, 0, len(runs)*2)
	for _, r := range runs {
		for i := 0; i < r.count; i++ {
			out = append(out, r.value)
		}
	}
	return out
}

// recompress groups consecutive equal elements of flat into maximal runs.
func recompress[T column.Value](flat []T) []run[T] {
	out := make([]run[T], 0, len(flat))
	for _, v := range flat {
		if n := len(out); n > 0 && out[n-1].value == v {
			out[n-1].count++
		} else {
			out = append(out, run[T]{count: 1, value: v})
		}
	}
	return out
}

// Update overwrites the value at tid by materializing the run containing it
// plus its immediate neighbors into a flat slice, rewriting the element,
// and recompressing — this is the only way a single update can both split
// a run (the new value differs from its neighbors) and merge into a
// neighbor (the new value matches an adjacent run).
func (c *Column[T]) Update(tid int, v T) error {
	if tid < 0 || tid >= c.cachedSize {
		return column.ErrOutOfRange
	}

	i, cumBefore := c.locate(tid)
	lo := i
	if i > 0 {
		lo = i - 1
	}
	hi := i
	if i+1 < len(c.runs) {
		hi = i + 1
	}

	windowStart := cumBefore
	if lo < i {
		windowStart -= c.runs[lo].count
	}
	offset := tid - windowStart

	flat := expand(c.runs[lo : hi+1])
	flat[offset] = v
	replacement := recompress(flat)

	c.runs = append(c.runs[:lo], append(replacement, c.runs[hi+1:]...)...)
	return nil
}

// UpdateAny delegates to Update after validating v's dynamic type.
func (c *Column[T]) UpdateAny(tid int, v column.Any) error {
	t, err := column.CastAny[T](c.elemType, v)
	if err != nil {
		return err
	}
	return c.Update(tid, t)
}

// UpdatePositions applies Update for each tid in order, aborting on the
// first failure.
func (c *Column[T]) UpdatePositions(tids column.Positions, v T) error {
	for _, t := range tids {
		if err := c.Update(t, v); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the row at tid. If its run's count reaches zero the run
// is excised and, per the re-merge fix (fixing the spec-acknowledged R1
// violation), its now-adjacent neighbors are merged if they share a value.
func (c *Column[T]) Remove(tid int) error {
	if tid < 0 || tid >= c.cachedSize {
		return column.ErrOutOfRange
	}

	i, _ := c.locate(tid)
	c.runs[i].count--
	c.cachedSize--

	if c.runs[i].count == 0 {
		c.runs = append(c.runs[:i], c.runs[i+1:]...)
		if i > 0 && i < len(c.runs) && c.runs[i-1].value == c.runs[i].value {
			c.runs[i-1].count += c.runs[i].count
			c.runs = append(c.runs[:i], c.runs[i+1:]...)
		}
	}
	return nil
}

// RemovePositions removes each tid in tids, which must be strictly
// descending.
func (c *Column[T]) RemovePositions(tids column.Positions) error {
	if !tids.Descending() {
		return column.ErrUnsortedTIDs
	}
	for _, t := range tids {
		if err := c.Remove(t); err != nil {
			return err
		}
	}
	return nil
}

// Clear resets the column to empty.
func (c *Column[T]) Clear() {
	c.runs = nil
	c.cachedSize = 0
}

// BytesUsed approximates resident bytes from the runs slice capacity.
func (c *Column[T]) BytesUsed() int {
	return cap(c.runs) * (8 + approxSize(c.scratch))
}

// Copy returns an independent deep copy of the column.
func (c *Column[T]) Copy() column.Column[T] {
	cp := &Column[T]{name: c.name, elemType: c.elemType, cachedSize: c.cachedSize}
	cp.runs = append([]run[T](nil), c.runs...)
	return cp
}

// Subscript returns a pointer to a private copy of the value at index.
func (c *Column[T]) Subscript(index int) (*T, error) {
	v, ok := c.Get(index)
	if !ok {
		return nil, column.ErrOutOfRange
	}
	c.scratch = v
	return &c.scratch, nil
}

// Print writes a human-readable representation listing every distinct
// value and the logical column.
func (c *Column[T]) Print(w io.Writer) {
	fmt.Fprintf(w, "runlength column %q (%s), size=%d\n", c.name, c.elemType, c.Size())
	fmt.Fprintf(w, "  runs:")
	for _, r := range c.runs {
		fmt.Fprintf(w, " (%d,%v)", r.count, r.value)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  logical:")
	for t := 0; t < c.Size(); t++ {
		v, _ := c.Get(t)
		fmt.Fprintf(w, " %v", v)
	}
	fmt.Fprintln(w)
}

// Store persists the column under <dir>/<name> via a FileBackend.
func (c *Column[T]) Store(dir string) error {
	payload, err := c.marshal()
	if err != nil {
		return fmt.Errorf("runlength: %w", err)
	}
	backend := store.NewFileBackend(nil)
	logger.Debug("runlength %q: storing %d bytes under %s", c.name, len(payload), dir)
	return backend.Store(dir, c.name, payload)
}

// Load restores the column's state from <dir>/<name>.
func (c *Column[T]) Load(dir string) error {
	backend := store.NewFileBackend(nil)
	payload, err := backend.Load(dir, c.name)
	if err != nil {
		return fmt.Errorf("runlength: %w", err)
	}
	return c.unmarshal(payload)
}

func (c *Column[T]) marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := store.WriteUint32(&buf, uint32(len(c.runs))); err != nil {
		return nil, err
	}
	for _, r := range c.runs {
		if err := store.WriteUint32(&buf, uint32(r.count)); err != nil {
			return nil, err
		}
		if err := writeValue(&buf, c.elemType, r.value); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (c *Column[T]) unmarshal(payload []byte) error {
	r := bytes.NewReader(payload)

	runCount, err := store.ReadUint32(r)
	if err != nil {
		return err
	}
	runs := make([]run[T], runCount)
	size := 0
	for i := range runs {
		count, err := store.ReadUint32(r)
		if err != nil {
			return err
		}
		v, err := readValue[T](r, c.elemType)
		if err != nil {
			return err
		}
		runs[i] = run[T]{count: int(count), value: v}
		size += int(count)
	}

	c.runs = runs
	c.cachedSize = size
	return nil
}

func writeValue[T column.Value](buf *bytes.Buffer, elemType column.ElementType, v T) error {
	switch elemType {
	case column.INT:
		return store.WriteInt64(buf, any(v).(int64))
	case column.FLOAT:
		return store.WriteFloat64(buf, any(v).(float64))
	case column.VARCHAR:
		return store.WriteString(buf, any(v).(string))
	default:
		return fmt.Errorf("unsupported element type %s", elemType)
	}
}

func readValue[T column.Value](r *bytes.Reader, elemType column.ElementType) (T, error) {
	var zero T
	switch elemType {
	case column.INT:
		v, err := store.ReadInt64(r)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case column.FLOAT:
		v, err := store.ReadFloat64(r)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case column.VARCHAR:
		v, err := store.ReadString(r)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	default:
		return zero, fmt.Errorf("unsupported element type %s", elemType)
	}
}

func approxSize(v any) int {
	switch t := v.(type) {
	case int64:
		return 8
	case float64:
		return 8
	case string:
		return len(t) + 16
	default:
		return 8
	}
}
