// Package dictionary implements the dictionary-encoded column: a
// deduplicated value array (dict) plus a per-row index vector (code).
package dictionary

import (
	"bytes"
	"fmt"
	"io"

	"columnstore/column"
	"columnstore/logger"
	"columnstore/store"
)

// Column is a dictionary-encoded positional column over element type T.
//
// Invariant D1: every entry of code is a valid index of dict.
// Invariant D2: every entry of dict is referenced by at least one entry of
// code (no orphans). Both are restored at the end of every mutating method.
type Column[T column.Value] struct {
	name     string
	elemType column.ElementType
	dict     []T
	code     []int
	scratch  T
}

// New returns an empty dictionary column named name holding elements of elemType.
func New[T column.Value](name string, elemType column.ElementType) *Column[T] {
	return &Column[T]{name: name, elemType: elemType}
}

func (c *Column[T]) Name() string { return c.name }
func (c *Column[T]) ElementType() column.ElementType { return c.elemType }
func (c *Column[T]) Size() int { return len(c.code) }

// indexOf returns the dict position of v, or -1.
func (c *Column[T]) indexOf(v T) int {
	for i, d := range c.dict {
		if d == v {
			return i
		}
	}
	return -1
}

// refCount is a linear scan of code; no separate counter is maintained,
// matching the original's lack of a reference-count field.
func (c *Column[T]) refCount(dictIndex int) int {
	n := 0
	for _, k := range c.code {
		if k == dictIndex {
			n++
		}
	}
	return n
}

// removeDictEntry excises dict[at] and decrements every code entry greater
// than at, preserving D1 after the shift.
func (c *Column[T]) removeDictEntry(at int) {
	c.dict = append(c.dict[:at], c.dict[at+1:]...)
	for i, k := range c.code {
		if k > at {
			c.code[i] = k - 1
		}
	}
}

// Append appends v at TID = size(), O(|dict|).
func (c *Column[T]) Append(v T) error {
	if k := c.indexOf(v); k != -1 {
		c.code = append(c.code, k)
		return nil
	}
	c.dict = append(c.dict, v)
	c.code = append(c.code, len(c.dict)-1)
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
// first failure. An empty or already-exhausted range is itself a failure.
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

// Get returns the value at tid and whether tid was in range.
func (c *Column[T]) Get(tid int) (T, bool) {
	var zero T
	if tid < 0 || tid >= len(c.code) {
		return zero, false
	}
	return c.dict[c.code[tid]], true
}

// Update replaces the value at tid with v, restoring D1 and D2.
func (c *Column[T]) Update(tid int, v T) error {
	if tid < 0 || tid >= len(c.code) {
		return column.ErrOutOfRange
	}

	old := c.code[tid]
	j := c.indexOf(v)

	if j == old {
		// v is already the value at tid; nothing changes.
		return nil
	}

	if j == -1 {
		if c.refCount(old) == 1 {
			c.dict[old] = v
		} else {
			c.dict = append(c.dict, v)
			c.code[tid] = len(c.dict) - 1
		}
		return nil
	}

	orphaned := c.refCount(old) == 1
	c.code[tid] = j
	if orphaned {
		c.removeDictEntry(old)
	}
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

// Remove deletes the row at tid, shifting subsequent TIDs down.
func (c *Column[T]) Remove(tid int) error {
	if tid < 0 || tid >= len(c.code) {
		return column.ErrOutOfRange
	}

	old := c.code[tid]
	c.code = append(c.code[:tid], c.code[tid+1:]...)
	if c.refCount(old) == 0 {
		c.removeDictEntry(old)
	}
	return nil
}

// RemovePositions removes each tid in tids, which must be strictly
// descending so that excising one TID never invalidates a later one still
// to be processed.
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
	c.dict = nil
	c.code = nil
}

// BytesUsed approximates resident bytes from dict and code capacity.
func (c *Column[T]) BytesUsed() int {
	total := 0
	for _, v := range c.dict {
		total += approxSize(v)
	}
	total += cap(c.code) * 8
	return total
}

// Copy returns an independent deep copy of the column.
func (c *Column[T]) Copy() column.Column[T] {
	cp := &Column[T]{name: c.name, elemType: c.elemType}
	cp.dict = append([]T(nil), c.dict...)
	cp.code = append([]int(nil), c.code...)
	return cp
}

// Subscript returns a pointer to a private copy of the value at index.
// Writing through it never mutates the column; see column.Column.
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
	fmt.Fprintf(w, "dictionary column %q (%s), size=%d\n", c.name, c.elemType, c.Size())
	fmt.Fprintf(w, "  dict: %v\n", c.dict)
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
		return fmt.Errorf("dictionary: %w", err)
	}
	backend := store.NewFileBackend(nil)
	logger.Debug("dictionary %q: storing %d bytes under %s", c.name, len(payload), dir)
	return backend.Store(dir, c.name, payload)
}

// Load restores the column's state from <dir>/<name>.
func (c *Column[T]) Load(dir string) error {
	backend := store.NewFileBackend(nil)
	payload, err := backend.Load(dir, c.name)
	if err != nil {
		return fmt.Errorf("dictionary: %w", err)
	}
	return c.unmarshal(payload)
}

func (c *Column[T]) marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := store.WriteUint32(&buf, uint32(len(c.dict))); err != nil {
		return nil, err
	}
	for _, v := range c.dict {
		if err := writeValue(&buf, c.elemType, v); err != nil {
			return nil, err
		}
	}
	if err := store.WriteUint32(&buf, uint32(len(c.code))); err != nil {
		return nil, err
	}
	for _, k := range c.code {
		if err := store.WriteUint32(&buf, uint32(k)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (c *Column[T]) unmarshal(payload []byte) error {
	r := bytes.NewReader(payload)

	dictLen, err := store.ReadUint32(r)
	if err != nil {
		return err
	}
	dict := make([]T, dictLen)
	for i := range dict {
		v, err := readValue[T](r, c.elemType)
		if err != nil {
			return err
		}
		dict[i] = v
	}

	codeLen, err := store.ReadUint32(r)
	if err != nil {
		return err
	}
	code := make([]int, codeLen)
	for i := range code {
		k, err := store.ReadUint32(r)
		if err != nil {
			return err
		}
		code[i] = int(k)
	}

	c.dict = dict
	c.code = code
	return nil
}

// writeValue/readValue assume T is instantiated as exactly int64, float64,
// or string (matching elemType), not merely a named type sharing one of
// those underlying types; columns are always constructed with a concrete
// base type in this module.
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
