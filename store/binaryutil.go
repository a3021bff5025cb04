package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// WriteUint32 appends v to buf, little-endian.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	return binary.Write(buf, binary.LittleEndian, v)
}

// WriteInt64 appends v to buf, little-endian.
func WriteInt64(buf *bytes.Buffer, v int64) error {
	return binary.Write(buf, binary.LittleEndian, v)
}

// WriteFloat64 appends v to buf as its IEEE-754 bit pattern, little-endian.
func WriteFloat64(buf *bytes.Buffer, v float64) error {
	return binary.Write(buf, binary.LittleEndian, math.Float64bits(v))
}

// WriteString appends a uint32 length prefix followed by s's bytes.
func WriteString(buf *bytes.Buffer, s string) error {
	if err := WriteUint32(buf, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

// WriteBytes appends a uint32 length prefix followed by b.
func WriteBytes(buf *bytes.Buffer, b []byte) error {
	if err := WriteUint32(buf, uint32(len(b))); err != nil {
		return err
	}
	_, err := buf.Write(b)
	return err
}

// ReadUint32 reads a little-endian uint32 from r.
func ReadUint32(r *bytes.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// ReadInt64 reads a little-endian int64 from r.
func ReadInt64(r *bytes.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// ReadFloat64 reads a little-endian IEEE-754 float64 from r.
func ReadFloat64(r *bytes.Reader) (float64, error) {
	var bits uint64
	if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// ReadString reads a uint32-length-prefixed string from r.
func ReadString(r *bytes.Reader) (string, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return "", fmt.Errorf("store: short string read: %w", err)
	}
	return string(buf), nil
}

// ReadBytes reads a uint32-length-prefixed byte slice from r.
func ReadBytes(r *bytes.Reader) ([]byte, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return nil, fmt.Errorf("store: short bytes read: %w", err)
	}
	return buf, nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
