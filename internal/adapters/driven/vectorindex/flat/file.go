package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// On-disk layout, little endian:
//
//	magic   [4]byte "MMVI"
//	version uint32
//	dims    uint32
//	count   uint64
//	count x { id int64, vector [dims]float32 }
const (
	fileMagic   = "MMVI"
	fileVersion = 1
)

// ErrBadFormat indicates a file that is not a readable index.
var ErrBadFormat = errors.New("bad vector index file")

// WriteFile writes the index to path and syncs it.
func WriteFile(path string, x *Index) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := x.encode(w); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush index file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync index file: %w", err)
	}
	return f.Close()
}

// ReadFile loads an index written by WriteFile.
func ReadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	x, err := decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read index file %s: %w", path, err)
	}
	return x, nil
}

func (x *Index) encode(w io.Writer) error {
	if _, err := io.WriteString(w, fileMagic); err != nil {
		return err
	}
	header := []any{uint32(fileVersion), uint32(x.dims), uint64(len(x.ids))}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	buf := make([]byte, 8+4*x.dims)
	for i, id := range x.ids {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(id))
		for j, v := range x.vectors[i*x.dims : (i+1)*x.dims] {
			binary.LittleEndian.PutUint32(buf[8+4*j:], math.Float32bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func decode(r io.Reader) (*Index, error) {
	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if string(magic) != fileMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadFormat, magic)
	}

	var version, dims uint32
	var count uint64
	for _, v := range []any{&version, &dims, &count} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("%w: header: %v", ErrBadFormat, err)
		}
	}
	if version != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, version)
	}
	if count > 0 && dims == 0 {
		return nil, fmt.Errorf("%w: %d records with zero dimensions", ErrBadFormat, count)
	}

	x := New(int(dims))
	buf := make([]byte, 8+4*int(dims))
	vec := make([]float32, dims)
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrBadFormat, i, err)
		}
		id := int64(binary.LittleEndian.Uint64(buf[0:8]))
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[8+4*j:]))
		}
		if err := x.Add(id, vec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrBadFormat, i, err)
		}
	}
	return x, nil
}
