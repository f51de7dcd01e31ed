// Package dex implements a parser for Dalvik Executable (DEX) files.
//
// Parse decodes the header and every index table, then links the raw
// indices into a graph of shared strings, types, prototypes, fields and
// methods. A file either parses completely or not at all.
package dex

import (
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

// Parse decodes a complete DEX image held in data. The returned File does not
// retain data.
func Parse(data []byte) (*File, error) {
	if len(data) < HeaderSize {
		return nil, formatErr(ErrShortBuffer, -1, "buffer length %d is too short, need %d", len(data), HeaderSize)
	}
	endianness, err := detectEndianness(data)
	if err != nil {
		return nil, err
	}
	raw, err := parseRaw(data, endianness.ByteOrder())
	if err != nil {
		return nil, err
	}

	f, err := link(raw, endianness)
	if err != nil {
		return nil, err
	}
	if f.LinkData != nil {
		f.LinkData = append([]byte(nil), f.LinkData...)
	}
	return f, nil
}

// Open memory maps the file at path and parses it.
func Open(path string) (*File, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer ra.Close()

	data := make([]byte, ra.Len())
	if _, err := ra.ReadAt(data, 0); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return f, nil
}

// Class returns the class with the given type descriptor.
func (f *File) Class(descriptor string) (*ClassDefinition, error) {
	for _, c := range f.Classes {
		if c.Type == descriptor {
			return c, nil
		}
	}
	return nil, errors.Errorf("class %s not found", descriptor)
}

// ClassNames returns the type descriptor of every defined class, sorted.
func (f *File) ClassNames() []string {
	names := make([]string, 0, len(f.Classes))
	for _, c := range f.Classes {
		names = append(names, c.Type)
	}
	sort.Strings(names)
	return names
}
