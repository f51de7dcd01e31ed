// Package magic sniffs the file type from its leading bytes.
package magic

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

type Kind int

const (
	Unknown Kind = iota
	Dex
	Zip
)

func (k Kind) String() string {
	switch k {
	case Dex:
		return "dex"
	case Zip:
		return "zip"
	}
	return "unknown"
}

var (
	dexMagic = []byte("dex\n")
	zipMagic = []byte("PK\x03\x04")
)

// Detect returns the kind of the data in b.
func Detect(b []byte) Kind {
	switch {
	case bytes.HasPrefix(b, dexMagic):
		return Dex
	case bytes.HasPrefix(b, zipMagic):
		return Zip
	}
	return Unknown
}

// DetectFile reads the magic of filePath.
func DetectFile(filePath string) (Kind, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return Unknown, errors.Wrapf(err, "failed to open file %s", filePath)
	}
	defer f.Close()

	var magic [8]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Unknown, errors.Wrap(err, "failed to read magic")
	}
	return Detect(magic[:n]), nil
}

// IsDex returns an error describing what was found instead when filePath is
// not a DEX file.
func IsDex(filePath string) (bool, error) {
	kind, err := DetectFile(filePath)
	if err != nil {
		return false, err
	}
	switch kind {
	case Dex:
		return true, nil
	case Zip:
		return false, errors.New("zip/APK file detected (run `dex apk`)")
	}
	return false, errors.New("not a dex file")
}
