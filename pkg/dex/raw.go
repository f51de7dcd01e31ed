package dex

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the size of header_item (0x70 bytes).
	HeaderSize = 0x70
	// NoIndex marks an absent index.
	NoIndex = 0xffffffff
	// endianTagOffset is where the endian_tag lives inside the header.
	endianTagOffset = 40
	// classDefItemSize is the on-disk size of class_def_item.
	classDefItemSize = 32
	// versionWithPools is the first version carrying call_site_ids and method_handles.
	versionWithPools = 38
)

var (
	fileMagic             = [4]byte{0x64, 0x65, 0x78, 0x0a} // "dex\n"
	endianConstant        = [4]byte{0x12, 0x34, 0x56, 0x78}
	reverseEndianConstant = [4]byte{0x78, 0x56, 0x34, 0x12}
)

// headerItem is the on-disk layout of header_item.
type headerItem struct {
	Magic         [4]byte
	VersionDigits [4]byte
	Checksum      uint32
	Signature     [20]byte
	FileSize      uint32
	HeaderSize    uint32
	EndianTag     uint32
	LinkSize      uint32
	LinkOff       uint32
	MapOff        uint32
	StringIDsSize uint32
	StringIDsOff  uint32
	TypeIDsSize   uint32
	TypeIDsOff    uint32
	ProtoIDsSize  uint32
	ProtoIDsOff   uint32
	FieldIDsSize  uint32
	FieldIDsOff   uint32
	MethodIDsSize uint32
	MethodIDsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32
	DataSize      uint32
	DataOff       uint32
}

type rawHeader struct {
	headerItem
	Version int
}

type rawPrototype struct {
	ShortyIdx     uint32
	ReturnTypeIdx uint32
	ParametersOff uint32
}

type rawField struct {
	ClassIdx uint16
	TypeIdx  uint16
	NameIdx  uint32
}

type rawMethod struct {
	ClassIdx uint16
	ProtoIdx uint16
	NameIdx  uint32
}

type rawClassDef struct {
	ClassIdx        uint32
	AccessFlags     uint32
	SuperclassIdx   uint32
	InterfacesOff   uint32
	SourceFileIdx   uint32
	AnnotationsOff  uint32
	ClassDataOff    uint32
	StaticValuesOff uint32
}

type rawMethodHandle struct {
	Type            uint16
	Unused1         uint16
	FieldOrMethodID uint16
	Unused2         uint16
}

type rawMapList struct {
	Size uint32
	List []MapItem
}

type rawTypeList struct {
	Size uint32
	List []uint16
}

// rawFile holds the decoded index tables. Nothing in it is resolved yet.
type rawFile struct {
	header        rawHeader
	stringIDs     []uint32
	typeIDs       []uint32
	protoIDs      []rawPrototype
	fieldIDs      []rawField
	methodIDs     []rawMethod
	classDefs     []rawClassDef
	mapList       *rawMapList
	callSiteIDs   []uint32
	methodHandles []rawMethodHandle
	data          []byte
	linkData      []byte

	buf []byte
	bo  binary.ByteOrder
}

// detectEndianness inspects the endian_tag bytes.
func detectEndianness(buf []byte) (Endianness, error) {
	if len(buf) < endianTagOffset+4 {
		return 0, formatErr(ErrShortBuffer, -1, "buffer length %d is too short", len(buf))
	}
	var tag [4]byte
	copy(tag[:], buf[endianTagOffset:endianTagOffset+4])
	switch tag {
	case reverseEndianConstant:
		return LittleEndian, nil
	case endianConstant:
		return BigEndian, nil
	default:
		return 0, formatErr(ErrBadEndian, endianTagOffset, "endian tag % x", tag[:])
	}
}

func parseVersion(digits [4]byte) (int, error) {
	v := 0
	for _, c := range digits[:3] {
		if c < '0' || c > '9' {
			return 0, formatErr(ErrBadVersion, 4, "version %q", digits[:3])
		}
		v = v*10 + int(c-'0')
	}
	return v, nil
}

func parseHeader(input []byte, bo binary.ByteOrder) (rawHeader, error) {
	var h rawHeader
	if len(input) < HeaderSize {
		return h, formatErr(ErrShortBuffer, -1, "buffer length %d is too short", len(input))
	}
	if err := binary.Read(bytes.NewReader(input[:HeaderSize]), bo, &h.headerItem); err != nil {
		return h, errors.Wrap(err, "failed to read header_item")
	}
	if h.Magic != fileMagic {
		return h, formatErr(ErrBadMagic, 0, "magic % x", h.Magic[:])
	}
	v, err := parseVersion(h.VersionDigits)
	if err != nil {
		return h, err
	}
	h.Version = v
	return h, nil
}

// parseItems decodes size fixed-width records from the front of input and
// returns them with the bytes that follow.
func parseItems[T any](input []byte, size int, bo binary.ByteOrder) ([]T, []byte, error) {
	var zero T
	recSize := binary.Size(zero)
	if size < 0 || uint64(size)*uint64(recSize) > uint64(len(input)) {
		return nil, nil, formatErr(ErrOutOfBounds, -1, "%d records of %d bytes need %d bytes, %d remain",
			size, recSize, uint64(size)*uint64(recSize), len(input))
	}
	n := size * recSize
	items := make([]T, size)
	if err := binary.Read(bytes.NewReader(input[:n]), bo, items); err != nil {
		return nil, nil, err
	}
	return items, input[n:], nil
}

func parseU32List(input []byte, size int, bo binary.ByteOrder) ([]uint32, []byte, error) {
	return parseItems[uint32](input, size, bo)
}

func parseStringIDItems(input []byte, size int, bo binary.ByteOrder) ([]uint32, []byte, error) {
	return parseU32List(input, size, bo)
}

func parseProtoIDItems(input []byte, size int, bo binary.ByteOrder) ([]rawPrototype, []byte, error) {
	return parseItems[rawPrototype](input, size, bo)
}

func parseFieldIDItems(input []byte, size int, bo binary.ByteOrder) ([]rawField, []byte, error) {
	return parseItems[rawField](input, size, bo)
}

func parseMethodIDItems(input []byte, size int, bo binary.ByteOrder) ([]rawMethod, []byte, error) {
	return parseItems[rawMethod](input, size, bo)
}

func parseClassDefItems(input []byte, size int, bo binary.ByteOrder) ([]rawClassDef, []byte, error) {
	return parseItems[rawClassDef](input, size, bo)
}

func parseMethodHandleItems(input []byte, size int, bo binary.ByteOrder) ([]rawMethodHandle, []byte, error) {
	return parseItems[rawMethodHandle](input, size, bo)
}

func parseMapList(input []byte, bo binary.ByteOrder) (*rawMapList, []byte, error) {
	if len(input) < 4 {
		return nil, nil, formatErr(ErrOutOfBounds, -1, "map_list size needs 4 bytes, %d remain", len(input))
	}
	ml := &rawMapList{Size: bo.Uint32(input)}
	list, rest, err := parseItems[MapItem](input[4:], int(ml.Size), bo)
	if err != nil {
		return nil, nil, err
	}
	for _, item := range list {
		if _, ok := mapItemTypeNames[item.Type]; !ok {
			return nil, nil, formatErr(ErrUnknownEnum, -1, "no type code found for map list item %#x", uint16(item.Type))
		}
	}
	ml.List = list
	return ml, rest, nil
}

// parseTypeList decodes a type_list without consuming the input.
func parseTypeList(input []byte, bo binary.ByteOrder) (*rawTypeList, error) {
	if len(input) < 4 {
		return nil, formatErr(ErrOutOfBounds, -1, "type_list size needs 4 bytes, %d remain", len(input))
	}
	tl := &rawTypeList{Size: bo.Uint32(input)}
	list, _, err := parseItems[uint16](input[4:], int(tl.Size), bo)
	if err != nil {
		return nil, err
	}
	tl.List = list
	return tl, nil
}

func (ml *rawMapList) find(typ MapItemType) *MapItem {
	if ml == nil {
		return nil
	}
	for i := range ml.List {
		if ml.List[i].Type == typ {
			return &ml.List[i]
		}
	}
	return nil
}

func section(buf []byte, off uint32, name string) ([]byte, error) {
	if uint64(off) > uint64(len(buf)) {
		return nil, formatErr(ErrOutOfBounds, int(off), "%s offset past end of file (size %#x)", name, len(buf))
	}
	return buf[off:], nil
}

// parseRaw decodes the header and every index table. Tables are located by
// the offsets the header declares.
func parseRaw(buf []byte, bo binary.ByteOrder) (*rawFile, error) {
	h, err := parseHeader(buf, bo)
	if err != nil {
		return nil, err
	}

	raw := &rawFile{header: h, buf: buf, bo: bo}

	table := func(name string, off, size uint32, parse func([]byte, int) ([]byte, error)) ([]byte, error) {
		input, err := section(buf, off, name)
		if err != nil {
			return nil, err
		}
		rest, err := parse(input, int(size))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s at %#x", name, off)
		}
		return rest, nil
	}

	if _, err := table("string_ids", h.StringIDsOff, h.StringIDsSize, func(in []byte, n int) (rest []byte, err error) {
		raw.stringIDs, rest, err = parseStringIDItems(in, n, bo)
		return
	}); err != nil {
		return nil, err
	}
	if _, err := table("type_ids", h.TypeIDsOff, h.TypeIDsSize, func(in []byte, n int) (rest []byte, err error) {
		raw.typeIDs, rest, err = parseU32List(in, n, bo)
		return
	}); err != nil {
		return nil, err
	}
	if _, err := table("proto_ids", h.ProtoIDsOff, h.ProtoIDsSize, func(in []byte, n int) (rest []byte, err error) {
		raw.protoIDs, rest, err = parseProtoIDItems(in, n, bo)
		return
	}); err != nil {
		return nil, err
	}
	if _, err := table("field_ids", h.FieldIDsOff, h.FieldIDsSize, func(in []byte, n int) (rest []byte, err error) {
		raw.fieldIDs, rest, err = parseFieldIDItems(in, n, bo)
		return
	}); err != nil {
		return nil, err
	}
	if _, err := table("method_ids", h.MethodIDsOff, h.MethodIDsSize, func(in []byte, n int) (rest []byte, err error) {
		raw.methodIDs, rest, err = parseMethodIDItems(in, n, bo)
		return
	}); err != nil {
		return nil, err
	}
	// the pools added in version 038 are read from where class_defs ends
	remainder, err := table("class_defs", h.ClassDefsOff, h.ClassDefsSize, func(in []byte, n int) (rest []byte, err error) {
		raw.classDefs, rest, err = parseClassDefItems(in, n, bo)
		return
	})
	if err != nil {
		return nil, err
	}

	if h.MapOff != 0 {
		input, err := section(buf, h.MapOff, "map_list")
		if err != nil {
			return nil, err
		}
		if raw.mapList, _, err = parseMapList(input, bo); err != nil {
			return nil, errors.Wrapf(err, "failed to parse map_list at %#x", h.MapOff)
		}
	}

	if h.Version >= versionWithPools {
		if err := raw.parsePools(remainder); err != nil {
			return nil, err
		}
	}

	dataEnd := uint64(h.DataOff) + uint64(h.DataSize)
	if dataEnd > uint64(len(buf)) {
		return nil, formatErr(ErrOutOfBounds, int(h.DataOff), "data section of %#x bytes past end of file (size %#x)", h.DataSize, len(buf))
	}
	raw.data = buf[h.DataOff:dataEnd]
	if h.DataOff != 0 && dataEnd < uint64(len(buf)) {
		raw.linkData = buf[dataEnd:]
	}

	return raw, nil
}

// parsePools reads call_site_ids and method_handles. Their sizes are only
// recorded in the map list and they immediately follow class_defs.
func (raw *rawFile) parsePools(remainder []byte) error {
	h := raw.header
	pos := len(raw.buf) - len(remainder)
	anchored := h.ClassDefsSize > 0

	next := func(item *MapItem, name string) ([]byte, error) {
		if anchored && uint32(pos) != item.Offset {
			return nil, formatErr(ErrMalformed, pos, "%s expected at %#x after class_defs, map list says %#x", name, pos, item.Offset)
		}
		return section(raw.buf, item.Offset, name)
	}

	if item := raw.mapList.find(CallSiteIDItem); item != nil && item.Size > 0 {
		input, err := next(item, "call_site_ids")
		if err != nil {
			return err
		}
		ids, rest, err := parseU32List(input, int(item.Size), raw.bo)
		if err != nil {
			return errors.Wrapf(err, "failed to parse call_site_ids at %#x", item.Offset)
		}
		raw.callSiteIDs = ids
		pos = len(raw.buf) - len(rest)
		anchored = true
	}

	if item := raw.mapList.find(MethodHandleItem); item != nil && item.Size > 0 {
		input, err := next(item, "method_handles")
		if err != nil {
			return err
		}
		handles, _, err := parseMethodHandleItems(input, int(item.Size), raw.bo)
		if err != nil {
			return errors.Wrapf(err, "failed to parse method_handles at %#x", item.Offset)
		}
		raw.methodHandles = handles
	}

	return nil
}
