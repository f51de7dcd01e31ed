package dex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseMethodIDItems(t *testing.T) {
	input := []byte{
		0x01, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x02, 0x00, 0x02, 0x00, 0x00, 0x00,
	}
	got, rest, err := parseMethodIDItems(input, 2, binary.LittleEndian)
	if err != nil {
		t.Fatalf("parseMethodIDItems() error = %v", err)
	}
	want := []rawMethod{
		{ClassIdx: 1, ProtoIdx: 1, NameIdx: 1},
		{ClassIdx: 2, ProtoIdx: 2, NameIdx: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseMethodIDItems() mismatch (-want +got):\n%s", diff)
	}
	if len(rest) != 0 {
		t.Errorf("got %d leftover bytes, want 0", len(rest))
	}
}

func TestParseItemsBigEndian(t *testing.T) {
	input := []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x00, 0x00, 0x03, 0xff}
	got, rest, err := parseFieldIDItems(input, 1, binary.BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]rawField{{ClassIdx: 1, TypeIdx: 2, NameIdx: 3}}, got); diff != "" {
		t.Errorf("parseFieldIDItems() mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Equal(rest, []byte{0xff}) {
		t.Errorf("rest = % x", rest)
	}
}

func TestParseItemsOutOfBounds(t *testing.T) {
	_, _, err := parseClassDefItems(make([]byte, classDefItemSize*2-1), 2, binary.LittleEndian)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("parseClassDefItems() error = %v, want ErrOutOfBounds", err)
	}
}

func TestParseMapList(t *testing.T) {
	input := []byte{
		0x02, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x05, 0x00, 0x0a, 0x00, 0x00, 0x00, 0x70, 0x00, 0x00, 0x00,
	}
	ml, rest, err := parseMapList(input, binary.LittleEndian)
	if err != nil {
		t.Fatalf("parseMapList() error = %v", err)
	}
	want := &rawMapList{
		Size: 2,
		List: []MapItem{
			{Type: HeaderItem, Unused: 0, Size: 1, Offset: 0},
			{Type: StringIDItem, Unused: 5, Size: 10, Offset: 0x70},
		},
	}
	if diff := cmp.Diff(want, ml); diff != "" {
		t.Errorf("parseMapList() mismatch (-want +got):\n%s", diff)
	}
	if len(rest) != 0 {
		t.Errorf("got %d leftover bytes", len(rest))
	}
	if item := ml.find(StringIDItem); item == nil || item.Size != 10 {
		t.Errorf("find(StringIDItem) = %+v", item)
	}
	if item := ml.find(CallSiteIDItem); item != nil {
		t.Errorf("find(CallSiteIDItem) = %+v, want nil", item)
	}
}

func TestParseMapListUnknownType(t *testing.T) {
	input := []byte{
		0x01, 0x00, 0x00, 0x00,
		0x99, 0x99, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	_, _, err := parseMapList(input, binary.LittleEndian)
	if !errors.Is(err, ErrUnknownEnum) {
		t.Errorf("parseMapList() error = %v, want ErrUnknownEnum", err)
	}
}

func TestParseUnknownMapItemType(t *testing.T) {
	b := newBuilder(binary.LittleEndian)
	b.strings = []string{"a"}
	data := b.build()
	mapOff := binary.LittleEndian.Uint32(data[52:])
	binary.LittleEndian.PutUint16(data[mapOff+4:], 0x9999)
	if _, err := Parse(data); !errors.Is(err, ErrUnknownEnum) {
		t.Errorf("Parse() error = %v, want ErrUnknownEnum", err)
	}
}

func TestParseTypeList(t *testing.T) {
	input := []byte{0x02, 0x00, 0x00, 0x00, 0x03, 0x00, 0x04, 0x00}
	tl, err := parseTypeList(input, binary.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&rawTypeList{Size: 2, List: []uint16{3, 4}}, tl); diff != "" {
		t.Errorf("parseTypeList() mismatch (-want +got):\n%s", diff)
	}
	if _, err := parseTypeList(input[:6], binary.LittleEndian); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("parseTypeList(short) error = %v, want ErrOutOfBounds", err)
	}
}

func TestDetectEndianness(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf[endianTagOffset:], reverseEndianConstant[:])
	if e, err := detectEndianness(buf); err != nil || e != LittleEndian {
		t.Errorf("detectEndianness(reverse) = %s, %v", e, err)
	}
	copy(buf[endianTagOffset:], endianConstant[:])
	if e, err := detectEndianness(buf); err != nil || e != BigEndian {
		t.Errorf("detectEndianness(constant) = %s, %v", e, err)
	}
	copy(buf[endianTagOffset:], []byte{0, 0, 0, 0})
	if _, err := detectEndianness(buf); !errors.Is(err, ErrBadEndian) {
		t.Errorf("detectEndianness(zero) error = %v, want ErrBadEndian", err)
	}
}

func TestParseHeaderEndiannessRoundTrip(t *testing.T) {
	encode := func(bo binary.ByteOrder) []byte {
		h := headerItem{
			Magic:         fileMagic,
			VersionDigits: [4]byte{'0', '3', '9', 0},
			Checksum:      0xcafebabe,
			FileSize:      0x1234,
			HeaderSize:    HeaderSize,
			EndianTag:     0x12345678,
			StringIDsSize: 3,
			StringIDsOff:  HeaderSize,
			DataSize:      0x100,
			DataOff:       0x200,
		}
		h.Signature[0] = 0xaa
		var buf bytes.Buffer
		if err := binary.Write(&buf, bo, h); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}

	le, be := encode(binary.LittleEndian), encode(binary.BigEndian)
	if !bytes.Equal(le[endianTagOffset:endianTagOffset+4], reverseEndianConstant[:]) {
		t.Fatalf("little-endian tag = % x", le[endianTagOffset:endianTagOffset+4])
	}
	var headers []rawHeader
	for _, buf := range [][]byte{le, be} {
		e, err := detectEndianness(buf)
		if err != nil {
			t.Fatal(err)
		}
		h, err := parseHeader(buf, e.ByteOrder())
		if err != nil {
			t.Fatal(err)
		}
		headers = append(headers, h)
	}
	if diff := cmp.Diff(headers[0], headers[1], cmp.AllowUnexported(rawHeader{})); diff != "" {
		t.Errorf("headers differ (-le +be):\n%s", diff)
	}
	if headers[0].Version != 39 || headers[0].Checksum != 0xcafebabe {
		t.Errorf("header = %+v", headers[0])
	}
}

func TestParsePoolsCrossCheck(t *testing.T) {
	b := newBuilder(binary.LittleEndian)
	b.strings = []string{"LFoo;"}
	b.types = []uint32{0}
	b.classes = []rawClassDef{{SuperclassIdx: NoIndex, SourceFileIdx: NoIndex}}
	b.callSites = []uint32{0}
	b.freeze()
	b.callSites[0] = b.put(1, []byte{0x00})
	data := b.build()

	mapOff := binary.LittleEndian.Uint32(data[52:])
	count := binary.LittleEndian.Uint32(data[mapOff:])
	patched := false
	for i := uint32(0); i < count; i++ {
		item := data[mapOff+4+12*i:]
		if MapItemType(binary.LittleEndian.Uint16(item)) == CallSiteIDItem {
			binary.LittleEndian.PutUint32(item[8:], binary.LittleEndian.Uint32(item[8:])+4)
			patched = true
		}
	}
	if !patched {
		t.Fatal("no call_site_id_item in map list")
	}
	if _, err := Parse(data); !errors.Is(err, ErrMalformed) {
		t.Errorf("Parse() error = %v, want ErrMalformed", err)
	}
}

func TestParsePoolsSkippedBeforeVersion38(t *testing.T) {
	b := newBuilder(binary.LittleEndian)
	b.version = "035"
	b.strings = []string{"V"}
	b.types = []uint32{0}
	b.protos = []rawPrototype{{ShortyIdx: 0, ReturnTypeIdx: 0}}
	b.methods = []rawMethod{{ClassIdx: 0, ProtoIdx: 0, NameIdx: 0}}
	b.handles = []rawMethodHandle{{Type: uint16(MethodHandleInvokeStatic)}}
	f, err := Parse(b.build())
	if err != nil {
		t.Fatal(err)
	}
	if f.Header.Version != 35 || len(f.FileData.MethodHandles) != 0 {
		t.Errorf("version %d parsed %d method handles, want none", f.Header.Version, len(f.FileData.MethodHandles))
	}
}
