package dex

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// dexBuilder assembles synthetic DEX images. Index table counts must be set
// before the first call to put; their contents may be filled in afterwards.
type dexBuilder struct {
	bo      binary.ByteOrder
	version string

	strings   []string
	types     []uint32
	protos    []rawPrototype
	fields    []rawField
	methods   []rawMethod
	classes   []rawClassDef
	callSites []uint32
	handles   []rawMethodHandle

	noMap    bool
	linkData []byte

	frozen  bool
	dataOff uint32
	data    []byte
}

func newBuilder(bo binary.ByteOrder) *dexBuilder {
	return &dexBuilder{bo: bo, version: "038"}
}

func (b *dexBuilder) tableOffsets() (offs [8]uint32, end uint32) {
	sizes := [8]int{
		4 * len(b.strings),
		4 * len(b.types),
		12 * len(b.protos),
		8 * len(b.fields),
		8 * len(b.methods),
		classDefItemSize * len(b.classes),
		4 * len(b.callSites),
		8 * len(b.handles),
	}
	off := uint32(HeaderSize)
	for i, n := range sizes {
		offs[i] = off
		off += uint32(n)
	}
	return offs, off
}

func (b *dexBuilder) freeze() {
	if b.frozen {
		return
	}
	_, end := b.tableOffsets()
	b.dataOff = (end + 3) &^ 3
	b.frozen = true
}

// put appends p to the data section and returns its file offset.
func (b *dexBuilder) put(align int, p []byte) uint32 {
	b.freeze()
	for (int(b.dataOff)+len(b.data))%align != 0 {
		b.data = append(b.data, 0)
	}
	off := b.dataOff + uint32(len(b.data))
	b.data = append(b.data, p...)
	return off
}

func (b *dexBuilder) u16s(vs ...uint16) []byte {
	out := make([]byte, 2*len(vs))
	for i, v := range vs {
		b.bo.PutUint16(out[2*i:], v)
	}
	return out
}

func (b *dexBuilder) u32s(vs ...uint32) []byte {
	out := make([]byte, 4*len(vs))
	for i, v := range vs {
		b.bo.PutUint32(out[4*i:], v)
	}
	return out
}

func (b *dexBuilder) build() []byte {
	b.freeze()

	stringOffs := make([]uint32, len(b.strings))
	for i, s := range b.strings {
		enc, units := encodeMUTF8(s)
		stringOffs[i] = b.put(1, cat(uleb(uint32(units)), enc, []byte{0}))
	}

	offs, _ := b.tableOffsets()
	var mapOff uint32
	if !b.noMap {
		items := []MapItem{{Type: HeaderItem, Size: 1, Offset: 0}}
		add := func(typ MapItemType, n int, off uint32) {
			if n > 0 {
				items = append(items, MapItem{Type: typ, Size: uint32(n), Offset: off})
			}
		}
		add(StringIDItem, len(b.strings), offs[0])
		add(TypeIDItem, len(b.types), offs[1])
		add(ProtoIDItem, len(b.protos), offs[2])
		add(FieldIDItem, len(b.fields), offs[3])
		add(MethodIDItem, len(b.methods), offs[4])
		add(ClassDefItem, len(b.classes), offs[5])
		add(CallSiteIDItem, len(b.callSites), offs[6])
		add(MethodHandleItem, len(b.handles), offs[7])
		mapOff = b.put(4, nil)
		items = append(items, MapItem{Type: MapList, Size: 1, Offset: mapOff})
		var buf bytes.Buffer
		binary.Write(&buf, b.bo, uint32(len(items)))
		binary.Write(&buf, b.bo, items)
		b.put(4, buf.Bytes())
	}

	off := func(i, n int) uint32 {
		if n == 0 {
			return 0
		}
		return offs[i]
	}
	h := headerItem{
		Magic:         fileMagic,
		HeaderSize:    HeaderSize,
		EndianTag:     0x12345678,
		MapOff:        mapOff,
		StringIDsSize: uint32(len(b.strings)),
		StringIDsOff:  off(0, len(b.strings)),
		TypeIDsSize:   uint32(len(b.types)),
		TypeIDsOff:    off(1, len(b.types)),
		ProtoIDsSize:  uint32(len(b.protos)),
		ProtoIDsOff:   off(2, len(b.protos)),
		FieldIDsSize:  uint32(len(b.fields)),
		FieldIDsOff:   off(3, len(b.fields)),
		MethodIDsSize: uint32(len(b.methods)),
		MethodIDsOff:  off(4, len(b.methods)),
		ClassDefsSize: uint32(len(b.classes)),
		ClassDefsOff:  off(5, len(b.classes)),
		DataSize:      uint32(len(b.data)),
		DataOff:       b.dataOff,
	}
	copy(h.VersionDigits[:], b.version)
	h.FileSize = b.dataOff + uint32(len(b.data)) + uint32(len(b.linkData))
	if len(b.linkData) > 0 {
		h.LinkSize = uint32(len(b.linkData))
		h.LinkOff = b.dataOff + uint32(len(b.data))
	}

	var buf bytes.Buffer
	binary.Write(&buf, b.bo, h)
	binary.Write(&buf, b.bo, stringOffs)
	binary.Write(&buf, b.bo, b.types)
	binary.Write(&buf, b.bo, b.protos)
	binary.Write(&buf, b.bo, b.fields)
	binary.Write(&buf, b.bo, b.methods)
	binary.Write(&buf, b.bo, b.classes)
	binary.Write(&buf, b.bo, b.callSites)
	binary.Write(&buf, b.bo, b.handles)
	for uint32(buf.Len()) < b.dataOff {
		buf.WriteByte(0)
	}
	buf.Write(b.data)
	buf.Write(b.linkData)
	return buf.Bytes()
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, c)
		}
		out = append(out, c|0x80)
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(out, c)
		}
		out = append(out, c|0x80)
	}
}

func encodeMUTF8(s string) ([]byte, int) {
	var (
		out   []byte
		units int
	)
	for _, r := range s {
		cus := []rune{r}
		if r >= 0x10000 {
			r1, r2 := utf16.EncodeRune(r)
			cus = []rune{r1, r2}
		}
		for _, c := range cus {
			units++
			switch {
			case c != 0 && c < 0x80:
				out = append(out, byte(c))
			case c < 0x800:
				out = append(out, 0xc0|byte(c>>6), 0x80|byte(c&0x3f))
			default:
				out = append(out, 0xe0|byte(c>>12), 0x80|byte(c>>6&0x3f), 0x80|byte(c&0x3f))
			}
		}
	}
	return out, units
}
