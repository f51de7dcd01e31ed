package dex

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Endianness is the byte order a file was written in.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

// ByteOrder returns the matching encoding/binary order.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e Endianness) String() string {
	if e == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

func (e Endianness) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Signature is the SHA-1 of the file past the signature field.
type Signature [20]byte

func (s Signature) String() string { return hex.EncodeToString(s[:]) }

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Section is a (size, offset) pair from the header.
type Section struct {
	Size   uint32 `json:"size"`
	Offset uint32 `json:"offset"`
}

// Header is the decoded header_item.
type Header struct {
	Version    int        `json:"version"`
	Checksum   uint32     `json:"checksum"`
	Signature  Signature  `json:"signature"`
	FileSize   uint32     `json:"file_size"`
	HeaderSize uint32     `json:"header_size"`
	EndianTag  uint32     `json:"endian_tag"`
	Endianness Endianness `json:"endianness"`
	Link       Section    `json:"link"`
	MapOff     uint32     `json:"map_off"`
	StringIDs  Section    `json:"string_ids"`
	TypeIDs    Section    `json:"type_ids"`
	ProtoIDs   Section    `json:"proto_ids"`
	FieldIDs   Section    `json:"field_ids"`
	MethodIDs  Section    `json:"method_ids"`
	ClassDefs  Section    `json:"class_defs"`
	Data       Section    `json:"data"`
}

func (h Header) String() string {
	return fmt.Sprintf(
		"Version:     %03d\n"+
			"Checksum:    %#08x\n"+
			"Signature:   %s\n"+
			"File Size:   %d\n"+
			"Header Size: %d\n"+
			"Endianness:  %s\n"+
			"Link:        size=%d off=%#x\n"+
			"Map Off:     %#x\n"+
			"String IDs:  size=%d off=%#x\n"+
			"Type IDs:    size=%d off=%#x\n"+
			"Proto IDs:   size=%d off=%#x\n"+
			"Field IDs:   size=%d off=%#x\n"+
			"Method IDs:  size=%d off=%#x\n"+
			"Class Defs:  size=%d off=%#x\n"+
			"Data:        size=%d off=%#x",
		h.Version, h.Checksum, h.Signature, h.FileSize, h.HeaderSize, h.Endianness,
		h.Link.Size, h.Link.Offset, h.MapOff,
		h.StringIDs.Size, h.StringIDs.Offset,
		h.TypeIDs.Size, h.TypeIDs.Offset,
		h.ProtoIDs.Size, h.ProtoIDs.Offset,
		h.FieldIDs.Size, h.FieldIDs.Offset,
		h.MethodIDs.Size, h.MethodIDs.Offset,
		h.ClassDefs.Size, h.ClassDefs.Offset,
		h.Data.Size, h.Data.Offset,
	)
}

// File is a fully linked DEX file.
type File struct {
	Header   Header             `json:"header"`
	FileData FileData           `json:"-"`
	Classes  []*ClassDefinition `json:"classes"`
	MapList  []MapItem          `json:"map_list,omitempty"`
	LinkData []byte             `json:"link_data,omitempty"`
}

// FileData holds the resolved index tables. Every materialized record points
// into these tables rather than holding copies.
type FileData struct {
	Strings       []string
	Types         []string
	Prototypes    []*Prototype
	Fields        []*Field
	Methods       []*Method
	MethodHandles []*MethodHandle
	CallSites     []*CallSite
}

// Prototype is a resolved proto_id_item.
type Prototype struct {
	Shorty     string   `json:"shorty"`
	ReturnType string   `json:"return_type"`
	Parameters []string `json:"parameters,omitempty"`
}

// Descriptor returns the method descriptor, e.g. "(ILjava/lang/String;)V".
func (p *Prototype) Descriptor() string {
	s := "("
	for _, param := range p.Parameters {
		s += param
	}
	return s + ")" + p.ReturnType
}

func (p *Prototype) String() string { return p.Descriptor() }

// Field is a resolved field_id_item.
type Field struct {
	Definer string `json:"definer"`
	Type    string `json:"type"`
	Name    string `json:"name"`
}

func (f *Field) String() string {
	return fmt.Sprintf("%s->%s:%s", f.Definer, f.Name, f.Type)
}

// Method is a resolved method_id_item.
type Method struct {
	Definer   string     `json:"definer"`
	Prototype *Prototype `json:"prototype"`
	Name      string     `json:"name"`
}

func (m *Method) String() string {
	return fmt.Sprintf("%s->%s%s", m.Definer, m.Name, m.Prototype.Descriptor())
}

// MethodHandleType is the kind of a method_handle_item.
type MethodHandleType uint16

const (
	MethodHandleStaticPut MethodHandleType = iota
	MethodHandleStaticGet
	MethodHandleInstancePut
	MethodHandleInstanceGet
	MethodHandleInvokeStatic
	MethodHandleInvokeInstance
	MethodHandleInvokeConstructor
	MethodHandleInvokeDirect
	MethodHandleInvokeInterface
)

var methodHandleTypeNames = [...]string{
	"static-put",
	"static-get",
	"instance-put",
	"instance-get",
	"invoke-static",
	"invoke-instance",
	"invoke-constructor",
	"invoke-direct",
	"invoke-interface",
}

func (t MethodHandleType) String() string {
	if int(t) < len(methodHandleTypeNames) {
		return methodHandleTypeNames[t]
	}
	return fmt.Sprintf("MethodHandleType(%#x)", uint16(t))
}

func (t MethodHandleType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsFieldAccessor reports whether the handle targets a field.
func (t MethodHandleType) IsFieldAccessor() bool {
	return t <= MethodHandleInstanceGet
}

// MethodHandle is a resolved method_handle_item; exactly one of Field and
// Method is set.
type MethodHandle struct {
	Type   MethodHandleType `json:"type"`
	Field  *Field           `json:"field,omitempty"`
	Method *Method          `json:"method,omitempty"`
}

func (mh *MethodHandle) String() string {
	if mh.Field != nil {
		return fmt.Sprintf("%s %s", mh.Type, mh.Field)
	}
	return fmt.Sprintf("%s %s", mh.Type, mh.Method)
}

// CallSite is a resolved call_site_item.
type CallSite struct {
	MethodHandle      *MethodHandle  `json:"method_handle"`
	MethodName        string         `json:"method_name"`
	MethodType        *Prototype     `json:"method_type"`
	ConstantArguments []EncodedValue `json:"constant_arguments,omitempty"`
}

// ClassDefinition is a resolved class_def_item. Superclass and SourceFile are
// empty when absent.
type ClassDefinition struct {
	Type         string         `json:"type"`
	AccessFlags  AccessFlags    `json:"access_flags"`
	Superclass   string         `json:"superclass,omitempty"`
	Interfaces   []string       `json:"interfaces,omitempty"`
	SourceFile   string         `json:"source_file,omitempty"`
	Annotations  *Annotations   `json:"annotations,omitempty"`
	ClassData    *ClassData     `json:"class_data,omitempty"`
	StaticValues []EncodedValue `json:"static_values,omitempty"`
}

// ClassData is a decoded class_data_item.
type ClassData struct {
	StaticFields   []EncodedField  `json:"static_fields,omitempty"`
	InstanceFields []EncodedField  `json:"instance_fields,omitempty"`
	DirectMethods  []EncodedMethod `json:"direct_methods,omitempty"`
	VirtualMethods []EncodedMethod `json:"virtual_methods,omitempty"`
}

// EncodedField pairs a field with the flags it is declared with.
type EncodedField struct {
	Field       *Field      `json:"field"`
	AccessFlags AccessFlags `json:"access_flags"`
}

// EncodedMethod pairs a method with its flags and, unless abstract or native, its code.
type EncodedMethod struct {
	Method      *Method     `json:"method"`
	AccessFlags AccessFlags `json:"access_flags"`
	Code        *Code       `json:"code,omitempty"`
}

// Code is a decoded code_item.
type Code struct {
	RegistersSize uint16                 `json:"registers_size"`
	InsSize       uint16                 `json:"ins_size"`
	OutsSize      uint16                 `json:"outs_size"`
	DebugInfo     *DebugInfo             `json:"debug_info,omitempty"`
	Insns         []uint16               `json:"insns"`
	Tries         []TryItem              `json:"tries,omitempty"`
	Handlers      []*EncodedCatchHandler `json:"handlers,omitempty"`
}

// TryItem covers InsnCount code units starting at StartAddr.
type TryItem struct {
	StartAddr uint32               `json:"start_addr"`
	InsnCount uint16               `json:"insn_count"`
	Handler   *EncodedCatchHandler `json:"handler"`
}

// EncodedCatchHandler is one entry of encoded_catch_handler_list.
type EncodedCatchHandler struct {
	Handlers     []EncodedTypeAddrPair `json:"handlers,omitempty"`
	CatchAllAddr *uint32               `json:"catch_all_addr,omitempty"`
}

// EncodedTypeAddrPair is a typed catch clause.
type EncodedTypeAddrPair struct {
	Type string `json:"type"`
	Addr uint32 `json:"addr"`
}
