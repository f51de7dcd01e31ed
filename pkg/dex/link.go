package dex

import (
	"github.com/pkg/errors"
)

// linker resolves the raw tables into the shared object graph. Tables are
// resolved in dependency order: strings, types, prototypes, fields, methods,
// method handles, call sites and finally classes.
type linker struct {
	raw   *rawFile
	data  FileData
	codes map[uint32]*Code
	// depth is the current encoded value nesting.
	depth int
}

func link(raw *rawFile, endianness Endianness) (*File, error) {
	l := &linker{raw: raw, codes: make(map[uint32]*Code)}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"string_data", l.linkStrings},
		{"type_ids", l.linkTypes},
		{"proto_ids", l.linkPrototypes},
		{"field_ids", l.linkFields},
		{"method_ids", l.linkMethods},
		{"method_handles", l.linkMethodHandles},
		{"call_site_ids", l.linkCallSites},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return nil, errors.Wrapf(err, "failed to link %s", step.name)
		}
	}

	f := &File{
		Header:   newHeader(raw, endianness),
		FileData: l.data,
		Classes:  make([]*ClassDefinition, 0, len(raw.classDefs)),
		LinkData: raw.linkData,
	}
	if raw.mapList != nil {
		f.MapList = raw.mapList.List
	}
	for i, def := range raw.classDefs {
		class, err := l.linkClass(def)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to link class_def %d", i)
		}
		f.Classes = append(f.Classes, class)
	}
	return f, nil
}

func newHeader(raw *rawFile, endianness Endianness) Header {
	h := raw.header
	return Header{
		Version:    h.Version,
		Checksum:   h.Checksum,
		Signature:  Signature(h.Signature),
		FileSize:   h.FileSize,
		HeaderSize: h.HeaderSize,
		EndianTag:  h.EndianTag,
		Endianness: endianness,
		Link:       Section{Size: h.LinkSize, Offset: h.LinkOff},
		MapOff:     h.MapOff,
		StringIDs:  Section{Size: h.StringIDsSize, Offset: h.StringIDsOff},
		TypeIDs:    Section{Size: h.TypeIDsSize, Offset: h.TypeIDsOff},
		ProtoIDs:   Section{Size: h.ProtoIDsSize, Offset: h.ProtoIDsOff},
		FieldIDs:   Section{Size: h.FieldIDsSize, Offset: h.FieldIDsOff},
		MethodIDs:  Section{Size: h.MethodIDsSize, Offset: h.MethodIDsOff},
		ClassDefs:  Section{Size: h.ClassDefsSize, Offset: h.ClassDefsOff},
		Data:       Section{Size: h.DataSize, Offset: h.DataOff},
	}
}

func badIndex(table string, idx uint32, n int) error {
	return formatErr(ErrBadIndex, -1, "%s index %d out of range (%d entries)", table, idx, n)
}

func (l *linker) string(idx uint32) (string, error) {
	if int64(idx) >= int64(len(l.data.Strings)) {
		return "", badIndex("string", idx, len(l.data.Strings))
	}
	return l.data.Strings[idx], nil
}

func (l *linker) typ(idx uint32) (string, error) {
	if int64(idx) >= int64(len(l.data.Types)) {
		return "", badIndex("type", idx, len(l.data.Types))
	}
	return l.data.Types[idx], nil
}

func (l *linker) proto(idx uint32) (*Prototype, error) {
	if int64(idx) >= int64(len(l.data.Prototypes)) {
		return nil, badIndex("proto", idx, len(l.data.Prototypes))
	}
	return l.data.Prototypes[idx], nil
}

func (l *linker) field(idx uint32) (*Field, error) {
	if int64(idx) >= int64(len(l.data.Fields)) {
		return nil, badIndex("field", idx, len(l.data.Fields))
	}
	return l.data.Fields[idx], nil
}

func (l *linker) method(idx uint32) (*Method, error) {
	if int64(idx) >= int64(len(l.data.Methods)) {
		return nil, badIndex("method", idx, len(l.data.Methods))
	}
	return l.data.Methods[idx], nil
}

func (l *linker) methodHandle(idx uint32) (*MethodHandle, error) {
	if int64(idx) >= int64(len(l.data.MethodHandles)) {
		return nil, badIndex("method handle", idx, len(l.data.MethodHandles))
	}
	return l.data.MethodHandles[idx], nil
}

// optionalType resolves idx unless it is NoIndex.
func (l *linker) optionalType(idx uint32) (string, error) {
	if idx == NoIndex {
		return "", nil
	}
	return l.typ(idx)
}

func (l *linker) optionalString(idx uint32) (string, error) {
	if idx == NoIndex {
		return "", nil
	}
	return l.string(idx)
}

func (l *linker) linkStrings() error {
	r := &reader{data: l.raw.buf, bo: l.raw.bo}
	l.data.Strings = make([]string, len(l.raw.stringIDs))
	for i, off := range l.raw.stringIDs {
		s, err := readString(r, off)
		if err != nil {
			return errors.Wrapf(err, "string %d", i)
		}
		l.data.Strings[i] = s
	}
	return nil
}

func (l *linker) linkTypes() error {
	l.data.Types = make([]string, len(l.raw.typeIDs))
	for i, strIdx := range l.raw.typeIDs {
		s, err := l.string(strIdx)
		if err != nil {
			return errors.Wrapf(err, "type %d", i)
		}
		l.data.Types[i] = s
	}
	return nil
}

func (l *linker) typeList(off uint32) ([]string, error) {
	if off == 0 {
		return nil, nil
	}
	input, err := section(l.raw.buf, off, "type_list")
	if err != nil {
		return nil, err
	}
	tl, err := parseTypeList(input, l.raw.bo)
	if err != nil {
		return nil, errors.Wrapf(err, "type_list at %#x", off)
	}
	types := make([]string, 0, len(tl.List))
	for _, idx := range tl.List {
		t, err := l.typ(uint32(idx))
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func (l *linker) linkPrototypes() error {
	l.data.Prototypes = make([]*Prototype, len(l.raw.protoIDs))
	for i, p := range l.raw.protoIDs {
		shorty, err := l.string(p.ShortyIdx)
		if err != nil {
			return errors.Wrapf(err, "proto %d", i)
		}
		ret, err := l.typ(p.ReturnTypeIdx)
		if err != nil {
			return errors.Wrapf(err, "proto %d", i)
		}
		params, err := l.typeList(p.ParametersOff)
		if err != nil {
			return errors.Wrapf(err, "proto %d", i)
		}
		l.data.Prototypes[i] = &Prototype{Shorty: shorty, ReturnType: ret, Parameters: params}
	}
	return nil
}

func (l *linker) linkFields() error {
	l.data.Fields = make([]*Field, len(l.raw.fieldIDs))
	for i, f := range l.raw.fieldIDs {
		definer, err := l.typ(uint32(f.ClassIdx))
		if err != nil {
			return errors.Wrapf(err, "field %d", i)
		}
		typ, err := l.typ(uint32(f.TypeIdx))
		if err != nil {
			return errors.Wrapf(err, "field %d", i)
		}
		name, err := l.string(f.NameIdx)
		if err != nil {
			return errors.Wrapf(err, "field %d", i)
		}
		l.data.Fields[i] = &Field{Definer: definer, Type: typ, Name: name}
	}
	return nil
}

func (l *linker) linkMethods() error {
	l.data.Methods = make([]*Method, len(l.raw.methodIDs))
	for i, m := range l.raw.methodIDs {
		definer, err := l.typ(uint32(m.ClassIdx))
		if err != nil {
			return errors.Wrapf(err, "method %d", i)
		}
		proto, err := l.proto(uint32(m.ProtoIdx))
		if err != nil {
			return errors.Wrapf(err, "method %d", i)
		}
		name, err := l.string(m.NameIdx)
		if err != nil {
			return errors.Wrapf(err, "method %d", i)
		}
		l.data.Methods[i] = &Method{Definer: definer, Prototype: proto, Name: name}
	}
	return nil
}

func (l *linker) linkMethodHandles() error {
	l.data.MethodHandles = make([]*MethodHandle, len(l.raw.methodHandles))
	for i, mh := range l.raw.methodHandles {
		typ := MethodHandleType(mh.Type)
		if typ > MethodHandleInvokeInterface {
			return formatErr(ErrUnknownEnum, -1, "method handle %d has unknown type %#x", i, mh.Type)
		}
		h := &MethodHandle{Type: typ}
		var err error
		if typ.IsFieldAccessor() {
			h.Field, err = l.field(uint32(mh.FieldOrMethodID))
		} else {
			h.Method, err = l.method(uint32(mh.FieldOrMethodID))
		}
		if err != nil {
			return errors.Wrapf(err, "method handle %d", i)
		}
		l.data.MethodHandles[i] = h
	}
	return nil
}

// linkCallSites decodes each call_site_item: an encoded array holding the
// bootstrap method handle, the method name, the method type and any extra
// constant arguments.
func (l *linker) linkCallSites() error {
	l.data.CallSites = make([]*CallSite, len(l.raw.callSiteIDs))
	for i, off := range l.raw.callSiteIDs {
		r, err := newReader(l.raw.buf, off, l.raw.bo)
		if err != nil {
			return errors.Wrapf(err, "call site %d", i)
		}
		values, err := l.readEncodedArray(r)
		if err != nil {
			return errors.Wrapf(err, "call site %d", i)
		}
		if len(values) < 3 ||
			values[0].Type != ValueTypeMethodHandle ||
			values[1].Type != ValueTypeString ||
			values[2].Type != ValueTypeMethodType {
			return formatErr(ErrMalformed, int(off), "call site %d does not start with (method_handle, string, method_type)", i)
		}
		l.data.CallSites[i] = &CallSite{
			MethodHandle:      values[0].MethodHandle,
			MethodName:        values[1].String,
			MethodType:        values[2].Prototype,
			ConstantArguments: values[3:],
		}
	}
	return nil
}

func (l *linker) linkClass(def rawClassDef) (*ClassDefinition, error) {
	var (
		c   ClassDefinition
		err error
	)
	if c.Type, err = l.typ(def.ClassIdx); err != nil {
		return nil, err
	}
	c.AccessFlags = ParseAccessFlags(def.AccessFlags, ClassTarget)
	if c.Superclass, err = l.optionalType(def.SuperclassIdx); err != nil {
		return nil, errors.Wrapf(err, "%s superclass", c.Type)
	}
	if c.Interfaces, err = l.typeList(def.InterfacesOff); err != nil {
		return nil, errors.Wrapf(err, "%s interfaces", c.Type)
	}
	if c.SourceFile, err = l.optionalString(def.SourceFileIdx); err != nil {
		return nil, errors.Wrapf(err, "%s source file", c.Type)
	}
	if def.AnnotationsOff != 0 {
		if c.Annotations, err = l.readAnnotationsDirectory(def.AnnotationsOff); err != nil {
			return nil, errors.Wrapf(err, "%s annotations", c.Type)
		}
	}
	if def.ClassDataOff != 0 {
		if c.ClassData, err = l.readClassData(def.ClassDataOff); err != nil {
			return nil, errors.Wrapf(err, "%s class data", c.Type)
		}
	}
	if def.StaticValuesOff != 0 {
		r, err := newReader(l.raw.buf, def.StaticValuesOff, l.raw.bo)
		if err != nil {
			return nil, errors.Wrapf(err, "%s static values", c.Type)
		}
		if c.StaticValues, err = l.readEncodedArray(r); err != nil {
			return nil, errors.Wrapf(err, "%s static values", c.Type)
		}
	}
	return &c, nil
}
