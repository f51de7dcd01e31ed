package dex

import "encoding/binary"

const sampleString = "héllo\u0000w€rld\U0001F600"

// sampleDex builds a small but complete file: one class with fields,
// methods, code, try/catch, debug info, annotations, static values, a
// method handle and a call site.
func sampleDex(bo binary.ByteOrder) []byte {
	b := newBuilder(bo)
	b.strings = []string{
		"<init>",                 // 0
		"I",                      // 1
		"LFoo;",                  // 2
		"Ljava/lang/Object;",     // 3
		"V",                      // 4
		"VI",                     // 5
		"Foo.java",               // 6
		"count",                  // 7
		"bar",                    // 8
		"Ljava/lang/Deprecated;", // 9
		"value",                  // 10
		sampleString,             // 11
		"Ljava/lang/Exception;",  // 12
		"Ljava/lang/Runnable;",   // 13
		"x",                      // 14
		"run",                    // 15
	}
	b.types = []uint32{1, 2, 3, 4, 9, 12, 13}
	b.protos = []rawPrototype{
		{ShortyIdx: 4, ReturnTypeIdx: 3},
		{ShortyIdx: 5, ReturnTypeIdx: 3},
	}
	b.fields = []rawField{
		{ClassIdx: 1, TypeIdx: 0, NameIdx: 7},
		{ClassIdx: 1, TypeIdx: 0, NameIdx: 14},
	}
	b.methods = []rawMethod{
		{ClassIdx: 1, ProtoIdx: 0, NameIdx: 0},
		{ClassIdx: 1, ProtoIdx: 1, NameIdx: 8},
		{ClassIdx: 2, ProtoIdx: 0, NameIdx: 0},
	}
	b.handles = []rawMethodHandle{
		{Type: uint16(MethodHandleInvokeStatic), FieldOrMethodID: 1},
		{Type: uint16(MethodHandleStaticGet), FieldOrMethodID: 0},
	}
	b.callSites = make([]uint32, 1)
	b.classes = make([]rawClassDef, 1)

	b.protos[1].ParametersOff = b.put(4, cat(b.u32s(1), b.u16s(0)))
	interfaces := b.put(4, cat(b.u32s(1), b.u16s(6)))

	// method_handle 0, "run", method_type 0, int 42
	b.callSites[0] = b.put(1, []byte{0x04, 0x16, 0x00, 0x17, 15, 0x15, 0x00, 0x04, 42})

	// line 3, no parameters, prologue end, (0,+0), advance pc 3, (+0,+1), end
	debugInit := b.put(1, []byte{0x03, 0x00, 0x07, 0x0e, 0x01, 0x03, 0x0f, 0x00})
	codeInit := b.put(4, cat(
		b.u16s(1, 1, 1, 0),
		b.u32s(debugInit, 4),
		b.u16s(0x1070, 0x0002, 0x0000, 0x000e),
	))

	// line 10, parameter "x", start local v1 "x":I, end
	debugBar := b.put(1, cat([]byte{0x0a, 0x01}, uleb(15), []byte{0x03, 0x01}, uleb(15), uleb(1), []byte{0x00}))
	codeBar := b.put(4, cat(
		b.u16s(2, 2, 0, 1),
		b.u32s(debugBar, 3),
		b.u16s(0x0000, 0x0000, 0x000e),
		b.u16s(0), // padding
		b.u32s(0), b.u16s(2, 1),
		// one handler at list offset 1: Exception@2, catch-all@2
		[]byte{0x01}, sleb(-1), uleb(5), uleb(2), uleb(2),
	))

	classData := b.put(1, cat(
		uleb(1), uleb(1), uleb(1), uleb(1),
		uleb(0), uleb(0x9),
		uleb(1), uleb(0x2),
		uleb(0), uleb(0x10001), uleb(codeInit),
		uleb(1), uleb(0x1), uleb(codeBar),
	))

	// @Deprecated(value=1)
	annRuntime := b.put(1, []byte{byte(VisibilityRuntime), 4, 0})
	annBuild := b.put(1, []byte{byte(VisibilityBuild), 4, 1, 10, 0x04, 0x01})
	annSystem := b.put(1, []byte{byte(VisibilitySystem), 4, 0})
	classSet := b.put(4, b.u32s(1, annRuntime))
	fieldSet := b.put(4, b.u32s(1, annBuild))
	methodSet := b.put(4, b.u32s(1, annSystem))
	paramRefs := b.put(4, b.u32s(1, classSet))
	annotations := b.put(4, b.u32s(
		classSet, 1, 1, 1,
		0, fieldSet,
		1, methodSet,
		1, paramRefs,
	))

	// int 7, string 11
	staticValues := b.put(1, []byte{0x02, 0x04, 0x07, 0x17, 11})

	b.classes[0] = rawClassDef{
		ClassIdx:        1,
		AccessFlags:     0x11,
		SuperclassIdx:   2,
		InterfacesOff:   interfaces,
		SourceFileIdx:   6,
		AnnotationsOff:  annotations,
		ClassDataOff:    classData,
		StaticValuesOff: staticValues,
	}
	return b.build()
}
