package dex

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueType is the low five bits of an encoded_value tag.
type ValueType uint8

const (
	ValueTypeByte         ValueType = 0x00
	ValueTypeShort        ValueType = 0x02
	ValueTypeChar         ValueType = 0x03
	ValueTypeInt          ValueType = 0x04
	ValueTypeLong         ValueType = 0x06
	ValueTypeFloat        ValueType = 0x10
	ValueTypeDouble       ValueType = 0x11
	ValueTypeMethodType   ValueType = 0x15
	ValueTypeMethodHandle ValueType = 0x16
	ValueTypeString       ValueType = 0x17
	ValueTypeType         ValueType = 0x18
	ValueTypeField        ValueType = 0x19
	ValueTypeMethod       ValueType = 0x1a
	ValueTypeEnum         ValueType = 0x1b
	ValueTypeArray        ValueType = 0x1c
	ValueTypeAnnotation   ValueType = 0x1d
	ValueTypeNull         ValueType = 0x1e
	ValueTypeBoolean      ValueType = 0x1f
)

var valueTypeNames = map[ValueType]string{
	ValueTypeByte:         "byte",
	ValueTypeShort:        "short",
	ValueTypeChar:         "char",
	ValueTypeInt:          "int",
	ValueTypeLong:         "long",
	ValueTypeFloat:        "float",
	ValueTypeDouble:       "double",
	ValueTypeMethodType:   "method_type",
	ValueTypeMethodHandle: "method_handle",
	ValueTypeString:       "string",
	ValueTypeType:         "type",
	ValueTypeField:        "field",
	ValueTypeMethod:       "method",
	ValueTypeEnum:         "enum",
	ValueTypeArray:        "array",
	ValueTypeAnnotation:   "annotation",
	ValueTypeNull:         "null",
	ValueTypeBoolean:      "boolean",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%#x)", uint8(t))
}

// maxPayload is the largest (arg+1) byte count each scalar type accepts.
var maxPayload = map[ValueType]int{
	ValueTypeByte:         1,
	ValueTypeShort:        2,
	ValueTypeChar:         2,
	ValueTypeInt:          4,
	ValueTypeLong:         8,
	ValueTypeFloat:        4,
	ValueTypeDouble:       8,
	ValueTypeMethodType:   4,
	ValueTypeMethodHandle: 4,
	ValueTypeString:       4,
	ValueTypeType:         4,
	ValueTypeField:        4,
	ValueTypeMethod:       4,
	ValueTypeEnum:         4,
}

// EncodedValue is a decoded encoded_value. Type selects which field is set:
//
//	Byte, Short, Char, Int, Long  Int
//	Float, Double                 Float
//	Boolean                       Bool
//	String, Type                  String
//	Field, Enum                   Field
//	Method                        Method
//	MethodType                    Prototype
//	MethodHandle                  MethodHandle
//	Array                         Array
//	Annotation                    Annotation
type EncodedValue struct {
	Type         ValueType
	Int          int64
	Float        float64
	Bool         bool
	String       string
	Field        *Field
	Method       *Method
	Prototype    *Prototype
	MethodHandle *MethodHandle
	Array        []EncodedValue
	Annotation   *EncodedAnnotation
}

// EncodedAnnotation is an encoded_annotation: a type and its named elements.
type EncodedAnnotation struct {
	Type     string              `json:"type"`
	Elements []AnnotationElement `json:"elements,omitempty"`
}

// AnnotationElement is one name/value pair of an annotation.
type AnnotationElement struct {
	Name  string       `json:"name"`
	Value EncodedValue `json:"value"`
}

// Value returns the payload selected by Type.
func (v EncodedValue) Value() any {
	switch v.Type {
	case ValueTypeByte, ValueTypeShort, ValueTypeInt, ValueTypeLong:
		return v.Int
	case ValueTypeChar:
		return uint16(v.Int)
	case ValueTypeFloat, ValueTypeDouble:
		return v.Float
	case ValueTypeBoolean:
		return v.Bool
	case ValueTypeString, ValueTypeType:
		return v.String
	case ValueTypeField, ValueTypeEnum:
		return v.Field
	case ValueTypeMethod:
		return v.Method
	case ValueTypeMethodType:
		return v.Prototype
	case ValueTypeMethodHandle:
		return v.MethodHandle
	case ValueTypeArray:
		return v.Array
	case ValueTypeAnnotation:
		return v.Annotation
	}
	return nil
}

func (v EncodedValue) MarshalJSON() ([]byte, error) {
	out := struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	}{Type: v.Type.String(), Value: v.Value()}
	if f := v.Float; (v.Type == ValueTypeFloat || v.Type == ValueTypeDouble) && (math.IsNaN(f) || math.IsInf(f, 0)) {
		out.Value = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return json.Marshal(out)
}

func (v EncodedValue) GoString() string { return v.Format() }

// Format renders the value the way a disassembler listing would.
func (v EncodedValue) Format() string {
	switch v.Type {
	case ValueTypeByte, ValueTypeShort, ValueTypeInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueTypeLong:
		return strconv.FormatInt(v.Int, 10) + "L"
	case ValueTypeChar:
		return strconv.QuoteRune(rune(v.Int))
	case ValueTypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 32) + "f"
	case ValueTypeDouble:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.Bool)
	case ValueTypeNull:
		return "null"
	case ValueTypeString:
		return strconv.Quote(v.String)
	case ValueTypeType:
		return v.String
	case ValueTypeField:
		return v.Field.String()
	case ValueTypeEnum:
		return ".enum " + v.Field.String()
	case ValueTypeMethod:
		return v.Method.String()
	case ValueTypeMethodType:
		return v.Prototype.String()
	case ValueTypeMethodHandle:
		return v.MethodHandle.String()
	case ValueTypeArray:
		parts := make([]string, 0, len(v.Array))
		for _, e := range v.Array {
			parts = append(parts, e.Format())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ValueTypeAnnotation:
		return v.Annotation.String()
	}
	return v.Type.String()
}

func (a *EncodedAnnotation) String() string {
	parts := make([]string, 0, len(a.Elements))
	for _, e := range a.Elements {
		parts = append(parts, e.Name+"="+e.Value.Format())
	}
	return fmt.Sprintf("@%s(%s)", a.Type, strings.Join(parts, ", "))
}

// maxValueDepth bounds array and annotation nesting in encoded values.
const maxValueDepth = 256

// readEncodedValue decodes one encoded_value at the cursor. Payload bytes are
// always little-endian.
func (l *linker) readEncodedValue(r *reader) (EncodedValue, error) {
	start := r.off
	tag, err := r.u8()
	if err != nil {
		return EncodedValue{}, err
	}
	typ := ValueType(tag & 0x1f)
	arg := int(tag >> 5)
	v := EncodedValue{Type: typ}

	switch typ {
	case ValueTypeNull, ValueTypeArray, ValueTypeAnnotation:
		if arg != 0 {
			return v, formatErr(ErrMalformed, start, "%s value with value_arg %d", typ, arg)
		}
	case ValueTypeBoolean:
		if arg > 1 {
			return v, formatErr(ErrMalformed, start, "boolean value_arg %d", arg)
		}
		v.Bool = arg == 1
		return v, nil
	}

	switch typ {
	case ValueTypeNull:
		return v, nil
	case ValueTypeArray, ValueTypeAnnotation:
		if l.depth >= maxValueDepth {
			return v, formatErr(ErrMalformed, start, "encoded values nested deeper than %d", maxValueDepth)
		}
		l.depth++
		if typ == ValueTypeArray {
			v.Array, err = l.readEncodedArray(r)
		} else {
			v.Annotation, err = l.readEncodedAnnotation(r)
		}
		l.depth--
		return v, err
	}

	limit, ok := maxPayload[typ]
	if !ok {
		return v, formatErr(ErrUnknownEnum, start, "unknown encoded value type %#02x", uint8(typ))
	}
	size := arg + 1
	if size > limit {
		return v, formatErr(ErrMalformed, start, "%s value of %d bytes (max %d)", typ, size, limit)
	}
	payload, err := r.bytes(size)
	if err != nil {
		return v, err
	}
	var raw uint64
	for i := size - 1; i >= 0; i-- {
		raw = raw<<8 | uint64(payload[i])
	}

	switch typ {
	case ValueTypeByte, ValueTypeShort, ValueTypeInt, ValueTypeLong:
		shift := uint(64 - 8*size)
		v.Int = int64(raw<<shift) >> shift
	case ValueTypeChar:
		v.Int = int64(raw)
	case ValueTypeFloat:
		v.Float = float64(math.Float32frombits(uint32(raw << uint(32-8*size))))
	case ValueTypeDouble:
		v.Float = math.Float64frombits(raw << uint(64-8*size))
	default:
		err = l.resolveValueIndex(&v, uint32(raw))
	}
	return v, err
}

func (l *linker) resolveValueIndex(v *EncodedValue, idx uint32) (err error) {
	switch v.Type {
	case ValueTypeString:
		v.String, err = l.string(idx)
	case ValueTypeType:
		v.String, err = l.typ(idx)
	case ValueTypeField, ValueTypeEnum:
		v.Field, err = l.field(idx)
	case ValueTypeMethod:
		v.Method, err = l.method(idx)
	case ValueTypeMethodType:
		v.Prototype, err = l.proto(idx)
	case ValueTypeMethodHandle:
		v.MethodHandle, err = l.methodHandle(idx)
	}
	return err
}

// readEncodedArray decodes an encoded_array: a ULEB128 count then values.
func (l *linker) readEncodedArray(r *reader) ([]EncodedValue, error) {
	size, err := r.uleb128()
	if err != nil {
		return nil, err
	}
	// every value is at least one byte
	if err := r.need(int(size)); err != nil {
		return nil, err
	}
	values := make([]EncodedValue, 0, size)
	for i := uint32(0); i < size; i++ {
		v, err := l.readEncodedValue(r)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// readEncodedAnnotation decodes an encoded_annotation.
func (l *linker) readEncodedAnnotation(r *reader) (*EncodedAnnotation, error) {
	typeIdx, err := r.uleb128()
	if err != nil {
		return nil, err
	}
	typ, err := l.typ(typeIdx)
	if err != nil {
		return nil, err
	}
	size, err := r.uleb128()
	if err != nil {
		return nil, err
	}
	if err := r.need(2 * int(size)); err != nil {
		return nil, err
	}
	a := &EncodedAnnotation{Type: typ}
	for i := uint32(0); i < size; i++ {
		nameIdx, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		name, err := l.string(nameIdx)
		if err != nil {
			return nil, err
		}
		v, err := l.readEncodedValue(r)
		if err != nil {
			return nil, err
		}
		a.Elements = append(a.Elements, AnnotationElement{Name: name, Value: v})
	}
	return a, nil
}
