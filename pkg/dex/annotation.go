package dex

import "fmt"

// Visibility is the retention of an annotation_item.
type Visibility uint8

const (
	VisibilityBuild Visibility = iota
	VisibilityRuntime
	VisibilitySystem
)

func parseVisibility(b uint8, off int) (Visibility, error) {
	if b > uint8(VisibilitySystem) {
		return 0, formatErr(ErrUnknownEnum, off, "unknown annotation visibility %#02x", b)
	}
	return Visibility(b), nil
}

func (v Visibility) String() string {
	switch v {
	case VisibilityBuild:
		return "build"
	case VisibilityRuntime:
		return "runtime"
	case VisibilitySystem:
		return "system"
	}
	return fmt.Sprintf("Visibility(%#x)", uint8(v))
}

func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// AnnotationItem is an annotation together with its visibility.
type AnnotationItem struct {
	Visibility Visibility          `json:"visibility"`
	Type       string              `json:"type"`
	Elements   []AnnotationElement `json:"elements,omitempty"`
}

func (a AnnotationItem) String() string {
	return fmt.Sprintf("%s %s", a.Visibility, (&EncodedAnnotation{Type: a.Type, Elements: a.Elements}).String())
}

// Annotations is a decoded annotations_directory_item.
type Annotations struct {
	Class      []AnnotationItem      `json:"class,omitempty"`
	Fields     []FieldAnnotation     `json:"fields,omitempty"`
	Methods    []MethodAnnotation    `json:"methods,omitempty"`
	Parameters []ParameterAnnotation `json:"parameters,omitempty"`
}

type FieldAnnotation struct {
	Field       *Field           `json:"field"`
	Annotations []AnnotationItem `json:"annotations"`
}

type MethodAnnotation struct {
	Method      *Method          `json:"method"`
	Annotations []AnnotationItem `json:"annotations"`
}

// ParameterAnnotation holds one annotation set per declared parameter.
type ParameterAnnotation struct {
	Method      *Method            `json:"method"`
	Annotations [][]AnnotationItem `json:"annotations"`
}

func (l *linker) readAnnotationsDirectory(off uint32) (*Annotations, error) {
	r, err := newReader(l.raw.buf, off, l.raw.bo)
	if err != nil {
		return nil, err
	}
	var hdr [4]uint32
	for i := range hdr {
		if hdr[i], err = r.u32(); err != nil {
			return nil, err
		}
	}
	classOff, fieldsSize, methodsSize, paramsSize := hdr[0], hdr[1], hdr[2], hdr[3]
	if err := r.need(8 * (int(fieldsSize) + int(methodsSize) + int(paramsSize))); err != nil {
		return nil, err
	}

	dir := &Annotations{}
	if classOff != 0 {
		if dir.Class, err = l.readAnnotationSet(classOff); err != nil {
			return nil, err
		}
	}
	for i := uint32(0); i < fieldsSize; i++ {
		idx, setOff, err := readPair(r)
		if err != nil {
			return nil, err
		}
		field, err := l.field(idx)
		if err != nil {
			return nil, err
		}
		set, err := l.readAnnotationSet(setOff)
		if err != nil {
			return nil, err
		}
		dir.Fields = append(dir.Fields, FieldAnnotation{Field: field, Annotations: set})
	}
	for i := uint32(0); i < methodsSize; i++ {
		idx, setOff, err := readPair(r)
		if err != nil {
			return nil, err
		}
		method, err := l.method(idx)
		if err != nil {
			return nil, err
		}
		set, err := l.readAnnotationSet(setOff)
		if err != nil {
			return nil, err
		}
		dir.Methods = append(dir.Methods, MethodAnnotation{Method: method, Annotations: set})
	}
	for i := uint32(0); i < paramsSize; i++ {
		idx, refOff, err := readPair(r)
		if err != nil {
			return nil, err
		}
		method, err := l.method(idx)
		if err != nil {
			return nil, err
		}
		sets, err := l.readAnnotationSetRefList(refOff)
		if err != nil {
			return nil, err
		}
		dir.Parameters = append(dir.Parameters, ParameterAnnotation{Method: method, Annotations: sets})
	}
	return dir, nil
}

func readPair(r *reader) (uint32, uint32, error) {
	a, err := r.u32()
	if err != nil {
		return 0, 0, err
	}
	b, err := r.u32()
	return a, b, err
}

// readAnnotationSet decodes an annotation_set_item; entries are offsets to
// annotation_items.
func (l *linker) readAnnotationSet(off uint32) ([]AnnotationItem, error) {
	r, err := newReader(l.raw.buf, off, l.raw.bo)
	if err != nil {
		return nil, err
	}
	size, err := r.u32()
	if err != nil {
		return nil, err
	}
	if err := r.need(4 * int(size)); err != nil {
		return nil, err
	}
	items := make([]AnnotationItem, 0, size)
	for i := uint32(0); i < size; i++ {
		itemOff, err := r.u32()
		if err != nil {
			return nil, err
		}
		item, err := l.readAnnotationItem(itemOff)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// readAnnotationSetRefList decodes an annotation_set_ref_list. A zero offset
// is a parameter without annotations.
func (l *linker) readAnnotationSetRefList(off uint32) ([][]AnnotationItem, error) {
	r, err := newReader(l.raw.buf, off, l.raw.bo)
	if err != nil {
		return nil, err
	}
	size, err := r.u32()
	if err != nil {
		return nil, err
	}
	if err := r.need(4 * int(size)); err != nil {
		return nil, err
	}
	sets := make([][]AnnotationItem, 0, size)
	for i := uint32(0); i < size; i++ {
		setOff, err := r.u32()
		if err != nil {
			return nil, err
		}
		if setOff == 0 {
			sets = append(sets, nil)
			continue
		}
		set, err := l.readAnnotationSet(setOff)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func (l *linker) readAnnotationItem(off uint32) (AnnotationItem, error) {
	r, err := newReader(l.raw.buf, off, l.raw.bo)
	if err != nil {
		return AnnotationItem{}, err
	}
	b, err := r.u8()
	if err != nil {
		return AnnotationItem{}, err
	}
	vis, err := parseVisibility(b, int(off))
	if err != nil {
		return AnnotationItem{}, err
	}
	a, err := l.readEncodedAnnotation(r)
	if err != nil {
		return AnnotationItem{}, err
	}
	return AnnotationItem{Visibility: vis, Type: a.Type, Elements: a.Elements}, nil
}
