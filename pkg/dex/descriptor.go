package dex

import "strings"

var primitiveNames = map[byte]string{
	'V': "void",
	'Z': "boolean",
	'B': "byte",
	'S': "short",
	'C': "char",
	'I': "int",
	'J': "long",
	'F': "float",
	'D': "double",
}

// PrettyType converts a type descriptor into its Java source form:
// "[Ljava/lang/String;" becomes "java.lang.String[]". Descriptors it does not
// understand are returned unchanged.
func PrettyType(descriptor string) string {
	dims := 0
	for dims < len(descriptor) && descriptor[dims] == '[' {
		dims++
	}
	elem := descriptor[dims:]
	var name string
	switch {
	case len(elem) == 1 && primitiveNames[elem[0]] != "":
		name = primitiveNames[elem[0]]
	case len(elem) > 2 && elem[0] == 'L' && elem[len(elem)-1] == ';':
		name = strings.ReplaceAll(elem[1:len(elem)-1], "/", ".")
	default:
		return descriptor
	}
	return name + strings.Repeat("[]", dims)
}

// PrettyMethod renders the method as a Java declaration, for example
// "java.lang.String com.example.Foo.bar(int, java.lang.Object[])".
func (m *Method) PrettyMethod() string {
	var sb strings.Builder
	sb.WriteString(PrettyType(m.Prototype.ReturnType))
	sb.WriteByte(' ')
	sb.WriteString(PrettyType(m.Definer))
	sb.WriteByte('.')
	sb.WriteString(m.Name)
	sb.WriteByte('(')
	for i, p := range m.Prototype.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(PrettyType(p))
	}
	sb.WriteByte(')')
	return sb.String()
}

// PrettyField renders the field as "type definer.name".
func (f *Field) PrettyField() string {
	return PrettyType(f.Type) + " " + PrettyType(f.Definer) + "." + f.Name
}
