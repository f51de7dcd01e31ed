package dex

import "fmt"

// MapItemType is the type code of a map_list entry.
type MapItemType uint16

const (
	HeaderItem               MapItemType = 0x0000
	StringIDItem             MapItemType = 0x0001
	TypeIDItem               MapItemType = 0x0002
	ProtoIDItem              MapItemType = 0x0003
	FieldIDItem              MapItemType = 0x0004
	MethodIDItem             MapItemType = 0x0005
	ClassDefItem             MapItemType = 0x0006
	CallSiteIDItem           MapItemType = 0x0007
	MethodHandleItem         MapItemType = 0x0008
	MapList                  MapItemType = 0x1000
	TypeList                 MapItemType = 0x1001
	AnnotationSetRefList     MapItemType = 0x1002
	AnnotationSetItem        MapItemType = 0x1003
	ClassDataItem            MapItemType = 0x2000
	CodeItem                 MapItemType = 0x2001
	StringDataItem           MapItemType = 0x2002
	DebugInfoItem            MapItemType = 0x2003
	AnnotationItemType       MapItemType = 0x2004
	EncodedArrayItem         MapItemType = 0x2005
	AnnotationsDirectoryItem MapItemType = 0x2006
	HiddenAPIClassDataItem   MapItemType = 0xF000
)

var mapItemTypeNames = map[MapItemType]string{
	HeaderItem:               "header_item",
	StringIDItem:             "string_id_item",
	TypeIDItem:               "type_id_item",
	ProtoIDItem:              "proto_id_item",
	FieldIDItem:              "field_id_item",
	MethodIDItem:             "method_id_item",
	ClassDefItem:             "class_def_item",
	CallSiteIDItem:           "call_site_id_item",
	MethodHandleItem:         "method_handle_item",
	MapList:                  "map_list",
	TypeList:                 "type_list",
	AnnotationSetRefList:     "annotation_set_ref_list",
	AnnotationSetItem:        "annotation_set_item",
	ClassDataItem:            "class_data_item",
	CodeItem:                 "code_item",
	StringDataItem:           "string_data_item",
	DebugInfoItem:            "debug_info_item",
	AnnotationItemType:       "annotation_item",
	EncodedArrayItem:         "encoded_array_item",
	AnnotationsDirectoryItem: "annotations_directory_item",
	HiddenAPIClassDataItem:   "hiddenapi_class_data_item",
}

func (t MapItemType) String() string {
	if name, ok := mapItemTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MapItemType(%#x)", uint16(t))
}

func (t MapItemType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// MapItem is one map_list entry.
type MapItem struct {
	Type   MapItemType `json:"type"`
	Unused uint16      `json:"-"`
	Size   uint32      `json:"size"`
	Offset uint32      `json:"offset"`
}
