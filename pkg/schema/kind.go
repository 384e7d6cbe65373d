package schema

import "strings"

// Kind is the value kind of a column.
type Kind int

const (
	// KindOpaque marks a column whose type could not be resolved.
	KindOpaque Kind = iota
	KindObject
	KindBool
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindDecimal
	KindChar
	KindString
	KindDateTime
	KindDuration
	KindGUID
	KindBytes
)

var kindNames = [...]string{
	KindOpaque:   "opaque",
	KindObject:   "object",
	KindBool:     "bool",
	KindInt8:     "int8",
	KindUint8:    "uint8",
	KindInt16:    "int16",
	KindUint16:   "uint16",
	KindInt32:    "int32",
	KindUint32:   "uint32",
	KindInt64:    "int64",
	KindUint64:   "uint64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindDecimal:  "decimal",
	KindChar:     "char",
	KindString:   "string",
	KindDateTime: "datetime",
	KindDuration: "duration",
	KindGUID:     "guid",
	KindBytes:    "bytes",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// SQLType returns the SQLite column type used when exporting k.
func (k Kind) SQLType() string {
	switch k {
	case KindBool, KindInt8, KindUint8, KindInt16, KindUint16,
		KindInt32, KindUint32, KindInt64, KindUint64:
		return "INTEGER"
	case KindFloat32, KindFloat64:
		return "REAL"
	case KindDecimal:
		return "NUMERIC"
	case KindBytes:
		return "BLOB"
	case KindOpaque, KindObject:
		return ""
	default:
		return "TEXT"
	}
}

var known = map[string]Kind{
	// CLR
	"System.Object":         KindObject,
	"System.Boolean":        KindBool,
	"System.SByte":          KindInt8,
	"System.Byte":           KindUint8,
	"System.Int16":          KindInt16,
	"System.UInt16":         KindUint16,
	"System.Int32":          KindInt32,
	"System.UInt32":         KindUint32,
	"System.Int64":          KindInt64,
	"System.UInt64":         KindUint64,
	"System.Single":         KindFloat32,
	"System.Double":         KindFloat64,
	"System.Decimal":        KindDecimal,
	"System.Char":           KindChar,
	"System.String":         KindString,
	"System.DateTime":       KindDateTime,
	"System.DateTimeOffset": KindDateTime,
	"System.DateOnly":       KindDateTime,
	"System.TimeSpan":       KindDuration,
	"System.Guid":           KindGUID,
	"System.Byte[]":         KindBytes,

	// C# keywords
	"object":  KindObject,
	"bool":    KindBool,
	"sbyte":   KindInt8,
	"byte":    KindUint8,
	"short":   KindInt16,
	"ushort":  KindUint16,
	"int":     KindInt32,
	"uint":    KindUint32,
	"long":    KindInt64,
	"ulong":   KindUint64,
	"float":   KindFloat32,
	"double":  KindFloat64,
	"decimal": KindDecimal,
	"char":    KindChar,
	"string":  KindString,
	"byte[]":  KindBytes,

	// Go
	"any":           KindObject,
	"interface {}":  KindObject,
	"int8":          KindInt8,
	"uint8":         KindUint8,
	"int16":         KindInt16,
	"uint16":        KindUint16,
	"int32":         KindInt32,
	"rune":          KindInt32,
	"uint32":        KindUint32,
	"int64":         KindInt64,
	"uint64":        KindUint64,
	"uintptr":       KindUint64,
	"float32":       KindFloat32,
	"float64":       KindFloat64,
	"[]byte":        KindBytes,
	"[]uint8":       KindBytes,
	"time.Time":     KindDateTime,
	"time.Duration": KindDuration,
}

// Resolve maps a type name to its kind. Surrounding whitespace and a trailing
// nullable marker ("int?") are ignored. The keywords "int" and "uint" take
// their C# width.
func Resolve(typeName string) (Kind, bool) {
	name := strings.TrimSpace(typeName)
	name = strings.TrimSuffix(name, "?")
	k, ok := known[name]
	return k, ok
}
