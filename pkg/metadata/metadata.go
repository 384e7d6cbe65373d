package metadata

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/matzehuels/modelviz/pkg/errors"
)

// OpCode classifies an instruction. Only call flavours matter to modelviz;
// everything else is OpOther.
type OpCode int

const (
	OpOther OpCode = iota
	// OpCall is a direct (static) call.
	OpCall
	// OpCallVirt is a virtual or interface dispatch call.
	OpCallVirt
)

// IsCall reports whether the opcode is a call or virtual call.
func (o OpCode) IsCall() bool { return o == OpCall || o == OpCallVirt }

// String returns the opcode mnemonic.
func (o OpCode) String() string {
	switch o {
	case OpCall:
		return "call"
	case OpCallVirt:
		return "callvirt"
	default:
		return "other"
	}
}

// ParseOpCode maps a mnemonic back to an OpCode. Unknown mnemonics are OpOther.
func ParseOpCode(s string) OpCode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call":
		return OpCall
	case "callvirt":
		return OpCallVirt
	default:
		return OpOther
	}
}

// MethodRef is the operand of a call instruction.
type MethodRef struct {
	FullName string // Fully-qualified method identity
	Module   string // Identity of the module that defines the target
}

// Instruction is one entry of a method body.
type Instruction struct {
	OpCode  OpCode
	Operand *MethodRef // Non-nil only for call instructions with a method operand
}

// Method is a declared method.
type Method struct {
	Name         string
	FullName     string // Stable identity used by the call-graph visited set
	Module       string // Identity of the owning module
	HasBody      bool
	Instructions []Instruction
}

// Field is a declared field.
type Field struct {
	Name     string
	TypeName string // Fully-qualified declared type, generic syntax included
}

// Type is a declared type. Fields and Methods keep declaration order.
type Type struct {
	FullName string
	Fields   []Field
	Methods  []*Method
}

// Module is an opened compiled module.
type Module interface {
	// Name returns the module identity compared against MethodRef.Module.
	Name() string
	// Types returns the declared types in declaration order.
	Types() []*Type
	// EntryPoint returns the module's declared entry method, if any.
	EntryPoint() (*Method, bool)
	// Resolve maps a call operand to a method with a body. It returns false
	// when the target is unknown or has no body available.
	Resolve(ref MethodRef) (*Method, bool)
	// Close releases resources held by the module.
	Close() error
}

// Reader opens modules of one on-disk format.
type Reader interface {
	// Open reads the module at path.
	Open(ctx context.Context, path string) (Module, error)
	// Supports reports whether this reader handles the given path.
	Supports(path string) bool
	// Type returns the reader identifier (e.g. "dump", "go").
	Type() string
}

// Detect finds a reader that supports the given path.
func Detect(path string, readers ...Reader) (Reader, error) {
	for _, r := range readers {
		if r.Supports(path) {
			return r, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "no metadata reader for %s", filepath.Base(path))
}

// Open detects a reader for path and opens the module. Reader failures are
// reported as ErrCodeMetadataUnavailable.
func Open(ctx context.Context, path string, readers ...Reader) (Module, error) {
	r, err := Detect(path, readers...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadataUnavailable, err, "open %s", path)
	}
	m, err := r.Open(ctx, path)
	if err != nil {
		if errors.Is(err, errors.ErrCodeMetadataUnavailable) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeMetadataUnavailable, err, "read %s module %s", r.Type(), path)
	}
	return m, nil
}

// FindMethod looks up a method by full name, falling back to a unique match
// on "Type.Method" or the bare method name.
func FindMethod(m Module, name string) (*Method, bool) {
	var byShort []*Method
	for _, t := range m.Types() {
		for _, meth := range t.Methods {
			if meth.FullName == name {
				return meth, true
			}
			if meth.Name == name || t.FullName+"."+meth.Name == name || SimpleTypeName(t.FullName)+"."+meth.Name == name {
				byShort = append(byShort, meth)
			}
		}
	}
	if len(byShort) == 1 {
		return byShort[0], true
	}
	return nil, false
}

// Methods returns every method of the module in declaration order.
func Methods(m Module) []*Method {
	var out []*Method
	for _, t := range m.Types() {
		out = append(out, t.Methods...)
	}
	return out
}

// SimpleTypeName returns the last dot-separated segment of a type name, or
// the name itself when it has no dot or ends with one.
func SimpleTypeName(name string) string {
	i := strings.LastIndex(name, ".")
	if i != -1 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}
