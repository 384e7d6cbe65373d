package dump

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/modelviz/pkg/metadata"
)

// Format identifies the serialization of a dump.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var extFormats = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
}

// FormatFor returns the dump format implied by the file extension.
func FormatFor(path string) (Format, bool) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

type moduleDoc struct {
	Name       string      `json:"name" yaml:"name" toml:"name"`
	Entry      string      `json:"entry,omitempty" yaml:"entry,omitempty" toml:"entry,omitempty"`
	Types      []typeDoc   `json:"types" yaml:"types" toml:"types"`
	References []moduleDoc `json:"references,omitempty" yaml:"references,omitempty" toml:"references,omitempty"`
}

type typeDoc struct {
	Name    string      `json:"name" yaml:"name" toml:"name"`
	Fields  []fieldDoc  `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Methods []methodDoc `json:"methods,omitempty" yaml:"methods,omitempty" toml:"methods,omitempty"`
}

type fieldDoc struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type" yaml:"type" toml:"type"`
}

type methodDoc struct {
	Name         string     `json:"name" yaml:"name" toml:"name"`
	FullName     string     `json:"full_name,omitempty" yaml:"full_name,omitempty" toml:"full_name,omitempty"`
	Body         bool       `json:"body,omitempty" yaml:"body,omitempty" toml:"body,omitempty"`
	Instructions []instrDoc `json:"instructions,omitempty" yaml:"instructions,omitempty" toml:"instructions,omitempty"`
}

type instrDoc struct {
	Op     string `json:"op" yaml:"op" toml:"op"`
	Method string `json:"method,omitempty" yaml:"method,omitempty" toml:"method,omitempty"`
	Module string `json:"module,omitempty" yaml:"module,omitempty" toml:"module,omitempty"`
}

// Reader reads metadata dumps. The zero value is ready to use.
type Reader struct{}

// Type returns "dump".
func (Reader) Type() string { return "dump" }

// Supports reports whether path has a JSON, YAML or TOML extension.
func (Reader) Supports(path string) bool {
	_, ok := FormatFor(path)
	return ok
}

// Open reads and decodes the dump at path.
func (Reader) Open(ctx context.Context, path string) (metadata.Module, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, fmt.Errorf("unsupported dump extension: %s", filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Decode reads a dump of the given format from r.
func Decode(r io.Reader, format Format) (*metadata.Static, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var doc moduleDoc
	switch format {
	case FormatJSON:
		err = json.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unknown dump format: %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("dump has no module name")
	}
	return build(doc), nil
}

func build(doc moduleDoc) *metadata.Static {
	refs := make([]*metadata.Static, 0, len(doc.References))
	for _, r := range doc.References {
		refs = append(refs, build(r))
	}

	types := make([]*metadata.Type, 0, len(doc.Types))
	for _, td := range doc.Types {
		t := &metadata.Type{FullName: td.Name}
		for _, fd := range td.Fields {
			t.Fields = append(t.Fields, metadata.Field{Name: fd.Name, TypeName: fd.Type})
		}
		for _, md := range td.Methods {
			t.Methods = append(t.Methods, buildMethod(doc.Name, td.Name, md))
		}
		types = append(types, t)
	}
	return metadata.NewStatic(doc.Name, types, doc.Entry, refs...)
}

func buildMethod(module, typeName string, md methodDoc) *metadata.Method {
	m := &metadata.Method{
		Name:     md.Name,
		FullName: md.FullName,
		Module:   module,
		HasBody:  md.Body || len(md.Instructions) > 0,
	}
	if m.FullName == "" {
		m.FullName = typeName + "::" + md.Name
	}
	for _, in := range md.Instructions {
		ins := metadata.Instruction{OpCode: metadata.ParseOpCode(in.Op)}
		if in.Method != "" {
			ins.Operand = &metadata.MethodRef{FullName: in.Method, Module: in.Module}
		}
		m.Instructions = append(m.Instructions, ins)
	}
	return m
}

// Ensure Reader implements metadata.Reader.
var _ metadata.Reader = Reader{}
