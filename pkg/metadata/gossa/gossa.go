// Package gossa reads compiled Go modules through go/packages and go/ssa.
//
// A Go module is loaded from its directory, every package is lowered to SSA,
// and the result is exposed as a metadata.Module:
//
//   - named struct types of the module's own packages become types, with one
//     field per struct field and their methods attached
//   - package-level functions are grouped under a type named after their
//     package path
//   - call, go and defer instructions become call instructions; interface
//     method invocations become virtual calls
//
// The module identity of a function is the path of the Go module that owns
// its package. Standard-library packages belong to the module "std". Bodies of
// dependency modules are available when their source is, so calls into them
// resolve and can be traversed; interface methods never have a body and stay
// unresolved.
package gossa

import (
	"context"
	"fmt"
	"go/types"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/matzehuels/modelviz/pkg/metadata"
)

// StdModule is the module identity of standard-library packages.
const StdModule = "std"

// LoadMode is the packages.Load mode needed to build SSA with bodies for
// dependencies.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedModule

// Reader loads Go modules from a directory containing go.mod.
type Reader struct {
	// Patterns are the package patterns to load. Defaults to "./...".
	Patterns []string
	// Tests includes test packages.
	Tests bool
}

// Type returns "go".
func (Reader) Type() string { return "go" }

// Supports reports whether path is a directory holding a go.mod file, or the
// go.mod file itself.
func (Reader) Supports(path string) bool {
	if filepath.Base(path) == "go.mod" {
		return true
	}
	info, err := os.Stat(filepath.Join(path, "go.mod"))
	return err == nil && !info.IsDir()
}

// Open loads the module at path and builds its SSA program.
func (r Reader) Open(ctx context.Context, path string) (metadata.Module, error) {
	dir := path
	if filepath.Base(path) == "go.mod" {
		dir = filepath.Dir(path)
	}

	patterns := r.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     dir,
		Tests:   r.Tests,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found in %s", dir)
	}

	var loadErrs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			loadErrs = append(loadErrs, fmt.Sprintf("%s: %s", p.PkgPath, e.Msg))
		}
	})
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("%d package errors, first: %s", len(loadErrs), loadErrs[0])
	}

	prog, _ := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()

	return build(pkgs, prog), nil
}

// ===== Module assembly =====

type builder struct {
	root     string
	moduleOf map[string]string // package path -> module path
	rootPkgs []*packages.Package
	holders  map[string]map[string]*metadata.Type // module -> holder name -> type
	order    map[string][]string                  // module -> holder names in creation order
	entry    string
}

func build(pkgs []*packages.Package, prog *ssa.Program) *metadata.Static {
	b := &builder{
		moduleOf: make(map[string]string),
		rootPkgs: pkgs,
		holders:  make(map[string]map[string]*metadata.Type),
		order:    make(map[string][]string),
	}
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		if p.Module != nil {
			b.moduleOf[p.PkgPath] = p.Module.Path
		}
	})
	for _, p := range pkgs {
		if p.Module != nil {
			b.root = p.Module.Path
			break
		}
	}
	if b.root == "" {
		b.root = pkgs[0].PkgPath
	}

	b.declareStructs()

	funcs := make([]*ssa.Function, 0)
	for fn := range ssautil.AllFunctions(prog) {
		if fn.Pkg == nil || fn.Synthetic != "" {
			continue
		}
		funcs = append(funcs, fn)
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].String() < funcs[j].String() })

	for _, fn := range funcs {
		b.addFunction(fn)
	}

	var refs []*metadata.Static
	modules := make([]string, 0, len(b.order))
	for mod := range b.order {
		if mod != b.root {
			modules = append(modules, mod)
		}
	}
	sort.Strings(modules)
	for _, mod := range modules {
		refs = append(refs, metadata.NewStatic(mod, b.typesOf(mod), ""))
	}
	return metadata.NewStatic(b.root, b.typesOf(b.root), b.entry, refs...)
}

// declareStructs creates a type for every named struct of the root packages
// so that types without methods are still listed.
func (b *builder) declareStructs() {
	for _, p := range b.rootPkgs {
		if p.Types == nil || b.module(p.PkgPath) != b.root {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || tn.IsAlias() {
				continue
			}
			st, ok := tn.Type().Underlying().(*types.Struct)
			if !ok {
				continue
			}
			t := b.holder(b.root, p.PkgPath+"."+name)
			for i := 0; i < st.NumFields(); i++ {
				f := st.Field(i)
				t.Fields = append(t.Fields, metadata.Field{
					Name:     f.Name(),
					TypeName: types.TypeString(f.Type(), nil),
				})
			}
		}
	}
}

func (b *builder) addFunction(fn *ssa.Function) {
	pkgPath := fn.Pkg.Pkg.Path()
	mod := b.module(pkgPath)

	holder := pkgPath
	if recv := fn.Signature.Recv(); recv != nil {
		if name, ok := namedType(recv.Type()); ok {
			holder = name
		}
	}

	m := &metadata.Method{
		Name:     fn.Name(),
		FullName: fn.String(),
		Module:   mod,
		HasBody:  len(fn.Blocks) > 0,
	}
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			if in, ok := b.instruction(instr); ok {
				m.Instructions = append(m.Instructions, in)
			}
		}
	}

	t := b.holder(mod, holder)
	t.Methods = append(t.Methods, m)

	if mod == b.root && fn.Pkg.Pkg.Name() == "main" && fn.Name() == "main" && fn.Signature.Recv() == nil && b.entry == "" {
		b.entry = m.FullName
	}
}

// instruction converts call-like SSA instructions. Builtins and calls through
// function values carry no resolvable target and are dropped.
func (b *builder) instruction(instr ssa.Instruction) (metadata.Instruction, bool) {
	ci, ok := instr.(ssa.CallInstruction)
	if !ok {
		return metadata.Instruction{}, false
	}
	common := ci.Common()
	if _, ok := common.Value.(*ssa.Builtin); ok {
		return metadata.Instruction{}, false
	}

	if callee := common.StaticCallee(); callee != nil {
		ref := &metadata.MethodRef{FullName: callee.String(), Module: StdModule}
		if callee.Pkg != nil {
			ref.Module = b.module(callee.Pkg.Pkg.Path())
		}
		return metadata.Instruction{OpCode: metadata.OpCall, Operand: ref}, true
	}

	if common.IsInvoke() {
		ref := &metadata.MethodRef{FullName: common.Method.FullName(), Module: StdModule}
		if pkg := common.Method.Pkg(); pkg != nil {
			ref.Module = b.module(pkg.Path())
		}
		return metadata.Instruction{OpCode: metadata.OpCallVirt, Operand: ref}, true
	}
	return metadata.Instruction{}, false
}

func (b *builder) module(pkgPath string) string {
	if mod, ok := b.moduleOf[pkgPath]; ok {
		return mod
	}
	return StdModule
}

func (b *builder) holder(mod, name string) *metadata.Type {
	byName, ok := b.holders[mod]
	if !ok {
		byName = make(map[string]*metadata.Type)
		b.holders[mod] = byName
	}
	t, ok := byName[name]
	if !ok {
		t = &metadata.Type{FullName: name}
		byName[name] = t
		b.order[mod] = append(b.order[mod], name)
	}
	return t
}

func (b *builder) typesOf(mod string) []*metadata.Type {
	names := b.order[mod]
	out := make([]*metadata.Type, 0, len(names))
	for _, name := range names {
		out = append(out, b.holders[mod][name])
	}
	return out
}

// namedType returns "<pkgpath>.<Name>" for a (pointer to a) named type.
func namedType(t types.Type) (string, bool) {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return "", false
	}
	named = named.Origin()
	return named.Obj().Pkg().Path() + "." + named.Obj().Name(), true
}

// Ensure Reader implements metadata.Reader.
var _ metadata.Reader = Reader{}
