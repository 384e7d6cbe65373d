package metadata

// Static is an in-memory Module assembled from already-decoded types. Readers
// that load a whole description up front (such as metadata dumps) return one,
// and tests use it to build call graphs by hand.
//
// Resolve looks targets up across the module itself and every referenced
// module passed to NewStatic, so cross-module calls resolve when the
// referenced module's bodies are available.
type Static struct {
	name  string
	types []*Type
	entry string
	index map[string]*Method
}

// NewStatic creates a module named name. entry is the full name of the entry
// method and may be empty. refs are modules whose methods become resolvable
// call targets.
func NewStatic(name string, types []*Type, entry string, refs ...*Static) *Static {
	s := &Static{
		name:  name,
		types: types,
		entry: entry,
		index: make(map[string]*Method),
	}
	for _, r := range refs {
		for id, m := range r.index {
			s.index[id] = m
		}
	}
	for _, t := range types {
		for _, m := range t.Methods {
			if m.Module == "" {
				m.Module = name
			}
			s.index[m.FullName] = m
		}
	}
	return s
}

// Name returns the module identity.
func (s *Static) Name() string { return s.name }

// Types returns the declared types.
func (s *Static) Types() []*Type { return s.types }

// EntryPoint returns the declared entry method.
func (s *Static) EntryPoint() (*Method, bool) {
	if s.entry == "" {
		return nil, false
	}
	m, ok := s.index[s.entry]
	if !ok || m.Module != s.name {
		return nil, false
	}
	return m, true
}

// Resolve returns the method named by ref if its body is available.
func (s *Static) Resolve(ref MethodRef) (*Method, bool) {
	m, ok := s.index[ref.FullName]
	if !ok || !m.HasBody {
		return nil, false
	}
	return m, true
}

// Close does nothing.
func (s *Static) Close() error { return nil }

// Ensure Static implements Module.
var _ Module = (*Static)(nil)
