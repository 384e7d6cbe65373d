package entity

import "strings"

// DefaultInclude is the marker a type name must contain to be an entity.
const DefaultInclude = "Models"

// DefaultExclude lists the markers that disqualify a type.
var DefaultExclude = []string{
	"Models.Repositories.Interfaces",
	"Models.Repositories.Implementations",
	"Context",
}

// Filter decides which types are entities.
type Filter struct {
	Include string
	Exclude []string
}

// DefaultFilter returns the filter with DefaultInclude and DefaultExclude.
func DefaultFilter() Filter {
	return Filter{
		Include: DefaultInclude,
		Exclude: append([]string(nil), DefaultExclude...),
	}
}

// Matches reports whether a type with the given fully-qualified name passes
// the filter. An empty Include matches every name.
func (f Filter) Matches(fullName string) bool {
	if !strings.Contains(fullName, f.Include) {
		return false
	}
	for _, ex := range f.Exclude {
		if ex != "" && strings.Contains(fullName, ex) {
			return false
		}
	}
	return true
}
