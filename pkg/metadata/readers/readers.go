// Package readers lists every metadata reader shipped with modelviz.
//
// It lives outside pkg/metadata so that metadata itself does not import its
// adapters.
package readers

import (
	"github.com/matzehuels/modelviz/pkg/metadata"
	"github.com/matzehuels/modelviz/pkg/metadata/dump"
	"github.com/matzehuels/modelviz/pkg/metadata/gossa"
)

// All contains the supported readers in detection order.
var All = []metadata.Reader{
	gossa.Reader{},
	dump.Reader{},
}

// Find returns the reader with the given type name.
func Find(name string) (metadata.Reader, bool) {
	for _, r := range All {
		if r.Type() == name {
			return r, true
		}
	}
	return nil, false
}

// Names returns the type names of all readers.
func Names() []string {
	names := make([]string, len(All))
	for i, r := range All {
		names[i] = r.Type()
	}
	return names
}
