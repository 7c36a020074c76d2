package sheet

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownFormat is returned by Lookup for unregistered formats.
var ErrUnknownFormat = errors.New("unknown sheet format")

// DefaultFormat is the TexturePacker/Pixi JSON hash format.
const DefaultFormat = "json"

// Exporter serializes sheets in one format.
type Exporter interface {
	// Format is the name the exporter is registered under.
	Format() string
	// Ext is the file extension of exported documents, with the dot.
	Ext() string
	Export(s *Sheet) ([]byte, error)
}

var (
	registryLock sync.RWMutex
	registry     = map[string]Exporter{}
)

// Register makes an exporter available to Lookup, replacing any exporter
// with the same format name.
func Register(e Exporter) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[e.Format()] = e
}

// Lookup returns the exporter registered for format.
func Lookup(format string) (Exporter, error) {
	registryLock.RLock()
	defer registryLock.RUnlock()
	e, ok := registry[format]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	return e, nil
}

// Formats lists registered format names, sorted.
func Formats() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	out := make([]string, 0, len(registry))
	for f := range registry {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func init() {
	Register(JSONHash{})
	Register(JSONArray{})
	Register(Plist{})
	Register(YAML{})
}
