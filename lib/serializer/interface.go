package serializer

import (
	"fmt"
	"sort"

	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("serializer")

// IRosterSerializer is the interface for all roster serializers
type IRosterSerializer interface {
	// Name returns the name the serializer is registered under
	Name() string
	// Serialize serializes the complete record sequence into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(students []roster.Student) ([]byte, error)
	// Deserialize deserializes a byte array into a record sequence.
	// On error the target slice is left untouched.
	Deserialize(b []byte, students *[]roster.Student) error
}

// Factory creates a new serializer instance
type Factory func() IRosterSerializer

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

var registry = xsync.NewMapOf[string, Factory]()

func init() {
	Register("binary", NewBinarySerializer)
	Register("json", NewJSONSerializer)
	Register("gob", NewGOBSerializer)
	Register("yaml", NewYAMLSerializer)
}

// Register makes a serializer available under the given name.
// Registering a name twice replaces the previous factory.
func Register(name string, factory Factory) {
	if _, loaded := registry.LoadOrStore(name, factory); loaded {
		Logger.Warningf("replacing serializer %q", name)
		registry.Store(name, factory)
	}
}

// Get returns a new serializer for the given name
func Get(name string) (IRosterSerializer, error) {
	factory, ok := registry.Load(name)
	if !ok {
		return nil, fmt.Errorf("invalid serializer %s (expected one of %v)", name, Names())
	}
	return factory(), nil
}

// Names returns the sorted names of all registered serializers
func Names() []string {
	names := make([]string, 0, registry.Size())
	registry.Range(func(name string, _ Factory) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
