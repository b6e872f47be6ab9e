package sink

import (
	"fmt"

	"groundlink.io/rlmon/internal/config"
)

// Constructor builds a sink from its option map.
type Constructor func(options map[string]any) (Sink, error)

var constructors = map[string]Constructor{}

// Register makes a sink type available to Build. Called from the sink
// implementations' init functions.
func Register(name string, fn Constructor) {
	if _, exists := constructors[name]; exists {
		panic(fmt.Sprintf("sink type %q already registered", name))
	}
	constructors[name] = fn
}

// Build constructs all sinks named in the configuration.
func Build(cfgs []config.SinkConfig) ([]Sink, error) {
	sinks := make([]Sink, 0, len(cfgs))
	for i, c := range cfgs {
		fn, ok := constructors[c.Type]
		if !ok {
			return nil, fmt.Errorf("sinks[%d]: unknown type %q", i, c.Type)
		}
		s, err := fn(c.Options)
		if err != nil {
			return nil, fmt.Errorf("sinks[%d] (%s): %w", i, c.Type, err)
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}
