package store

// ConnState accumulates key/value fields describing session connectivity.
// Updates are shallow-merged: later values win per key, untouched keys
// survive.
type ConnState struct {
	fields map[string]any
}

// NewConnState creates an empty connection state bag.
func NewConnState() *ConnState {
	return &ConnState{fields: make(map[string]any)}
}

// Merge overwrites the given keys, leaving all others intact.
func (s *ConnState) Merge(fields map[string]any) {
	for k, v := range fields {
		s.fields[k] = v
	}
}

// Get returns the value for key.
func (s *ConnState) Get(key string) (any, bool) {
	v, ok := s.fields[key]
	return v, ok
}

// Fields returns a copy of the full bag.
func (s *ConnState) Fields() map[string]any {
	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}
