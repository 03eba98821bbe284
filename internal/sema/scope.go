package sema

// scope is one frame of the validation scope stack: a mapping from declared
// names to their optionally-declared type spelling ("" when inferred).
type scope struct {
	names map[string]string
}

// scopeStack tracks lexical scopes during validation. Frames are pushed on
// block, function, and lambda entry and popped on exit. The stack only
// lives for the duration of the validation pass.
type scopeStack struct {
	frames []*scope
}

func newScopeStack() *scopeStack {
	return &scopeStack{}
}

func (s *scopeStack) push() {
	s.frames = append(s.frames, &scope{names: make(map[string]string)})
}

func (s *scopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// declare records a name in the innermost frame. It reports false when the
// name already exists in that frame.
func (s *scopeStack) declare(name, typ string) bool {
	top := s.frames[len(s.frames)-1]
	if _, exists := top.names[name]; exists {
		return false
	}
	top.names[name] = typ
	return true
}

// lookup searches frames innermost-first.
func (s *scopeStack) lookup(name string) (string, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if typ, ok := s.frames[i].names[name]; ok {
			return typ, true
		}
	}
	return "", false
}
