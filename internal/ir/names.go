package ir

import (
	"fmt"
	"strings"
)

// Symbol names carry a sigil: '@' marks a stable, source-derived name,
// '%' marks a compiler temporary eligible for renumbering. Uniqueness is
// enforced per scope: one scope for the program's globals and functions,
// one per function for its locals.
type nameScope struct {
	used map[string]struct{}
}

func newNameScope() *nameScope {
	return &nameScope{used: make(map[string]struct{})}
}

func checkName(name string) error {
	if len(name) < 2 || (name[0] != '@' && name[0] != '%') {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

// assign reserves name in the scope, renumbering a colliding temporary.
// The resolved name is returned. Empty names pass through unreserved.
func (s *nameScope) assign(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	if _, taken := s.used[name]; !taken {
		s.used[name] = struct{}{}
		return name, nil
	}
	if strings.HasPrefix(name, "@") {
		return "", fmt.Errorf("%w: %s", ErrNameTaken, name)
	}
	for i := 1; ; i++ {
		cand := fmt.Sprintf("%s_%d", name, i)
		if _, taken := s.used[cand]; !taken {
			s.used[cand] = struct{}{}
			return cand, nil
		}
	}
}

func (s *nameScope) release(name string) {
	if name != "" {
		delete(s.used, name)
	}
}
