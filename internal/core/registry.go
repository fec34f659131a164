package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	labelSets   = make(map[string]LabelSet)
	labelSetsMu sync.RWMutex
)

// RegisterLabelSet adds a label set to the registry.
// Panics if a set with the same name is already registered or a role has no labels.
func RegisterLabelSet(ls LabelSet) {
	labelSetsMu.Lock()
	defer labelSetsMu.Unlock()

	if _, exists := labelSets[ls.Name]; exists {
		panic(fmt.Sprintf("label set already registered: %s", ls.Name))
	}
	for _, role := range columnRoles {
		if len(ls.Labels[role]) == 0 {
			panic(fmt.Sprintf("label set %s: no labels for %s", ls.Name, role))
		}
	}

	labelSets[ls.Name] = ls
}

// LookupLabelSet returns a label set by name.
// Returns false if not found.
func LookupLabelSet(name string) (LabelSet, bool) {
	labelSetsMu.RLock()
	defer labelSetsMu.RUnlock()

	ls, ok := labelSets[name]
	return ls, ok
}

// LabelSetByName is LookupLabelSet returning ErrUnknownLabelSet on a miss.
func LabelSetByName(name string) (LabelSet, error) {
	ls, ok := LookupLabelSet(name)
	if !ok {
		return LabelSet{}, fmt.Errorf("%w: %q", ErrUnknownLabelSet, name)
	}
	return ls, nil
}

// LabelSetNames returns all registered names, sorted.
func LabelSetNames() []string {
	labelSetsMu.RLock()
	defer labelSetsMu.RUnlock()

	names := make([]string, 0, len(labelSets))
	for name := range labelSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClearLabelSets removes all registered label sets.
// Primarily useful for testing.
func ClearLabelSets() {
	labelSetsMu.Lock()
	defer labelSetsMu.Unlock()
	labelSets = make(map[string]LabelSet)
}
