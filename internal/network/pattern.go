package network

import (
	"sort"
	"sync"
)

// globalPattern is the set of concept ids considered jointly active across
// the network. It only ever grows, by union.
type globalPattern struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newGlobalPattern() *globalPattern {
	return &globalPattern{ids: make(map[string]struct{})}
}

func (g *globalPattern) union(ids []string) {
	g.mu.Lock()
	for _, id := range ids {
		g.ids[id] = struct{}{}
	}
	g.mu.Unlock()
}

func (g *globalPattern) snapshot() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.ids))
	for id := range g.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (g *globalPattern) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids)
}
