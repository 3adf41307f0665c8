package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/deckgo/internal/schema"
)

// sizeGraph links each sized-by keyword to the keyword holding its record
// count. A deck can only satisfy the references if they form a DAG.
type sizeGraph struct {
	// deps maps a keyword to the keywords its size is read from.
	deps map[string][]string
}

func newSizeGraph(keywords map[string]*schema.Keyword) *sizeGraph {
	g := &sizeGraph{deps: make(map[string][]string, len(keywords))}
	for name, kw := range keywords {
		g.deps[name] = nil
		if kw.Size.Policy == schema.DependsOn {
			g.deps[name] = append(g.deps[name], kw.Size.Keyword)
		}
	}
	return g
}

// detectCycles returns an error naming the first cycle found, in sorted
// keyword order.
func (g *sizeGraph) detectCycles() error {
	// permanent: visited and known not to be on a cycle.
	// onStack: the current depth-first path.
	permanent := make(map[string]bool)
	onStack := make(map[string]int)
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if at, ok := onStack[id]; ok {
			cycle := append(slices.Clone(path[at:]), id)
			return fmt.Errorf("size references form a cycle: %s", strings.Join(cycle, " -> "))
		}

		onStack[id] = len(path)
		path = append(path, id)
		for _, dep := range g.deps[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(onStack, id)
		permanent[id] = true
		return nil
	}

	ids := make([]string, 0, len(g.deps))
	for id := range g.deps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
