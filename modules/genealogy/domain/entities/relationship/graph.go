package relationship

import "github.com/google/uuid"

// ExcludedRelatives walks the parent graph from start in both directions and
// returns every ancestor and descendant, start included. The walk is an
// iterative BFS over an adjacency map with an explicit visited set, so cycles
// in corrupted data terminate instead of recursing forever.
func ExcludedRelatives(rels []Relationship, start uuid.UUID) map[uuid.UUID]struct{} {
	parents := make(map[uuid.UUID][]uuid.UUID)
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, rel := range rels {
		if _, ok := rel.Kind().(ParentOf); !ok {
			continue
		}
		children[rel.Person1ID()] = append(children[rel.Person1ID()], rel.Person2ID())
		parents[rel.Person2ID()] = append(parents[rel.Person2ID()], rel.Person1ID())
	}

	visited := map[uuid.UUID]struct{}{start: {}}
	walk := func(adjacency map[uuid.UUID][]uuid.UUID) {
		queue := []uuid.UUID{start}
		seen := map[uuid.UUID]struct{}{start: {}}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, next := range adjacency[current] {
				if _, ok := seen[next]; ok {
					continue
				}
				seen[next] = struct{}{}
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	walk(parents)
	walk(children)
	return visited
}
