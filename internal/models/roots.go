package models

import "sort"

// ExtractRoots returns the indexes of the root models that contain def,
// directly or through other nested models. A root model is one that is not
// nested inside anything. The result is sorted.
//
// The climb uses an explicit worklist, so deep containment chains do not
// grow the call stack. The visited set is keyed by the usage Type; on cyclic
// input it only stops the loop and the result may miss roots.
func ExtractRoots(s *ModelSet, def *ModelDefinition) ([]string, error) {
	visited := make(map[string]bool)
	found := make(map[string]bool)
	work := def.ownedUsages()

	for len(work) > 0 {
		ref := work[len(work)-1]
		work = work[:len(work)-1]
		visited[ref.Type] = true

		parent, ok := s.Get(ref.Parent)
		if !ok {
			return nil, &DanglingReferenceError{Index: ref.Parent, Model: def.Index, Field: "parent"}
		}

		climb := parent.ownedUsages()
		if len(climb) == 0 {
			found[parent.Index] = true
			continue
		}
		for _, up := range climb {
			if !visited[up.Type] {
				work = append(work, up)
			}
		}
	}

	roots := make([]string, 0, len(found))
	for idx := range found {
		roots = append(roots, idx)
	}
	sort.Strings(roots)
	return roots, nil
}
