package manifest

import "mpkg/internal/logging"

// ElementByReference finds the element whose identifier equals the
// reference identifier, regardless of kind.
func (m *Manifest) ElementByReference(ref Reference) (Element, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elementByReferenceLocked(&ref)
}

func (m *Manifest) elementByReferenceLocked(ref *Reference) (Element, bool) {
	if ref == nil {
		return nil, false
	}
	if idx := m.indexByIDLocked(ref.Identifier); idx >= 0 {
		return m.elements[idx], true
	}
	return nil, false
}

// IsReachable reports whether candidate refers to target, either strictly
// or, with includeDerived, through a chain of derivation references whose
// last hop matches target by type and identifier.
func (m *Manifest) IsReachable(candidate Element, target Reference, includeDerived bool) bool {
	if candidate == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isReachableLocked(candidate, &target, includeDerived)
}

func (m *Manifest) isReachableLocked(candidate Element, target *Reference, includeDerived bool) bool {
	ref := candidate.Reference()
	if ref == nil {
		return false
	}
	if MatchesStrict(ref, target) {
		return true
	}
	if !includeDerived {
		return false
	}

	visited := map[string]struct{}{ref.key(): {}}
	for hop := 0; hop < m.maxHops; hop++ {
		next, ok := m.elementByReferenceLocked(ref)
		if !ok {
			return false
		}
		ref = next.Reference()
		if ref == nil {
			return false
		}
		if MatchesTypeIdentifier(ref, target) {
			return true
		}
		key := ref.key()
		if _, seen := visited[key]; seen {
			m.logger.Debug("reference cycle detected",
				logging.String("element_id", candidate.ID()),
				logging.String("reference", key),
			)
			return false
		}
		visited[key] = struct{}{}
	}
	m.logger.Debug("reference hop limit reached",
		logging.String("element_id", candidate.ID()),
		logging.Int("max_hops", m.maxHops),
	)
	return false
}

// ByReference returns elements of kind reachable from target.
func (m *Manifest) ByReference(kind Kind, target Reference, includeDerived bool) []Element {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Element
	for _, e := range m.elements {
		if e.Kind() == kind && m.isReachableLocked(e, &target, includeDerived) {
			out = append(out, e)
		}
	}
	return out
}

// AllByReference is ByReference across every kind.
func (m *Manifest) AllByReference(target Reference, includeDerived bool) []Element {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Element
	for _, e := range m.elements {
		if m.isReachableLocked(e, &target, includeDerived) {
			out = append(out, e)
		}
	}
	return out
}

// ByFlavorAndReference returns elements of kind matching flavor under the
// kind's policy whose own reference strictly matches target.
func (m *Manifest) ByFlavorAndReference(kind Kind, flavor Flavor, target Reference) []Element {
	return m.filter(func(e Element) bool {
		return e.Kind() == kind &&
			flavorMatches(kind, e.Flavor(), flavor) &&
			MatchesStrict(e.Reference(), &target)
	})
}
