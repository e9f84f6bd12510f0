// Package graph contains pure, stateless integrity checks over a snapshot
// of the screen collection: reference lookup, cycle detection, entry-screen
// invariants and broken-link detection. Defects are advisory results, never
// errors; callers decide whether to block an action on them.
package graph

import (
	"sort"

	"github.com/avdeevsv/screenpad/internal/client/models"
)

// Reference names a button pointing at a given screen.
type Reference struct {
	ScreenID   string
	ButtonText string
}

// BrokenLink is a navigation edge whose target screen no longer exists.
type BrokenLink struct {
	ScreenID   string
	ButtonText string
	TargetID   string
}

// CycleResult reports a cycle reachable from the traversal start. Path
// holds the screen ids from the start up to (and closing at) the repeated
// node.
type CycleResult struct {
	HasCycle bool
	Path     []string
}

// CallbackDefect flags a button whose callback payload exceeds the
// platform's 64-byte limit. The screen stays usable; the defect is
// advisory.
type CallbackDefect struct {
	ScreenID   string
	ButtonText string
	Size       int
}

func index(screens []models.Screen) map[string]*models.Screen {
	m := make(map[string]*models.Screen, len(screens))
	for i := range screens {
		m[screens[i].Id] = &screens[i]
	}
	return m
}

// FindReferences returns every button across the collection that links to
// targetID. Used to warn before deleting a screen others point at.
func FindReferences(targetID string, screens []models.Screen) []Reference {
	var refs []Reference
	for _, s := range screens {
		for _, row := range s.Keyboard {
			for _, b := range row {
				if b.LinkedScreenID == targetID {
					refs = append(refs, Reference{ScreenID: s.Id, ButtonText: b.Text})
				}
			}
		}
	}
	return refs
}

// DetectCycle walks linked_screen_id edges depth-first from startID. The
// visited set is scoped to the active path, so diamond-shaped graphs are
// not falsely flagged; only a node revisited within the current path marks
// a cycle.
func DetectCycle(startID string, screens []models.Screen) CycleResult {
	byID := index(screens)
	if _, ok := byID[startID]; !ok {
		return CycleResult{}
	}

	onPath := make(map[string]bool)
	var path []string

	var walk func(id string) []string
	walk = func(id string) []string {
		if onPath[id] {
			// close the cycle at the repeated node
			return append(append([]string(nil), path...), id)
		}
		s, ok := byID[id]
		if !ok {
			return nil
		}
		onPath[id] = true
		path = append(path, id)
		for _, row := range s.Keyboard {
			for _, b := range row {
				if b.LinkedScreenID == "" {
					continue
				}
				if found := walk(b.LinkedScreenID); found != nil {
					return found
				}
			}
		}
		onPath[id] = false
		path = path[:len(path)-1]
		return nil
	}

	if cycle := walk(startID); cycle != nil {
		return CycleResult{HasCycle: true, Path: cycle}
	}
	return CycleResult{}
}

// canonicalize rotates a cycle so the lexicographically smallest id comes
// first. nodes must be the cycle without the closing repeat.
func canonicalize(nodes []string) []string {
	if len(nodes) == 0 {
		return nodes
	}
	min := 0
	for i, id := range nodes {
		if id < nodes[min] {
			min = i
		}
	}
	out := make([]string, 0, len(nodes))
	out = append(out, nodes[min:]...)
	out = append(out, nodes[:min]...)
	return out
}

// FindAllCycles runs cycle detection from every node and de-duplicates
// rotations of the same cycle, so a 3-cycle is reported once rather than
// once per participating node. Each reported cycle starts from its
// lexicographically smallest id.
func FindAllCycles(screens []models.Screen) [][]string {
	seen := make(map[string]bool)
	var cycles [][]string

	for _, s := range screens {
		res := DetectCycle(s.Id, screens)
		if !res.HasCycle {
			continue
		}
		// the path runs start..repeated; the cycle proper begins at the
		// repeated node's first occurrence
		closing := res.Path[len(res.Path)-1]
		start := 0
		for i, id := range res.Path[:len(res.Path)-1] {
			if id == closing {
				start = i
				break
			}
		}
		cycle := canonicalize(res.Path[start : len(res.Path)-1])

		key := ""
		for _, id := range cycle {
			key += id + "\x00"
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		cycles = append(cycles, cycle)
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

// IsEntrySet reports whether entryID names a live screen.
func IsEntrySet(entryID string, screens []models.Screen) bool {
	if entryID == "" {
		return false
	}
	for _, s := range screens {
		if s.Id == entryID {
			return true
		}
	}
	return false
}

// ResolveEntry returns the entry id the collection should carry. A dangling
// entry is cleared; with exactly one screen and no prior entry, that screen
// is auto-assigned; with zero or multiple screens the choice is ambiguous
// and stays empty.
func ResolveEntry(current string, screens []models.Screen) string {
	if IsEntrySet(current, screens) {
		return current
	}
	if len(screens) == 1 {
		return screens[0].Id
	}
	return ""
}

// FindBrokenLinks returns every button whose linked_screen_id does not
// resolve to a live screen. Publish and share actions are blocked until the
// collection is clean.
func FindBrokenLinks(screens []models.Screen) []BrokenLink {
	byID := index(screens)
	var broken []BrokenLink
	for _, s := range screens {
		for _, row := range s.Keyboard {
			for _, b := range row {
				if b.LinkedScreenID == "" {
					continue
				}
				if _, ok := byID[b.LinkedScreenID]; !ok {
					broken = append(broken, BrokenLink{ScreenID: s.Id, ButtonText: b.Text, TargetID: b.LinkedScreenID})
				}
			}
		}
	}
	return broken
}

// FindOversizedCallbacks flags callback payloads above the 64-byte limit.
func FindOversizedCallbacks(screens []models.Screen) []CallbackDefect {
	var defects []CallbackDefect
	for _, s := range screens {
		for _, row := range s.Keyboard {
			for _, b := range row {
				if n := len([]byte(b.CallbackData)); n > models.MaxCallbackDataBytes {
					defects = append(defects, CallbackDefect{ScreenID: s.Id, ButtonText: b.Text, Size: n})
				}
			}
		}
	}
	return defects
}
