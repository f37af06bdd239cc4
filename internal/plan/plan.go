// Package plan turns edited checklist marks into add and remove sets.
package plan

import "github.com/vmunix/ghettosync/internal/dest"

// Decision pairs a rendered path with the user's edited mark and the
// destination state at probe time.
type Decision struct {
	Path   string
	Want   bool
	Exists bool
}

// Action returns the change the decision calls for.
func (d Decision) Action() Action {
	switch {
	case d.Want && !d.Exists:
		return ActionAdd
	case !d.Want && d.Exists:
		return ActionRemove
	default:
		return ActionNone
	}
}

// Action is the change required for one leaf.
type Action int

const (
	ActionNone Action = iota
	ActionAdd
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	default:
		return "none"
	}
}

// Plan lists the leaves to add and remove, both in inventory order.
type Plan struct {
	ToAdd    []string
	ToRemove []string
}

// Empty reports whether the plan changes nothing.
func (p *Plan) Empty() bool {
	return p == nil || (len(p.ToAdd) == 0 && len(p.ToRemove) == 0)
}

// Pair zips rendered paths with edited marks. Existence is taken from
// existing, not from what was rendered.
func Pair(paths []string, marks []bool, existing dest.Set) ([]Decision, error) {
	if len(paths) != len(marks) {
		return nil, &LineCountMismatchError{Rendered: len(paths), Edited: len(marks)}
	}

	decisions := make([]Decision, len(paths))
	for i, p := range paths {
		decisions[i] = Decision{
			Path:   p,
			Want:   marks[i],
			Exists: existing.Contains(p),
		}
	}
	return decisions, nil
}

// Reconcile computes the plan for an edited checklist. It fails with a
// *LineCountMismatchError if lines were added or deleted in the editor.
func Reconcile(paths []string, marks []bool, existing dest.Set) (*Plan, error) {
	decisions, err := Pair(paths, marks, existing)
	if err != nil {
		return nil, err
	}

	p := &Plan{}
	for _, d := range decisions {
		switch d.Action() {
		case ActionAdd:
			p.ToAdd = append(p.ToAdd, d.Path)
		case ActionRemove:
			p.ToRemove = append(p.ToRemove, d.Path)
		}
	}
	return p, nil
}
