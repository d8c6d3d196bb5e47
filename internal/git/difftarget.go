package git

import (
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5/plumbing/object"
)

type TargetKind uint8

const (
	TargetName TargetKind = iota
	TargetIndex
	TargetWorkTree

	numTargetKinds
)

func (k TargetKind) String() string {
	switch k {
	case TargetIndex:
		return "index"
	case TargetWorkTree:
		return "worktree"
	default:
		return "name"
	}
}

// DiffTarget is one side of a comparison: the working tree, the index, or a
// label that is resolved to a tree when the diff is computed.
type DiffTarget struct {
	Kind  TargetKind
	Label string
}

func (t DiffTarget) String() string {
	switch t.Kind {
	case TargetIndex:
		return LabelIndex
	case TargetWorkTree:
		return LabelWorkTree
	default:
		return t.Label
	}
}

// Classify turns a raw label into a DiffTarget. Only the exact strings
// "/WORK" and "/INDEX" are pseudo-targets.
func Classify(label string) DiffTarget {
	switch label {
	case LabelWorkTree:
		return DiffTarget{Kind: TargetWorkTree}
	case LabelIndex:
		return DiffTarget{Kind: TargetIndex}
	default:
		return DiffTarget{Kind: TargetName, Label: label}
	}
}

type diffOp uint8

const (
	opReject diffOp = iota
	opTreeToTree
	opTreeToIndex
	opTreeToWorkdir
	opIndexToWorkdir
)

func (op diffOp) String() string {
	switch op {
	case opTreeToTree:
		return "tree-to-tree"
	case opTreeToIndex:
		return "tree-to-index"
	case opTreeToWorkdir:
		return "tree-to-workdir"
	case opIndexToWorkdir:
		return "index-to-workdir"
	default:
		return "reject"
	}
}

// diffPlan says which primitive serves an (old, new) pair. The primitives
// only run in one direction; reversed plans compute the mirror image and
// flip every change before reporting it.
type diffPlan struct {
	op       diffOp
	reversed bool
}

// diffPlans is indexed by [old.Kind][new.Kind].
var diffPlans = [numTargetKinds][numTargetKinds]diffPlan{
	TargetName: {
		TargetName:     {op: opTreeToTree},
		TargetIndex:    {op: opTreeToIndex},
		TargetWorkTree: {op: opTreeToWorkdir},
	},
	TargetIndex: {
		TargetName:     {op: opTreeToIndex, reversed: true},
		TargetIndex:    {op: opReject},
		TargetWorkTree: {op: opIndexToWorkdir},
	},
	TargetWorkTree: {
		TargetName:     {op: opTreeToWorkdir, reversed: true},
		TargetIndex:    {op: opIndexToWorkdir, reversed: true},
		TargetWorkTree: {op: opReject},
	},
}

type diffConfig struct {
	includeUntracked bool
}

type DiffOption func(*diffConfig)

// WithUntracked reports files that exist only in the worktree as additions.
// Ignored files stay hidden.
func WithUntracked() DiffOption {
	return func(c *diffConfig) { c.includeUntracked = true }
}

// MakeDiff compares oldTarget against newTarget. It never writes to the
// index, the worktree or the object store.
func (s *Service) MakeDiff(oldTarget, newTarget DiffTarget, opts ...DiffOption) (*DiffHandle, error) {
	var cfg diffConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	plan := diffPlans[oldTarget.Kind][newTarget.Kind]
	slog.Debug("diff plan",
		slog.String("old", oldTarget.String()),
		slog.String("new", newTarget.String()),
		slog.String("op", plan.op.String()),
		slog.Bool("reversed", plan.reversed),
	)
	if plan.op == opReject {
		return nil, fmt.Errorf("diff %s against %s: %w", oldTarget, newTarget, ErrDegenerateComparison)
	}

	// The canonical primitive runs from base to other; for reversed plans
	// base is the new side.
	base, other := oldTarget, newTarget
	if plan.reversed {
		base, other = newTarget, oldTarget
	}

	changes, from, to, err := s.runPlan(plan.op, base, other, cfg)
	if err != nil {
		return nil, err
	}

	if plan.reversed {
		for i := range changes {
			changes[i] = changes[i].Reverse()
		}
		from, to = to, from
	}
	sortChanges(changes)
	return &DiffHandle{
		Old:      oldTarget,
		New:      newTarget,
		Reversed: plan.reversed,
		Changes:  changes,
		from:     from,
		to:       to,
	}, nil
}

func (s *Service) runPlan(op diffOp, base, other DiffTarget, cfg diffConfig) ([]Change, endpoint, endpoint, error) {
	switch op {
	case opTreeToTree:
		baseTree, err := s.targetTree(base)
		if err != nil {
			return nil, nil, nil, err
		}
		otherTree, err := s.targetTree(other)
		if err != nil {
			return nil, nil, nil, err
		}
		changes, err := diffTreeToTree(baseTree, otherTree)
		return changes, treeEndpoint{tree: baseTree}, treeEndpoint{tree: otherTree}, err
	case opTreeToIndex:
		tree, err := s.targetTree(base)
		if err != nil {
			return nil, nil, nil, err
		}
		idx, err := s.index()
		if err != nil {
			return nil, nil, nil, err
		}
		changes, err := diffTreeToIndex(tree, idx)
		return changes, treeEndpoint{tree: tree}, indexEndpoint{idx: idx, storer: s.repo.Storer}, err
	case opTreeToWorkdir:
		tree, err := s.targetTree(base)
		if err != nil {
			return nil, nil, nil, err
		}
		wd, err := s.workdir(cfg.includeUntracked)
		if err != nil {
			return nil, nil, nil, err
		}
		changes, err := diffTreeToWorkdir(tree, wd)
		return changes, treeEndpoint{tree: tree}, wd, err
	case opIndexToWorkdir:
		wd, err := s.workdir(cfg.includeUntracked)
		if err != nil {
			return nil, nil, nil, err
		}
		changes, err := diffIndexToWorkdir(wd)
		return changes, indexEndpoint{idx: wd.idx, storer: s.repo.Storer}, wd, err
	default:
		return nil, nil, nil, fmt.Errorf("unknown diff operation %d", op)
	}
}

// targetTree resolves a Name target and peels it to a tree.
func (s *Service) targetTree(t DiffTarget) (*object.Tree, error) {
	obj, err := s.Resolve(t.Label)
	if err != nil {
		return nil, err
	}
	tree, err := PeelToTree(obj)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", t.Label, err)
	}
	return tree, nil
}
