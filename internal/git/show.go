package git

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitDiff compares commit with its first parent. Root commits are
// compared with the empty tree.
func (s *Service) CommitDiff(commit *object.Commit) (*DiffHandle, error) {
	if commit == nil {
		return nil, fmt.Errorf("commit not specified")
	}
	newTarget := Classify(commit.Hash.String())
	if commit.NumParents() > 0 {
		return s.MakeDiff(Classify(commit.ParentHashes[0].String()), newTarget)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree of commit %s: %w", commit.Hash, err)
	}
	changes, err := diffTreeToTree(nil, tree)
	if err != nil {
		return nil, err
	}
	sortChanges(changes)
	return &DiffHandle{
		Old:     DiffTarget{Kind: TargetName},
		New:     newTarget,
		Changes: changes,
		from:    treeEndpoint{},
		to:      treeEndpoint{tree: tree},
	}, nil
}

// ShowCommit renders the commit header followed by its patch. Sections
// point into the combined text.
func (s *Service) ShowCommit(commit *object.Commit, contextLines int) (string, []FileSection, error) {
	header := FormatCommitHeader(commit)
	diff, err := s.CommitDiff(commit)
	if err != nil {
		return "", nil, err
	}
	if diff.Empty() {
		return header + "\nNo file level changes.\n", nil, nil
	}
	patch, sections, err := diff.Patch(contextLines)
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	b.WriteString(patch)
	offset := strings.Count(header, "\n") + 1
	for i := range sections {
		sections[i].Line += offset
	}
	return b.String(), sections, nil
}
