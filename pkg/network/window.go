package network

import (
	"context"
	"fmt"
)

// DefaultMaxCommits is the window size used when none is configured.
const DefaultMaxCommits = 650

// Pager streams history newest-first, one page per call. An empty page
// marks the end of the history.
type Pager interface {
	NextPage(ctx context.Context) ([]Commit, error)
}

// SlicePager serves an in-memory history in pages of Size commits.
// A Size of zero serves the whole history as a single page.
type SlicePager struct {
	Commits []Commit
	Size    int
	offset  int
}

// NextPage returns the next page of commits.
func (p *SlicePager) NextPage(ctx context.Context) ([]Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.offset >= len(p.Commits) {
		return nil, nil
	}
	end := len(p.Commits)
	if p.Size > 0 {
		end = min(p.offset+p.Size, end)
	}
	page := p.Commits[p.offset:end]
	p.offset = end
	return page, nil
}

// SelectWindow returns at most maxCommits commits of a newest-first history,
// newest-first. When target is found the window is shifted so the target sits
// as close to its vertical center as the history allows; otherwise the window
// is the most recent maxCommits commits. A non-positive maxCommits selects
// [DefaultMaxCommits].
func SelectWindow(history []Commit, target string, maxCommits int) []Commit {
	if maxCommits <= 0 {
		maxCommits = DefaultMaxCommits
	}
	if len(history) == 0 {
		return nil
	}
	skip := windowOffset(history, target, maxCommits)
	end := min(skip+maxCommits, len(history))
	return history[skip:end]
}

// windowOffset returns how many of the newest commits to skip so that target
// is centered.
func windowOffset(history []Commit, target string, maxCommits int) int {
	if target == "" {
		return 0
	}
	idx := -1
	for i := range history {
		if history[i].ID == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0
	}
	skip := max(idx-maxCommits/2, 0)
	// Keep the window full when the target is close to the oldest commit.
	if skip+maxCommits > len(history) {
		skip = max(len(history)-maxCommits, 0)
	}
	return skip
}

// SelectWindowFrom reads pages from p until enough history is buffered to
// center target, then applies [SelectWindow]. Without a target it stops as
// soon as maxCommits commits are available. Cancellation is checked between
// pages.
func SelectWindowFrom(ctx context.Context, p Pager, target string, maxCommits int) ([]Commit, error) {
	if maxCommits <= 0 {
		maxCommits = DefaultMaxCommits
	}

	var history []Commit
	found := -1
	for {
		if done(history, found, target, maxCommits) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("read history page: %w", err)
		}
		if len(page) == 0 {
			break
		}
		if target != "" && found < 0 {
			for i := range page {
				if page[i].ID == target {
					found = len(history) + i
					break
				}
			}
		}
		history = append(history, page...)
	}
	return SelectWindow(history, target, maxCommits), nil
}

// done reports whether the buffered history already determines the window.
func done(history []Commit, found int, target string, maxCommits int) bool {
	if target == "" {
		return len(history) >= maxCommits
	}
	if found < 0 {
		return false
	}
	// Commits after the target fill the lower half of the window.
	return len(history) >= max(found+maxCommits-maxCommits/2, maxCommits)
}
