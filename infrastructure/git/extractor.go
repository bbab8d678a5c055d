// Package git mines patterns from local repository history using go-git.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/fluxkit/precedent/domain/pattern"
)

// ErrRepositoryOpen indicates the repository path could not be opened.
// Extraction cannot proceed without a readable repository.
var ErrRepositoryOpen = errors.New("git: cannot open repository")

// Extractor walks repository history newest-first and turns qualifying
// commits into patterns. Read-only: the repository is never mutated.
type Extractor struct {
	repoPath     string
	minDiffLines int
	logger       *slog.Logger
}

// NewExtractor creates an Extractor for the repository at repoPath.
// Commits whose diff touches fewer than minDiffLines changed lines are
// skipped as formatting noise.
func NewExtractor(repoPath string, minDiffLines int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		repoPath:     repoPath,
		minDiffLines: minDiffLines,
		logger:       logger,
	}
}

// ExtractRecent extracts patterns from the most recent qualifying commits,
// stopping once count patterns have been produced.
func (e *Extractor) ExtractRecent(ctx context.Context, count int) ([]pattern.Pattern, error) {
	if count <= 0 {
		return []pattern.Pattern{}, nil
	}
	return e.walk(ctx, nil, func(patterns []pattern.Pattern, p pattern.Pattern) ([]pattern.Pattern, bool) {
		patterns = append(patterns, p)
		return patterns, len(patterns) >= count
	})
}

// ExtractByDateRange extracts patterns from commits whose committer time
// falls inside [since, until].
func (e *Extractor) ExtractByDateRange(ctx context.Context, since, until time.Time) ([]pattern.Pattern, error) {
	opts := &gogit.LogOptions{Since: &since, Until: &until}
	return e.walk(ctx, opts, func(patterns []pattern.Pattern, p pattern.Pattern) ([]pattern.Pattern, bool) {
		return append(patterns, p), false
	})
}

// ExtractByPath extracts patterns whose changed files match the glob.
func (e *Extractor) ExtractByPath(ctx context.Context, glob string) ([]pattern.Pattern, error) {
	if _, err := path.Match(glob, ""); err != nil {
		return nil, fmt.Errorf("invalid glob %q: %w", glob, err)
	}
	return e.walk(ctx, nil, func(patterns []pattern.Pattern, p pattern.Pattern) ([]pattern.Pattern, bool) {
		for _, filePath := range p.FilePaths() {
			if matched, _ := path.Match(glob, filePath); matched {
				return append(patterns, p), false
			}
		}
		return patterns, false
	})
}

// walk iterates history newest-first, converting each qualifying commit
// and handing the result to collect, which returns the updated slice and
// whether to stop early.
func (e *Extractor) walk(
	ctx context.Context,
	opts *gogit.LogOptions,
	collect func([]pattern.Pattern, pattern.Pattern) ([]pattern.Pattern, bool),
) ([]pattern.Pattern, error) {
	repo, err := gogit.PlainOpen(e.repoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRepositoryOpen, e.repoPath, err)
	}

	if opts == nil {
		opts = &gogit.LogOptions{}
	}
	opts.Order = gogit.LogOrderCommitterTime

	iter, err := repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: read log: %w", ErrRepositoryOpen, err)
	}
	defer iter.Close()

	patterns := []pattern.Pattern{}
	err = iter.ForEach(func(commit *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		p, ok := e.fromCommit(ctx, commit)
		if !ok {
			return nil
		}

		var stop bool
		patterns, stop = collect(patterns, p)
		if stop {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk history: %w", err)
	}

	return patterns, nil
}

// fromCommit converts one commit into a pattern. Returns false for commits
// filtered out (merges, automated, too small, empty) and for commits whose
// diff cannot be read; those are logged and skipped rather than failing the
// whole run.
func (e *Extractor) fromCommit(ctx context.Context, commit *object.Commit) (pattern.Pattern, bool) {
	if commit.NumParents() > 1 {
		return pattern.Pattern{}, false
	}
	if IsAutomated(commit.Message) {
		return pattern.Pattern{}, false
	}

	stats, err := commit.StatsContext(ctx)
	if err != nil {
		e.logger.Warn("skipping unreadable commit",
			slog.String("sha", commit.Hash.String()[:7]),
			slog.String("error", err.Error()),
		)
		return pattern.Pattern{}, false
	}

	filePaths := make([]string, 0, len(stats))
	changedLines := 0
	for _, stat := range stats {
		filePaths = append(filePaths, stat.Name)
		changedLines += stat.Addition + stat.Deletion
	}

	if len(filePaths) == 0 || changedLines < e.minDiffLines {
		return pattern.Pattern{}, false
	}

	changeType, subject := ParseMessage(commit.Message)
	description := Describe(changeType, subject)

	tags := append(LanguageTags(filePaths), changeType.String())

	return pattern.New(
		description,
		commit.Hash.String(),
		filePaths,
		commit.Committer.When,
		tags,
	), true
}
