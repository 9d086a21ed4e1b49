package catalog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/m3rciful/refbot/core/logger"
)

const gitCommandTimeout = 30 * time.Second

// GitSyncer mirrors collection files to a remote git repository. A clean
// working tree skips the sync; a failed rebase pull falls back to a merge
// pull before pushing again.
type GitSyncer struct {
	dir    string
	remote string
	branch string
}

// NewGitSyncer returns a syncer operating on the repository at dir.
func NewGitSyncer(dir, remote, branch string) *GitSyncer {
	if remote == "" {
		remote = "origin"
	}
	if branch == "" {
		branch = "main"
	}
	return &GitSyncer{dir: dir, remote: remote, branch: branch}
}

// Sync commits and pushes pending changes for the collection files.
func (g *GitSyncer) Sync(ctx context.Context, fileName string) error {
	status, err := g.output(ctx, "status", "--porcelain")
	if err != nil {
		return err
	}
	if strings.TrimSpace(status) == "" {
		logger.Debug(ctx, "git", "sync_skip_clean", slog.String("file", fileName))
		return nil
	}

	if err := g.run(ctx, "add", "."); err != nil {
		return err
	}
	if err := g.run(ctx, "commit", "-m", fmt.Sprintf("Update %s via bot", fileName)); err != nil {
		return err
	}
	if err := g.pushWithPull(ctx, true); err == nil {
		logger.Info(ctx, "git", "sync_done", slog.String("file", fileName))
		return nil
	}

	// The rebase pull hit a conflict; abort it and retry with a merge pull.
	if err := g.run(ctx, "rebase", "--abort"); err != nil {
		logger.Warn(ctx, "git", "rebase_abort_failed", slog.String("error", err.Error()))
	}
	if err := g.pushWithPull(ctx, false); err != nil {
		return err
	}
	logger.Info(ctx, "git", "sync_done_after_merge", slog.String("file", fileName))
	return nil
}

func (g *GitSyncer) pushWithPull(ctx context.Context, rebase bool) error {
	pullArgs := []string{"pull", "--rebase"}
	if !rebase {
		pullArgs = []string{"pull", "--no-rebase"}
	}
	if err := g.run(ctx, pullArgs...); err != nil {
		return err
	}
	return g.run(ctx, "push", g.remote, g.branch)
}

func (g *GitSyncer) run(ctx context.Context, args ...string) error {
	_, err := g.output(ctx, args...)
	return err
}

func (g *GitSyncer) output(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gitCommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}
