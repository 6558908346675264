package scaffold

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"text/template"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// vcsDir is never rendered, even when the template ships one.
const vcsDir = ".git"

// binarySniffLen is how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

// RenderOptions controls RenderTree.
type RenderOptions struct {
	// Ignore holds gitignore-style patterns relative to the root. The
	// dependency directory and .git are always ignored.
	Ignore []string
	// Files restricts rendering to these paths relative to the root. When nil,
	// the whole tree is walked.
	Files []string
	Vars  map[string]string
	// Delims overrides the "{{" / "}}" action delimiters when both are set.
	Delims [2]string
	// Concurrency caps parallel renders. Zero means GOMAXPROCS.
	Concurrency int
}

// RenderTree renders every eligible file under root in place and returns the
// rendered paths relative to root, sorted. Binary files are left alone. The
// first failure cancels outstanding work and is returned as *RenderError.
func RenderTree(ctx context.Context, root string, opts RenderOptions) ([]string, error) {
	files, err := renderCandidates(root, opts)
	if err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	rendered := make([]bool, len(files))
	for i, rel := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := renderFile(filepath.Join(root, rel), rel, opts)
			if err != nil {
				return &RenderError{File: rel, Err: err}
			}
			rendered[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []string
	for i, rel := range files {
		if rendered[i] {
			out = append(out, rel)
		}
	}
	return out, nil
}

// renderCandidates lists the regular files under root, or in opts.Files, that
// are not ignored.
func renderCandidates(root string, opts RenderOptions) ([]string, error) {
	patterns := append([]string{vcsDir, dependencyDir, "**/" + dependencyDir + "/**"}, opts.Ignore...)
	matcher := gitignore.CompileIgnoreLines(patterns...)

	if opts.Files != nil {
		return filterFiles(opts.Files, matcher), nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || matcher.MatchesPath(rel) {
			return nil
		}
		files = append(files, filepath.FromSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func filterFiles(paths []string, matcher *gitignore.GitIgnore) []string {
	var files []string
	for _, p := range paths {
		if !matcher.MatchesPath(filepath.ToSlash(p)) {
			files = append(files, filepath.FromSlash(p))
		}
	}
	sort.Strings(files)
	return files
}

// renderFile executes path as a template and rewrites it. It reports false for
// binary files, which are not touched.
func renderFile(path, name string, opts RenderOptions) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if isBinary(data) {
		return false, nil
	}

	tmpl := template.New(name).Option("missingkey=error")
	if opts.Delims[0] != "" && opts.Delims[1] != "" {
		tmpl = tmpl.Delims(opts.Delims[0], opts.Delims[1])
	}
	tmpl, err = tmpl.Parse(string(data))
	if err != nil {
		return false, err
	}

	vars := opts.Vars
	if vars == nil {
		vars = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return false, err
	}
	if bytes.Equal(buf.Bytes(), data) {
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

func isBinary(data []byte) bool {
	n := len(data)
	if n > binarySniffLen {
		n = binarySniffLen
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}
