package scaffold

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dapp-labs/dapp-cli/internal/catalog"
	"github.com/dapp-labs/dapp-cli/internal/project"
)

// State is a step of an initialization run.
type State string

const (
	StateStart            State = "start"
	StateCheckEmpty       State = "check-empty"
	StateConfirmOverwrite State = "confirm-overwrite"
	StateCleared          State = "cleared"
	StateAborted          State = "aborted"
	StateCollectInfo      State = "collect-info"
	StateResolveTemplate  State = "resolve-template"
	StateEnsureCached     State = "ensure-cached"
	StateCopy             State = "copy"
	StateRender           State = "render"
	StateInstallDeps      State = "install-deps"
	StateRunStart         State = "run-start"
	StateDone             State = "done"
)

// Prompter gathers decisions and project details from the user.
type Prompter interface {
	Confirm(ctx context.Context, question string, def bool) (bool, error)
	ProjectInfo(ctx context.Context, defaults project.Info, cat *catalog.Catalog) (*project.Info, error)
}

// Cache is a template package in the local store.
type Cache interface {
	Exists(ctx context.Context) (bool, error)
	Install(ctx context.Context) error
	Update(ctx context.Context) error
	Version() string
	Dir() string
	TemplateDir() string
}

// CacheFactory returns the cache entry for a template.
type CacheFactory func(tpl catalog.Template) (Cache, error)

// Initializer runs the init flow. Catalog, Prompter, Cache and Runner are
// required; Logger and Out default to discarding output.
type Initializer struct {
	Catalog  *catalog.Catalog
	Prompter Prompter
	Cache    CacheFactory
	Runner   Runner
	Logger   *slog.Logger
	Out      io.Writer // progress messages for the user

	// RenderConcurrency caps parallel file renders. Zero means GOMAXPROCS.
	RenderConcurrency int
}

// Options are the per-run inputs.
type Options struct {
	TargetDir   string // defaults to the working directory
	Force       bool
	ProjectName string // pre-filled project name, may be empty
}

// Result describes a finished or aborted run.
type Result struct {
	State    State
	Dir      string
	Info     *project.Info
	Template *catalog.Template
	CacheDir string
	Files    []string // files copied from the template, relative to Dir
	Rendered []string
}

// Run executes one initialization. A user declining to continue yields a
// Result in StateAborted and a nil error.
func (in *Initializer) Run(ctx context.Context, opts Options) (*Result, error) {
	if in.Catalog == nil || in.Prompter == nil || in.Cache == nil || in.Runner == nil {
		return nil, fmt.Errorf("initializer is missing a collaborator")
	}

	dir := opts.TargetDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", opts.TargetDir, err)
	}

	res := &Result{State: StateStart, Dir: dir}

	in.enter(res, StateCheckEmpty)
	proceed, err := in.prepareDir(ctx, res, opts.Force)
	if err != nil {
		return nil, err
	}
	if !proceed {
		in.enter(res, StateAborted)
		return res, nil
	}

	in.enter(res, StateCollectInfo)
	defaults := project.Info{Kind: project.KindProject, Name: opts.ProjectName, Version: "1.0.0"}
	info, err := in.Prompter.ProjectInfo(ctx, defaults, in.Catalog)
	if err != nil {
		return nil, fmt.Errorf("collecting project information: %w", err)
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	res.Info = info

	in.enter(res, StateResolveTemplate)
	tpl, ok := in.Catalog.Find(info.Template)
	if !ok {
		return nil, &ConfigError{Msg: fmt.Sprintf("template information missing for %q", info.Template)}
	}
	res.Template = tpl

	in.enter(res, StateEnsureCached)
	pkg, err := in.ensureCached(ctx, *tpl)
	if err != nil {
		return nil, err
	}
	res.CacheDir = pkg.Dir()

	in.enter(res, StateCopy)
	in.printf("Copying template %s@%s\n", tpl.PackageName, pkg.Version())
	files, err := CopyTree(pkg.TemplateDir(), dir)
	if err != nil {
		return nil, fmt.Errorf("copying template: %w", err)
	}
	res.Files = files

	in.enter(res, StateRender)
	rendered, err := RenderTree(ctx, dir, RenderOptions{
		Ignore:      tpl.Ignore,
		Files:       files,
		Vars:        info.Vars(),
		Delims:      tpl.Delims,
		Concurrency: in.RenderConcurrency,
	})
	if err != nil {
		return nil, err
	}
	res.Rendered = rendered
	in.printf("Template installed into %s\n", dir)

	in.enter(res, StateInstallDeps)
	if err := in.runCommand(ctx, dir, tpl.InstallCommand); err != nil {
		return nil, err
	}

	in.enter(res, StateRunStart)
	if len(tpl.StartCommand) > 0 {
		if err := in.runCommand(ctx, dir, tpl.StartCommand); err != nil {
			return nil, err
		}
	}

	in.enter(res, StateDone)
	return res, nil
}

// prepareDir handles the emptiness check and the overwrite prompts. It
// reports false when the user declines to continue.
func (in *Initializer) prepareDir(ctx context.Context, res *Result, force bool) (bool, error) {
	empty, err := IsDirEmpty(res.Dir)
	if err != nil {
		return false, err
	}
	if empty || force {
		return true, nil
	}

	ok, err := in.Prompter.Confirm(ctx, fmt.Sprintf("%s is not empty. Continue creating the project here?", res.Dir), false)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	in.enter(res, StateConfirmOverwrite)
	wipe, err := in.Prompter.Confirm(ctx, fmt.Sprintf("Delete everything in %s first?", res.Dir), false)
	if err != nil {
		return false, err
	}
	if wipe {
		if err := EmptyDir(res.Dir); err != nil {
			return false, err
		}
		in.enter(res, StateCleared)
	}
	return true, nil
}

func (in *Initializer) ensureCached(ctx context.Context, tpl catalog.Template) (Cache, error) {
	pkg, err := in.Cache(tpl)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("template %s", tpl.PackageName), Err: err}
	}

	exists, err := pkg.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking template cache: %w", err)
	}
	if exists {
		in.printf("Updating template %s\n", tpl.PackageName)
		if err := pkg.Update(ctx); err != nil {
			return nil, fmt.Errorf("updating template: %w", err)
		}
	} else {
		in.printf("Downloading template %s\n", tpl.PackageName)
		if err := pkg.Install(ctx); err != nil {
			return nil, fmt.Errorf("downloading template: %w", err)
		}
	}
	in.logger().Debug("template cached", "package", tpl.PackageName, "version", pkg.Version(), "dir", pkg.Dir())

	info, err := os.Stat(pkg.TemplateDir())
	if err != nil || !info.IsDir() {
		return nil, &ConfigError{Msg: fmt.Sprintf("template package %s@%s has no %s directory", tpl.PackageName, pkg.Version(), filepath.Base(pkg.TemplateDir()))}
	}
	return pkg, nil
}

func (in *Initializer) runCommand(ctx context.Context, dir string, argv []string) error {
	if err := CheckCommand(argv); err != nil {
		return err
	}
	in.logger().Debug("running command", "args", argv, "dir", dir)
	return in.Runner.Run(ctx, dir, argv)
}

func (in *Initializer) enter(res *Result, s State) {
	in.logger().Debug("init state", "from", string(res.State), "to", string(s))
	res.State = s
}

func (in *Initializer) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return in.Logger
}

func (in *Initializer) printf(format string, args ...any) {
	if in.Out != nil {
		fmt.Fprintf(in.Out, format, args...)
	}
}
