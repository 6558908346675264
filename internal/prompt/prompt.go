package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dapp-labs/dapp-cli/internal/catalog"
	"github.com/dapp-labs/dapp-cli/internal/project"
)

// maxAttempts bounds re-prompting after invalid answers.
const maxAttempts = 3

var (
	// ErrNoInput is returned when input ends before a question is answered.
	ErrNoInput = errors.New("no input available")
	// ErrNotInteractive is returned by Confirm when nobody can answer.
	ErrNotInteractive = errors.New("confirmation required but input is not interactive")
)

// Prompter asks questions on w and reads answers from r.
type Prompter struct {
	reader      *bufio.Reader
	w           io.Writer
	interactive bool
}

// New returns a Prompter. With interactive false, project questions resolve
// to their defaults and confirmations fail with ErrNotInteractive.
func New(r io.Reader, w io.Writer, interactive bool) *Prompter {
	return &Prompter{reader: bufio.NewReader(r), w: w, interactive: interactive}
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	if !p.interactive {
		return false, fmt.Errorf("%w: %s (rerun with --force)", ErrNotInteractive, question)
	}
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		answer, err := p.ask(ctx, fmt.Sprintf("%s %s ", question, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.w, "Please answer y or n.")
	}
	return false, fmt.Errorf("no valid answer to %q", question)
}

// ProjectInfo asks for the kind, name, version, description, and template of
// the new project. Names and versions are re-asked when invalid.
func (p *Prompter) ProjectInfo(ctx context.Context, defaults project.Info, cat *catalog.Catalog) (*project.Info, error) {
	if !p.interactive {
		return nonInteractiveInfo(defaults, cat)
	}

	info := defaults
	kinds := []project.Kind{project.KindProject, project.KindComponent}
	idx, err := p.selectFromList(ctx, "Select what to create:", []string{"Project", "Component"})
	if err != nil {
		return nil, err
	}
	info.Kind = kinds[idx]

	info.Name, err = p.askValid(ctx, fmt.Sprintf("%s name", info.Kind), defaults.Name, project.ValidateName)
	if err != nil {
		return nil, err
	}
	info.Version, err = p.askValid(ctx, "Version", defaults.Version, project.ValidateVersion)
	if err != nil {
		return nil, err
	}

	if info.Kind == project.KindComponent {
		info.Description, err = p.askValid(ctx, "Component description", defaults.Description, func(s string) error {
			if s == "" {
				return &project.ValidationError{Field: "description", Reason: "is required for components"}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	templates := cat.ForKind(info.Kind)
	if len(templates) == 0 {
		return nil, fmt.Errorf("no templates available for %s", info.Kind)
	}
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	idx, err = p.selectFromList(ctx, "Select a template:", names)
	if err != nil {
		return nil, err
	}
	info.Template = templates[idx].PackageName
	return &info, nil
}

// nonInteractiveInfo fills in the first matching template and requires the
// name to be known already.
func nonInteractiveInfo(defaults project.Info, cat *catalog.Catalog) (*project.Info, error) {
	info := defaults
	if info.Kind == "" {
		info.Kind = project.KindProject
	}
	if info.Name == "" {
		return nil, fmt.Errorf("a project name is required when input is not interactive")
	}
	if info.Template == "" {
		templates := cat.ForKind(info.Kind)
		if len(templates) == 0 {
			return nil, fmt.Errorf("no templates available for %s", info.Kind)
		}
		info.Template = templates[0].PackageName
	}
	return &info, nil
}

// selectFromList prints a numbered menu and returns the chosen index.
func (p *Prompter) selectFromList(ctx context.Context, question string, items []string) (int, error) {
	fmt.Fprintf(p.w, "\n%s\n", question)
	for i, item := range items {
		fmt.Fprintf(p.w, "  %d) %s\n", i+1, item)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		line, err := p.ask(ctx, fmt.Sprintf("Enter number [1-%d]: ", len(items)))
		if err != nil {
			return 0, err
		}
		if line == "" {
			return 0, nil
		}
		num, err := strconv.Atoi(line)
		if err == nil && num >= 1 && num <= len(items) {
			return num - 1, nil
		}
		fmt.Fprintf(p.w, "Invalid selection %q: choose 1-%d\n", line, len(items))
	}
	return 0, fmt.Errorf("no valid selection for %q", question)
}

// askValid asks until validate accepts the answer. An empty answer takes def.
func (p *Prompter) askValid(ctx context.Context, question, def string, validate func(string) error) (string, error) {
	label := question + ": "
	if def != "" {
		label = fmt.Sprintf("%s (%s): ", question, def)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		answer, err := p.ask(ctx, label)
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		if lastErr = validate(answer); lastErr == nil {
			return answer, nil
		}
		fmt.Fprintf(p.w, "%v\n", lastErr)
	}
	return "", lastErr
}

// ask prints label and reads one trimmed line.
func (p *Prompter) ask(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.w, label)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
