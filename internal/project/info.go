package project

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// Kind distinguishes a full project from a single component.
type Kind string

// Supported kinds. The values double as catalog applicability tags.
const (
	KindProject   Kind = "project"
	KindComponent Kind = "component"
)

// ParseKind converts a user-supplied string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindProject:
		return KindProject, nil
	case KindComponent:
		return KindComponent, nil
	default:
		return "", fmt.Errorf("unknown kind %q: must be %q or %q", s, KindProject, KindComponent)
	}
}

// namePattern: starts with a letter; "-" and "_" must each be followed by a letter.
var namePattern = regexp.MustCompile(`^[a-zA-Z]+([-][a-zA-Z][a-zA-Z0-9]*|[_][a-zA-Z][a-zA-Z0-9]*|[a-zA-Z0-9])*$`)

// Info is the metadata of the project being created.
type Info struct {
	Kind          Kind
	Name          string
	Version       string
	Template      string // package name of the chosen catalog template
	Description   string // components only
	FormattedName string
}

// ValidationError reports a field that failed validation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ValidateName checks a project name against the identifier grammar.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return &ValidationError{
			Field:  "name",
			Value:  name,
			Reason: "must start with a letter and contain only letters, digits, and single '-' or '_' separators followed by a letter",
		}
	}
	return nil
}

// ValidateVersion checks that v is a strict semantic version (no "v" prefix,
// all three components present).
func ValidateVersion(v string) error {
	if _, err := semver.StrictNewVersion(v); err != nil {
		return &ValidationError{Field: "version", Value: v, Reason: err.Error()}
	}
	return nil
}

// Validate checks every field the templates depend on and fills in
// FormattedName. It must be called on any Info that came from outside the core.
func (i *Info) Validate() error {
	if i.Kind != KindProject && i.Kind != KindComponent {
		return &ValidationError{Field: "kind", Value: string(i.Kind), Reason: "must be project or component"}
	}
	if err := ValidateName(i.Name); err != nil {
		return err
	}
	if err := ValidateVersion(i.Version); err != nil {
		return err
	}
	if strings.TrimSpace(i.Template) == "" {
		return &ValidationError{Field: "template", Value: i.Template, Reason: "no template selected"}
	}
	if i.Kind == KindComponent && strings.TrimSpace(i.Description) == "" {
		return &ValidationError{Field: "description", Value: i.Description, Reason: "components require a description"}
	}
	i.FormattedName = KebabCase(i.Name)
	return nil
}

// Vars returns the template variables for this project. Every value is a plain
// string; templates cannot reach methods or functions through it.
func (i *Info) Vars() map[string]string {
	formatted := i.FormattedName
	if formatted == "" {
		formatted = KebabCase(i.Name)
	}
	return map[string]string{
		"name":          i.Name,
		"formattedName": formatted,
		"className":     formatted,
		"version":       i.Version,
		"description":   i.Description,
		"kind":          string(i.Kind),
		"template":      i.Template,
	}
}

// KebabCase converts an identifier such as "MyApp_core" into "my-app-core".
func KebabCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for idx, r := range runes {
		switch {
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		case unicode.IsUpper(r):
			if idx > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				prev := runes[idx-1]
				nextLower := idx+1 < len(runes) && unicode.IsLower(runes[idx+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('-')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
