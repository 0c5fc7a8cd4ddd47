package actionsim

import (
	"fmt"
	"scrappey-go/lib/scrappey"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	Path     string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Severity, i.Path, i.Message)
}

// Lint looks for action trees the remote browser would reject or never
// finish. It does not evaluate any script.
func Lint(actions []scrappey.Action) []Issue {
	var issues []Issue
	lint("", actions, &issues)
	return issues
}

func lint(prefix string, actions []scrappey.Action, issues *[]Issue) {
	for i, action := range actions {
		path := fmt.Sprintf("%s[%d]", prefix, i)
		report := func(severity Severity, format string, args ...any) {
			*issues = append(*issues, Issue{
				Path:     path,
				Severity: severity,
				Message:  fmt.Sprintf(format, args...),
			})
		}

		if !action.Type.Valid() {
			if action.Type == "" {
				report(SeverityError, "missing type")
			} else {
				// may be something the service added after this client
				report(SeverityWarning, "unknown type %q", action.Type)
			}
		}

		switch action.Type {
		case scrappey.ActionIf:
			if action.Condition == "" {
				report(SeverityError, "if without condition")
			}
			if len(action.Then) == 0 && len(action.Or) == 0 {
				report(SeverityWarning, "if with empty branches")
			}
		case scrappey.ActionWhile:
			if action.Condition == "" {
				report(SeverityError, "while without condition")
			}
			if action.MaxAttempts <= 0 {
				report(SeverityError, "while without a positive maxAttempts may never terminate")
			}
			if len(action.Or) > 0 {
				report(SeverityWarning, "or branch is ignored on while")
			}
			if len(action.Then) == 0 {
				report(SeverityWarning, "while with empty body")
			}
		default:
			if len(action.Then) > 0 || len(action.Or) > 0 {
				report(SeverityWarning, "branches on %q are ignored", action.Type)
			}
		}

		lint(path+".then", action.Then, issues)
		lint(path+".or", action.Or, issues)
	}
}

// HasErrors reports whether any of the issues is an error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}
