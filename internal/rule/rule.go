// Package rule implements the rule engine: the orchestration that
// runs one rule against one front-matter value, in order (clone, condition,
// template, action-parse, execute, classify), plus a round-trip
// self-validation pass (re-encoding the mutated value through the
// front-matter codec once before a success/warning result is returned, so
// a codec failure never reaches the host as a silent corruption).
package rule

import (
	"time"

	"github.com/frontmatter-rules/engine/internal/action"
	"github.com/frontmatter-rules/engine/internal/condition"
	"github.com/frontmatter-rules/engine/internal/frontmatter"
	"github.com/frontmatter-rules/engine/internal/path"
	"github.com/frontmatter-rules/engine/internal/ruleerr"
	"github.com/frontmatter-rules/engine/internal/template"
	"github.com/frontmatter-rules/engine/internal/value"
)

// Rule is one condition/action pair, as it would appear in the rule
// storage record's `rules` array.
type Rule struct {
	ID        string
	Condition string
	Action    string
}

// FileContext is the host-supplied context a template expansion draws
// file-derived variables from.
type FileContext struct {
	Basename  string
	Path      string
	Folder    string
	VaultName string
}

func (fc FileContext) templateContext() template.Context {
	return template.Context{
		Filename: fc.Basename,
		Filepath: fc.Path,
		Folder:   fc.Folder,
		Vault:    fc.VaultName,
	}
}

// Limits bounds path/regex parsing and evaluation across every DSL stage
// a rule touches.
type Limits struct {
	Path      path.Limits
	Condition condition.Limits
}

// Status is one of the four classifications a rule application resolves
// to.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// FileResult is the outcome of applying one rule to one value.
type FileResult struct {
	Status        Status
	Modified      bool
	Changes       []string
	OriginalValue *value.Value
	NewValue      *value.Value
	Err           *ruleerr.RuleError
}

// skippedResult returns the result for a rule whose condition evaluated
// false (or whose action executed but genuinely changed nothing): the
// host must see newValue == originalValue on every path but success/warning.
func skippedResult(original *value.Value) FileResult {
	return FileResult{
		Status:        StatusSkipped,
		Modified:      false,
		OriginalValue: original,
		NewValue:      original,
	}
}

func errorResult(original *value.Value, err *ruleerr.RuleError) FileResult {
	return FileResult{
		Status:        StatusError,
		Modified:      false,
		OriginalValue: original,
		NewValue:      original,
		Err:           err,
	}
}

// Run applies rule to original under the given file context, clock
// reading, and limits. original is never mutated; on any error path the
// returned NewValue is original itself.
func Run(r Rule, original *value.Value, fc FileContext, now time.Time, limits Limits) FileResult {
	clone := original.Clone()

	var cond condition.Condition
	if r.Condition != "" {
		parsed, err := condition.Parse(r.Condition, limits.Path)
		if err != nil {
			return errorResult(original, ruleerr.ParseFrom(err))
		}
		cond = parsed

		ok, err := condition.Evaluate(cond, clone, limits.Condition)
		if err != nil {
			return errorResult(original, ruleerr.EvalFrom(err))
		}
		// The action text is never parsed, let alone executed, once the
		// condition is false.
		if !ok {
			return skippedResult(original)
		}
	}

	expanded, err := template.Expand(r.Action, fc.templateContext(), clone, now, limits.Path)
	if err != nil {
		return errorResult(original, ruleerr.EvalFrom(err))
	}

	act, err := action.Parse(expanded, limits.Path)
	if err != nil {
		return errorResult(original, ruleerr.ParseFrom(err))
	}

	result := action.Execute(act, &clone, limits.Condition)
	if !result.Success {
		return errorResult(original, ruleerr.ExecFrom(result.Err))
	}

	status := classify(result.Modified, result.Warning)
	if status == StatusSkipped {
		return skippedResult(original)
	}

	// Self-check: the mutated value must still round-trip through the
	// front-matter codec cleanly before the host is allowed to see it.
	if err := validateRoundTrip(clone); err != nil {
		return errorResult(original, ruleerr.ExecFrom(err))
	}

	fr := FileResult{
		Status:        status,
		Modified:      result.Modified,
		Changes:       result.Changes,
		OriginalValue: original,
		NewValue:      clone,
	}
	if result.Warning != "" {
		fr.Err = ruleerr.Warn(result.Warning)
	}
	return fr
}

func classify(modified bool, warning string) Status {
	switch {
	case !modified && warning == "":
		return StatusSkipped
	case !modified && warning != "":
		return StatusWarning
	case modified && warning == "":
		return StatusSuccess
	default: // modified && warning != ""
		return StatusWarning
	}
}

func validateRoundTrip(v *value.Value) error {
	joined, err := frontmatter.Join(v, "")
	if err != nil {
		return err
	}
	if _, _, err := frontmatter.Split(joined); err != nil {
		return err
	}
	return nil
}
