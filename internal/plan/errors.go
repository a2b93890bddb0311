package plan

import (
	"fmt"
	"strings"

	"sakurareel/internal/assets"
)

// NoAssetsError reports an empty inventory for a kind the plan requires.
type NoAssetsError struct {
	Kind string
	Dir  string
}

func (e *NoAssetsError) Error() string {
	if e.Dir != "" {
		exts := assets.Extensions(assets.Kind(e.Kind))
		return fmt.Sprintf("no %s assets found in %s (looking for %s)", e.Kind, e.Dir, strings.Join(exts, " "))
	}
	return fmt.Sprintf("no %s assets available", e.Kind)
}

// InvalidDurationError reports a target length or segment range that cannot
// produce a plan.
type InvalidDurationError struct {
	Target  float64
	Head    float64
	Tail    float64
	Message string
}

func (e *InvalidDurationError) Error() string {
	if e.Message != "" {
		return "invalid duration: " + e.Message
	}
	return fmt.Sprintf("invalid duration: target %.2fs leaves no content after %.2fs title and %.2fs ending",
		e.Target, e.Head, e.Tail)
}
