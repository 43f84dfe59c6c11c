package llm

import "fmt"

// GenerationError indicates the generation endpoint was unreachable or
// returned an empty response for a step. The transcript is not marked
// processed when one of these surfaces, so the run can be repeated safely.
type GenerationError struct {
	Step StepKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for step %s: %v", e.Step, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
