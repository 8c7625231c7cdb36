package pipeline

import "fmt"

// Step identifies the pipeline stage an error originated from.
type Step string

const (
	StepClassify Step = "classify"
	StepRetrieve Step = "retrieve"
	StepGenerate Step = "generate"
	StepValidate Step = "validate"
)

// StepError wraps a failure with the stage and query it belongs to so
// callers can report which part of the pipeline broke.
type StepError struct {
	Step  Step
	Query string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline step %s failed for query %q: %v", e.Step, e.Query, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step Step, query string, err error) *StepError {
	return &StepError{Step: step, Query: query, Err: err}
}
