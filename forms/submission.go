package forms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wizard steps.
const (
	StepDetails      = 1
	StepIngredients  = 2
	StepInstructions = 3
)

// SubmissionCategories are the categories a submitted recipe can be filed under.
var SubmissionCategories = []string{"Breakfast", "Lunch", "Dinner", "Dessert", "Snack", "Beverage"}

// Submission is a user-contributed recipe collected over three steps.
type Submission struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name" validate:"notblank"`
	Category     string    `json:"category" validate:"required,oneof=Breakfast Lunch Dinner Dessert Snack Beverage"`
	Ingredients  []string  `json:"ingredients" validate:"anynotblank"`
	Instructions string    `json:"instructions" validate:"notblank"`
	Images       []string  `json:"images,omitempty"`
	SubmittedAt  time.Time `json:"submitted_at,omitzero"`
}

var submissionMessages = map[string]string{
	"name":         "Recipe name is required",
	"category":     "Select a category",
	"ingredients":  "Add at least one ingredient",
	"instructions": "Instructions are required",
}

var stepFields = map[int][]string{
	StepDetails:      {"name", "category"},
	StepIngredients:  {"ingredients"},
	StepInstructions: {"instructions"},
}

// NewSubmission returns an empty form with three blank ingredient rows.
func NewSubmission() Submission {
	return Submission{Ingredients: []string{"", "", ""}}
}

// Validate checks every step.
func (s Submission) Validate() error {
	return check(s, submissionMessages)
}

// ValidateStep checks only the fields collected on step.
func (s Submission) ValidateStep(step int) error {
	fields, ok := stepFields[step]
	if !ok {
		return FieldErrors{"step": fmt.Sprintf("Unknown step %d", step)}
	}

	err := s.Validate()
	all, ok := err.(FieldErrors)
	if !ok {
		return err
	}

	out := FieldErrors{}
	for _, f := range fields {
		if msg, ok := all[f]; ok {
			out[f] = msg
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// StepValid reports whether step can be left with Next.
func (s Submission) StepValid(step int) bool {
	return s.ValidateStep(step) == nil
}

// NextStep moves forward one step, stopping at the last.
func NextStep(step int) int { return min(max(step+1, StepDetails), StepInstructions) }

// PrevStep moves back one step, stopping at the first.
func PrevStep(step int) int { return max(min(step-1, StepInstructions), StepDetails) }

// Advance returns the step after step when the current one is valid. Otherwise it stays
// on step and returns the step's FieldErrors.
func (s Submission) Advance(step int) (int, error) {
	if err := s.ValidateStep(step); err != nil {
		return step, err
	}
	return NextStep(step), nil
}

// FilledIngredients returns the non-blank ingredient rows, trimmed.
func (s Submission) FilledIngredients() []string {
	out := make([]string, 0, len(s.Ingredients))
	for _, ing := range s.Ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			out = append(out, ing)
		}
	}
	return out
}

// Sink receives accepted submissions.
type Sink interface {
	Submit(ctx context.Context, s Submission) error
}

// Accept validates s, stamps it with an id and time, and hands it to sink.
func Accept(ctx context.Context, sink Sink, s Submission) (Submission, error) {
	if err := s.Validate(); err != nil {
		return s, err
	}
	s.ID = uuid.NewString()
	s.SubmittedAt = time.Now().UTC()
	if err := sink.Submit(ctx, s); err != nil {
		return s, fmt.Errorf("submit recipe: %w", err)
	}
	return s, nil
}
