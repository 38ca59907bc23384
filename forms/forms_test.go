package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/store"
)

func validRegistration() Registration {
	return Registration{
		Name:            "Alice",
		Email:           "alice@example.com",
		Phone:           "555-0100",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestRegistration_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Registration)
		want   FieldErrors
	}{
		{name: "valid", modify: func(r *Registration) {}},
		{
			name:   "blank name",
			modify: func(r *Registration) { r.Name = "   " },
			want:   FieldErrors{"name": "Name is required"},
		},
		{
			name:   "missing email",
			modify: func(r *Registration) { r.Email = "" },
			want:   FieldErrors{"email": "Valid email is required"},
		},
		{
			name:   "malformed email",
			modify: func(r *Registration) { r.Email = "alice@" },
			want:   FieldErrors{"email": "Valid email is required"},
		},
		{
			name:   "padded email is accepted",
			modify: func(r *Registration) { r.Email = "  alice@example.com " },
		},
		{
			name:   "missing phone",
			modify: func(r *Registration) { r.Phone = "" },
			want:   FieldErrors{"phone": "Phone number is required"},
		},
		{
			name: "short password",
			modify: func(r *Registration) {
				r.Password = "12345"
				r.ConfirmPassword = "12345"
			},
			want: FieldErrors{"password": "Password must be at least 6 characters"},
		},
		{
			name:   "mismatched confirmation",
			modify: func(r *Registration) { r.ConfirmPassword = "secret2" },
			want:   FieldErrors{"confirmPassword": "Passwords do not match"},
		},
		{
			name:   "everything wrong",
			modify: func(r *Registration) { *r = Registration{ConfirmPassword: "x"} },
			want: FieldErrors{
				"name":            "Name is required",
				"email":           "Valid email is required",
				"phone":           "Phone number is required",
				"password":        "Password must be at least 6 characters",
				"confirmPassword": "Passwords do not match",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.modify(&r)

			err := r.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.want, fe)
		})
	}
}

func TestRegistration_Account(t *testing.T) {
	r := validRegistration()
	r.Email = " alice@example.com "

	assert.Equal(t, store.Account{
		Profile:  store.Profile{Name: "Alice", Email: "alice@example.com", Phone: "555-0100"},
		Password: "secret1",
	}, r.Account())
}

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, Credentials{Email: "a@b.co", Password: "x"}.Validate())

	err := Credentials{}.Validate()
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldErrors{"email": "Email is required", "password": "Password is required"}, fe)
}

func TestFieldErrors_Error(t *testing.T) {
	err := FieldErrors{"phone": "Phone number is required", "email": "Valid email is required"}
	assert.Equal(t, "invalid form: email: Valid email is required; phone: Phone number is required", err.Error())
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestSubmission_Steps(t *testing.T) {
	s := NewSubmission()
	require.Len(t, s.Ingredients, 3)

	assert.False(t, s.StepValid(StepDetails))
	assert.False(t, s.StepValid(StepIngredients))
	assert.False(t, s.StepValid(StepInstructions))

	s.Name = "Shakshuka"
	assert.False(t, s.StepValid(StepDetails), "category still missing")
	s.Category = "Brunch"
	assert.False(t, s.StepValid(StepDetails), "category must be one of the list")
	s.Category = "Breakfast"
	assert.True(t, s.StepValid(StepDetails))

	s.Ingredients[1] = "  "
	assert.False(t, s.StepValid(StepIngredients), "blank rows do not count")
	s.Ingredients[2] = "Eggs"
	assert.True(t, s.StepValid(StepIngredients))

	s.Instructions = "Simmer the tomatoes, crack in the eggs."
	assert.True(t, s.StepValid(StepInstructions))
	assert.NoError(t, s.Validate())
	assert.Equal(t, []string{"Eggs"}, s.FilledIngredients())
}

func TestSubmission_ValidateStep(t *testing.T) {
	s := NewSubmission()

	err := s.ValidateStep(StepDetails)
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldErrors{"name": "Recipe name is required", "category": "Select a category"}, fe)

	err = s.ValidateStep(StepIngredients)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldErrors{"ingredients": "Add at least one ingredient"}, fe)

	err = s.ValidateStep(7)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "Unknown step 7")
}

func TestStepNavigation(t *testing.T) {
	assert.Equal(t, 2, NextStep(1))
	assert.Equal(t, 3, NextStep(2))
	assert.Equal(t, 3, NextStep(3))
	assert.Equal(t, 1, NextStep(-4))
	assert.Equal(t, 1, PrevStep(1))
	assert.Equal(t, 2, PrevStep(3))
	assert.Equal(t, 3, PrevStep(9))

	s := NewSubmission()
	step, err := s.Advance(StepDetails)
	assert.Equal(t, StepDetails, step)
	assert.ErrorIs(t, err, ErrInvalid)

	s.Name, s.Category = "Tea", "Beverage"
	step, err = s.Advance(StepDetails)
	require.NoError(t, err)
	assert.Equal(t, StepIngredients, step)
}

type recordingSink struct {
	got []Submission
	err error
}

func (r *recordingSink) Submit(ctx context.Context, s Submission) error {
	r.got = append(r.got, s)
	return r.err
}

func completeSubmission() Submission {
	return Submission{
		Name:         "Masala Chai",
		Category:     "Beverage",
		Ingredients:  []string{"Tea", "", "Cardamom"},
		Instructions: "Boil everything together.",
	}
}

func TestAccept(t *testing.T) {
	ctx := context.Background()

	t.Run("valid submission", func(t *testing.T) {
		sink := &recordingSink{}
		got, err := Accept(ctx, sink, completeSubmission())
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.False(t, got.SubmittedAt.IsZero())
		require.Len(t, sink.got, 1)
		assert.Equal(t, got, sink.got[0])
	})

	t.Run("invalid submission never reaches the sink", func(t *testing.T) {
		sink := &recordingSink{}
		_, err := Accept(ctx, sink, NewSubmission())
		require.ErrorIs(t, err, ErrInvalid)
		assert.Empty(t, sink.got)
	})

	t.Run("sink failure", func(t *testing.T) {
		sink := &recordingSink{err: errors.New("webhook down")}
		_, err := Accept(ctx, sink, completeSubmission())
		require.ErrorIs(t, err, sink.err)
		assert.NotErrorIs(t, err, ErrInvalid)
	})

	t.Run("log sink", func(t *testing.T) {
		_, err := Accept(ctx, LogSink{}, completeSubmission())
		assert.NoError(t, err)
	})
}
