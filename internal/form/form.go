// Package form turns the raw strings typed into the "new person" and
// "edit person" forms into a valid types.Person.
//
// The caller owns the result: Validator.Person never touches the registry.
// The HTTP handler decides what to do with the returned Person (add it, or
// use it to overwrite the selected record).
//
// RULES (checked in this order, the first failure wins):
//  1. name, surname and age must all be non-empty   → ErrEmptyField
//  2. name and surname may only hold letters/spaces → ErrInvalidNameCharacters
//  3. age must be a base-10 integer                  → ErrInvalidAge
//  4. age must lie in [0, maxAge]                    → ErrInvalidAge
package form

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/aanand-mishra/people-registry/internal/types"
	"github.com/go-playground/validator/v10"
)

// Sentinel errors. Use errors.Is to tell them apart; the concrete value
// returned by Validator.Person is always a *FieldError wrapping one of them.
var (
	ErrEmptyField            = errors.New("field is required")
	ErrInvalidNameCharacters = errors.New("may only contain letters and spaces")
	ErrInvalidAge            = errors.New("must be a valid whole number")
)

// DefaultMaxAge is used when NewValidator is given a non-positive bound.
const DefaultMaxAge = 150

// nameTag is the custom validator tag for name and surname fields.
const nameTag = "personname"

// namePattern accepts ASCII letters, the Spanish accented vowels, ñ/Ñ and
// spaces. Anchored so the whole value has to match.
var namePattern = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ ]+$`)

// Input is the raw content of a person form. Every field is a string
// because that is what a text box gives us; Age is parsed later.
type Input struct {
	Name    string `json:"name"    validate:"required"`
	Surname string `json:"surname" validate:"required"`
	Age     string `json:"age"     validate:"required"`
}

// FieldError names the form field that failed and why.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validator checks form input. Build one with NewValidator and share it:
// the underlying *validator.Validate caches struct metadata and is safe for
// concurrent use.
type Validator struct {
	validate *validator.Validate
	maxAge   int
}

// NewValidator returns a Validator that accepts ages in [0, maxAge]. It
// panics if the name rule cannot be registered with the validator.
func NewValidator(maxAge int) *Validator {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("surname") rather than the Go
	// field name ("Surname") so messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, nameTag, func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: v, maxAge: maxAge}
}

// mustRegister is like v.RegisterValidation but panics if the rule cannot
// be registered, the same way regexp.MustCompile treats a bad pattern.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("form: register %q rule: %v", tag, err))
	}
}

// MaxAge returns the upper age bound this validator enforces.
func (v *Validator) MaxAge() int {
	return v.maxAge
}

// Person validates in and returns the Person it describes.
//
// Surrounding whitespace is trimmed from every field before any rule runs,
// so "  Ana " is stored as "Ana" and a name made only of spaces counts as
// empty. The same rules apply to both the create and the edit form.
func (v *Validator) Person(in Input) (types.Person, error) {
	in = Input{
		Name:    strings.TrimSpace(in.Name),
		Surname: strings.TrimSpace(in.Surname),
		Age:     strings.TrimSpace(in.Age),
	}

	// ── Rule 1: required fields ──────────────────────────────────────────
	if err := v.validate.Struct(in); err != nil {
		return types.Person{}, firstFieldError(err, ErrEmptyField)
	}

	// ── Rule 2: character class on name and surname ──────────────────────
	for _, f := range []struct{ field, value string }{
		{"name", in.Name},
		{"surname", in.Surname},
	} {
		if err := v.validate.Var(f.value, nameTag); err != nil {
			return types.Person{}, &FieldError{Field: f.field, Err: ErrInvalidNameCharacters}
		}
	}

	// ── Rule 3: age is a base-10 integer ─────────────────────────────────
	age, err := strconv.Atoi(in.Age)
	if err != nil {
		return types.Person{}, &FieldError{Field: "age", Err: ErrInvalidAge}
	}

	// ── Rule 4: age is within a realistic human range ────────────────────
	if err := v.validate.Var(age, fmt.Sprintf("min=0,max=%d", v.maxAge)); err != nil {
		return types.Person{}, &FieldError{
			Field: "age",
			Err:   fmt.Errorf("%w (between 0 and %d)", ErrInvalidAge, v.maxAge),
		}
	}

	return types.Person{Name: in.Name, Surname: in.Surname, Age: age}, nil
}

// firstFieldError converts the first validator.FieldError in err into a
// *FieldError carrying kind. Any other error (e.g. InvalidValidationError)
// is returned wrapped so it is never silently mistaken for user input.
func firstFieldError(err error, kind error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Err: kind}
	}
	return fmt.Errorf("form.Person: validate: %w", err)
}
