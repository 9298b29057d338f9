// Package input checks user supplied values before they reach the ledger.
// The ledger itself trusts whatever it is given.
package input

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxNameLength = 32
	MaxInfoLength = 64
	// MaxDays keeps expiry dates within four digit years.
	MaxDays = 1_000_000
)

var clientNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Validator knows the seller allow-list of one configuration.
type Validator struct {
	validate *validator.Validate
	sellers  []string
}

func NewValidator(sellers []string) *Validator {
	v := &Validator{
		validate: validator.New(),
		sellers:  append([]string(nil), sellers...),
	}

	// Registration only fails for empty tags or nil functions.
	_ = v.validate.RegisterValidation("clientname", func(fl validator.FieldLevel) bool {
		return clientNamePattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("seller", func(fl validator.FieldLevel) bool {
		return slices.Contains(v.sellers, fl.Field().String())
	})

	return v
}

// Name checks a client name: non-empty, at most MaxNameLength characters of
// letters, digits, '_', '-' and '.'.
func (v *Validator) Name(name string) error {
	if err := v.validate.Var(name, fmt.Sprintf("required,max=%d,clientname", MaxNameLength)); err != nil {
		return fmt.Errorf("invalid client name %q: %s", name, describe(err))
	}
	return nil
}

// Seller checks that seller is on the configured allow-list.
func (v *Validator) Seller(seller string) error {
	if err := v.validate.Var(seller, "required,seller"); err != nil {
		return fmt.Errorf("invalid seller %q: must be one of %s", seller, strings.Join(v.sellers, ", "))
	}
	return nil
}

// Info checks the length of a client annotation. Empty is allowed.
func (v *Validator) Info(info string) error {
	if err := v.validate.Var(info, fmt.Sprintf("max=%d", MaxInfoLength)); err != nil {
		return fmt.Errorf("invalid info: %s", describe(err))
	}
	return nil
}

// Days checks a day count given to add, renew or edit.
func (v *Validator) Days(days uint32) error {
	if err := v.validate.Var(days, fmt.Sprintf("max=%d", MaxDays)); err != nil {
		return fmt.Errorf("invalid days %d: must be at most %d", days, MaxDays)
	}
	return nil
}

// Client checks every field of a client form at once.
func (v *Validator) Client(name, seller, info string) error {
	if err := v.Name(name); err != nil {
		return err
	}
	if err := v.Seller(seller); err != nil {
		return err
	}
	return v.Info(info)
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}

	switch fe := verrs[0]; fe.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "clientname":
		return "only letters, digits, '_', '-' and '.' are allowed"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
