package profile

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for profile documents.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs the struct tag rules and flattens the result into a
// single readable error.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// Validate cross-checks a manifest against its profile: every action must
// name a declared target and action ids must be unique.
func Validate(profile *types.Profile, manifest *types.Manifest) error {
	seen := make(map[string]bool, len(manifest.Actions))
	for _, action := range manifest.Actions {
		if seen[action.ID] {
			return errors.Newf(errors.ErrManifestInvalid, "Duplicate action id '%s'", action.ID).WithAction(action.ID)
		}
		seen[action.ID] = true

		if _, ok := profile.Targets[action.Target]; !ok {
			return errors.Newf(errors.ErrUnknownTarget, "Unknown target '%s' in action '%s'", action.Target, action.ID).
				WithAction(action.ID)
		}
	}
	return nil
}
