package wizard

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/kode4food/learnable/pkg/api"
)

type (
	// Rules maps a step field to validator tags, such as "required" or
	// "oneof=Yes No"
	Rules map[string]string

	// FieldErrors maps a step field to its validation message
	FieldErrors map[string]string
)

const notBlankTag = "notblank"

const (
	ruleYes = "Yes"
	ruleNo  = "No"
)

// ErrInvalidRule reports a rule the validator could not apply to a value
var ErrInvalidRule = errors.New("invalid rule")

var validate, translator = newValidator()

var messages = map[string]string{
	"required":  "This field is required",
	notBlankTag: "This field cannot be blank",
	"oneof":     "Please select one of: {0}",
	"max":       "Must be at most {0} characters",
	"min":       "Must be at least {0} characters",
	"email":     "Must be a valid email address",
}

func newValidator() (*validator.Validate, ut.Translator) {
	v := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation(notBlankTag, notBlank)
	for tag, text := range messages {
		registerTranslation(v, trans, tag, text)
	}
	return v, trans
}

func registerTranslation(
	v *validator.Validate, trans ut.Translator, tag, text string,
) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

func notBlank(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return !fl.Field().IsZero()
}

// Check validates values against the rules. Fields are checked in name
// order so the outcome is stable
func (r Rules) Check(values Values) FieldErrors {
	var res FieldErrors
	for _, field := range slices.Sorted(maps.Keys(r)) {
		err := checkVar(ruleValue(values[field]), r[field])
		if err == nil {
			continue
		}
		var errs validator.ValidationErrors
		msg := err.Error()
		if errors.As(err, &errs) && len(errs) > 0 {
			msg = errs[0].Translate(translator)
		}
		if res == nil {
			res = FieldErrors{}
		}
		res[field] = msg
	}
	return res
}

// Record converts field errors into a Validation ErrorRecord whose message
// is the first field's message
func (fe FieldErrors) Record() *api.ErrorRecord {
	if len(fe) == 0 {
		return nil
	}
	first := slices.Sorted(maps.Keys(fe))[0]
	return &api.ErrorRecord{
		Kind:    api.ErrorValidation,
		Message: fe[first],
		Raw:     map[string]string(fe),
	}
}

// ruleValue presents a field to the validator. Booleans read as Yes or
// No and other scalars as their text, so choice tags apply to all of them
func ruleValue(v any) any {
	switch val := v.(type) {
	case string, *api.File:
		return val
	case bool:
		if val {
			return ruleYes
		}
		return ruleNo
	case nil:
		return nil
	default:
		return toString(val)
	}
}

func checkVar(value any, tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrInvalidRule, tag, r)
		}
	}()
	return validate.Var(value, tag)
}

func (s *Step) check(values Values) FieldErrors {
	fe := s.Rules.Check(values)
	for field := range fe {
		if msg, ok := s.Messages[field]; ok {
			fe[field] = msg
		}
	}
	return fe
}
