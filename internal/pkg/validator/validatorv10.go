package validator

import (
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

// Shape checks only; the auth entity normalizes phone numbers.
var (
	rePhone   = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]{7,22}$`)
	reOTPCode = regexp.MustCompile(`^[0-9]{6}$`)
)

var ErrTranslatorNotFound = errors.New("validator: translator not found")

// V10ValidationError maps snake_case field names to English messages.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	keys := lo.Keys(map[string]string(vs))
	slices.Sort(keys)
	parts := lo.Map(keys, func(k string, _ int) string { return k + ": " + vs[k] })
	return "validation error: " + strings.Join(parts, "; ")
}

func (vs V10ValidationError) Values() map[string]string { return vs }

// rule is a regexp-backed custom tag with its English message.
type rule struct {
	tag     string
	re      *regexp.Regexp
	message string
}

var rules = []rule{
	{tag: "phone_kr", re: rePhone, message: "{0} must be a valid mobile phone number"},
	{tag: "otp_code", re: reOTPCode, message: "{0} must be exactly 6 digits"},
}

// V10Validator is the go-playground/validator backed Validator.
type V10Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	locale := en.New()
	trans, ok := ut.New(locale, locale).GetTranslator(locale.Locale())
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	for _, r := range rules {
		if err := r.register(validate, trans); err != nil {
			return nil, err
		}
	}

	return &V10Validator{validate: validate, trans: trans}, nil
}

func (r rule) register(validate *validator.Validate, trans ut.Translator) error {
	re := r.re
	err := validate.RegisterValidation(r.tag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && re.MatchString(s)
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation(r.tag, trans,
		func(t ut.Translator) error { return t.Add(r.tag, r.message, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("failed to translate validation error", "tag", fe.Tag(), "error", err)
				return fe.Error()
			}
			return msg
		},
	)
}

// Validate returns a V10ValidationError when data violates its tags.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[lo.SnakeCase(fe.Field())] = fe.Translate(v.trans)
	}
	return out
}
