// Package validator validates request and usecase input structs.
//
// Usecases depend on the Validator interface; V10Validator backs it with
// go-playground/validator and renders field errors in English keyed by the
// snake_case field name.
package validator

// Validator checks struct tags and returns a V10ValidationError on violation.
type Validator interface {
	Validate(data any) error
}
