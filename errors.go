package drawtest

import "errors"

var (
	// ErrDuplicateCase is returned by Registry.Add when a case with the
	// same name is already registered.
	ErrDuplicateCase = errors.New("drawtest: duplicate case")

	// ErrInvalidSpec is returned when a case is built from a spec that
	// fails DrawTestSpec.Valid.
	ErrInvalidSpec = errors.New("drawtest: invalid spec")
)
