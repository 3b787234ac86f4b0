package agent

import (
	"errors"

	"customer-service-be/pkg/catalog"
)

var (
	// ErrEmptyMessage is returned before any work when the user text is blank.
	ErrEmptyMessage = errors.New("message must not be empty")

	// ErrGeneration means the model call failed, timed out or returned nothing.
	// History is untouched when it is returned.
	ErrGeneration = errors.New("response generation failed")

	// ErrRetrieval never leaves ProcessMessage; searches fail closed.
	ErrRetrieval = catalog.ErrRetrieval

	// ErrPersistence means the session history could not be read or written.
	ErrPersistence = errors.New("conversation history unavailable")
)
