package docxedit

import "errors"

var (
	ErrFormat                  = errors.New("docxedit: invalid document package")
	ErrMalformedRepresentation = errors.New("docxedit: malformed representation")
	ErrLimitExceeded           = errors.New("docxedit: limit exceeded")

	ErrInvalidMagic       = errors.New("docxedit: invalid envelope magic")
	ErrUnsupportedVersion = errors.New("docxedit: unsupported envelope version")
	ErrInvalidHeader      = errors.New("docxedit: invalid envelope header")
	ErrInvalidPayload     = errors.New("docxedit: invalid envelope payload")
)
