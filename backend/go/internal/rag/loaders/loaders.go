package loaders

import "errors"

// ErrUnreadable is returned when a document's bytes cannot be parsed by its loader.
var ErrUnreadable = errors.New("document cannot be read")
