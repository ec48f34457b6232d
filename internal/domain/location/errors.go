package location

import "errors"

var (
	ErrLocationNotFound  = errors.New("location not found")
	ErrNoActiveLocations = errors.New("no active locations configured")
)
