package weather

import "errors"

var (
	// ErrEmptyQuery is returned for a blank search term; nothing was called.
	ErrEmptyQuery = errors.New("empty search term")

	// ErrNotFound means the geocoder had no match for the search term.
	ErrNotFound = errors.New("city not found")

	// ErrConnectivity means the forecast could not be fetched. Retrying the
	// same action is safe.
	ErrConnectivity = errors.New("connection failed")

	// ErrPermissionDenied is returned when a user-triggered detection cannot
	// obtain a position.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrLocationUnavailable is reported by a Locator that has no position.
	ErrLocationUnavailable = errors.New("location unavailable")

	errMisaligned = errors.New("forecast series are not aligned")
)
