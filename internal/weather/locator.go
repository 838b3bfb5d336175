package weather

import (
	"context"
	"fmt"
)

// Position is a Locator for a position the client already obtained.
type Position struct {
	Latitude  float64
	Longitude float64
}

func (p Position) Locate(context.Context) (float64, float64, error) {
	return p.Latitude, p.Longitude, nil
}

// LocatorError is a Locator for a client that could not obtain a position.
type LocatorError struct {
	Err    error // ErrPermissionDenied or ErrLocationUnavailable
	Reason string
}

func (l LocatorError) Locate(context.Context) (float64, float64, error) {
	err := l.Err
	if err == nil {
		err = ErrLocationUnavailable
	}
	if l.Reason != "" {
		return 0, 0, fmt.Errorf("%w: %s", err, l.Reason)
	}
	return 0, 0, err
}
