package geo

import (
	"context"
	"errors"
)

var (
	// ErrUnsupported means no geolocation source is available.
	ErrUnsupported = errors.New("geolocation unsupported")
	// ErrPermissionDenied means the user refused to share a position.
	ErrPermissionDenied = errors.New("geolocation permission denied")
)

// Locator yields the current position of the user.
type Locator interface {
	Locate(ctx context.Context) (LatLng, error)
}

// StaticLocator always reports the same position.
type StaticLocator struct {
	Position LatLng
}

func (s StaticLocator) Locate(ctx context.Context) (LatLng, error) {
	if err := ctx.Err(); err != nil {
		return LatLng{}, err
	}
	return s.Position, nil
}

// DeniedLocator behaves like a user who refused the permission prompt.
type DeniedLocator struct{}

func (DeniedLocator) Locate(ctx context.Context) (LatLng, error) {
	return LatLng{}, ErrPermissionDenied
}

// NoLocator is used when geolocation is switched off.
type NoLocator struct{}

func (NoLocator) Locate(ctx context.Context) (LatLng, error) {
	return LatLng{}, ErrUnsupported
}

// Mode names accepted by NewLocator.
const (
	ModeStatic = "static"
	ModeDenied = "denied"
	ModeOff    = "off"
)

// NewLocator picks a Locator for a configured mode. Unknown modes fall
// back to NoLocator.
func NewLocator(mode string, pos LatLng) Locator {
	switch mode {
	case ModeStatic:
		return StaticLocator{Position: pos}
	case ModeDenied:
		return DeniedLocator{}
	default:
		return NoLocator{}
	}
}
