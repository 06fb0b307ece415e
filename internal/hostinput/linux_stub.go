//go:build !linux

package hostinput

import (
	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
)

func openUinput(zerolog.Logger) (actuator.Device, error) {
	return nil, ErrUnsupported
}

func openWayland(zerolog.Logger) (actuator.Device, error) {
	return nil, ErrUnsupported
}
