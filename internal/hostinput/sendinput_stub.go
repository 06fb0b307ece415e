//go:build !windows

package hostinput

import (
	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
)

func openSendInput(zerolog.Logger) (actuator.Device, error) {
	return nil, ErrUnsupported
}
