//go:build !cgo || norobotgo

package hostinput

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
)

func openRobotgo(zerolog.Logger) (actuator.Device, error) {
	return nil, fmt.Errorf("robotgo not built (needs cgo, no norobotgo tag): %w", ErrUnsupported)
}
