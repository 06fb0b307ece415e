// Package hostinput opens the platform pointer device that injects relative motion and clicks.
package hostinput

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/frudas24/deskpointer/internal/actuator"
)

// Driver names accepted by Open.
const (
	DriverAuto      = "auto"
	DriverRobotgo   = "robotgo"
	DriverUinput    = "uinput"
	DriverWayland   = "wayland"
	DriverSendInput = "sendinput"
)

var (
	// ErrUnsupported reports a driver that is not available in this build or on this platform.
	ErrUnsupported = errors.New("pointer driver not supported on this platform")
	// ErrUnknownDriver reports a driver name Open does not recognise.
	ErrUnknownDriver = errors.New("unknown pointer driver")
)

type opener func(log zerolog.Logger) (actuator.Device, error)

// openers maps driver names to their platform constructors.
var openers = map[string]opener{
	DriverRobotgo:   openRobotgo,
	DriverUinput:    openUinput,
	DriverWayland:   openWayland,
	DriverSendInput: openSendInput,
}

// Drivers lists the explicit driver names.
func Drivers() []string {
	return []string{DriverRobotgo, DriverUinput, DriverWayland, DriverSendInput}
}

// Open returns the device for driver. DriverAuto tries the platform candidates in order and
// returns the first that opens.
func Open(driver string, log zerolog.Logger) (actuator.Device, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverAuto
	}
	if driver != DriverAuto {
		open, ok := openers[driver]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
		}
		dev, err := open(log)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", driver, err)
		}
		log.Info().Str("driver", driver).Msg("pointer device ready")
		return dev, nil
	}

	var errs []error
	for _, name := range autoOrder(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "") {
		dev, err := openers[name](log)
		if err != nil {
			log.Debug().Err(err).Str("driver", name).Msg("pointer driver unavailable")
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		log.Info().Str("driver", name).Msg("pointer device ready")
		return dev, nil
	}
	return nil, fmt.Errorf("no pointer driver available: %w", errors.Join(errs...))
}

// autoOrder returns the drivers tried by DriverAuto.
func autoOrder(goos string, wayland bool) []string {
	switch goos {
	case "windows":
		return []string{DriverSendInput, DriverRobotgo}
	case "linux":
		if wayland {
			return []string{DriverWayland, DriverUinput, DriverRobotgo}
		}
		return []string{DriverUinput, DriverRobotgo}
	default:
		return []string{DriverRobotgo}
	}
}
