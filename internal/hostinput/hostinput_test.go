package hostinput

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// TestOpen_UnknownDriver verifies an unrecognised name is rejected before touching any device.
func TestOpen_UnknownDriver(t *testing.T) {
	dev, err := Open("joystick", zerolog.Nop())
	require.ErrorIs(t, err, ErrUnknownDriver)
	require.Nil(t, dev)
}

// TestAutoOrder verifies per-platform candidate order.
func TestAutoOrder(t *testing.T) {
	require.Equal(t, []string{DriverSendInput, DriverRobotgo}, autoOrder("windows", false))
	require.Equal(t, []string{DriverWayland, DriverUinput, DriverRobotgo}, autoOrder("linux", true))
	require.Equal(t, []string{DriverUinput, DriverRobotgo}, autoOrder("linux", false))
	require.Equal(t, []string{DriverRobotgo}, autoOrder("darwin", false))
}

// TestAutoOrder_KnownDrivers verifies every auto candidate has an opener.
func TestAutoOrder_KnownDrivers(t *testing.T) {
	for _, goos := range []string{"windows", "linux", "darwin"} {
		for _, wl := range []bool{true, false} {
			for _, name := range autoOrder(goos, wl) {
				require.Contains(t, openers, name)
			}
		}
	}
	for _, name := range Drivers() {
		require.Contains(t, openers, name)
	}
}
