package hostinput

import (
	"testing"

	"github.com/lxn/win"
	"github.com/stretchr/testify/require"

	"github.com/frudas24/deskpointer/internal/input"
)

// TestSendInputFlags verifies each button uses its own down and up flags.
func TestSendInputFlags(t *testing.T) {
	cases := []struct {
		button   input.Button
		down, up uint32
	}{
		{input.ButtonLeft, win.MOUSEEVENTF_LEFTDOWN, win.MOUSEEVENTF_LEFTUP},
		{input.ButtonMiddle, win.MOUSEEVENTF_MIDDLEDOWN, win.MOUSEEVENTF_MIDDLEUP},
		{input.ButtonRight, win.MOUSEEVENTF_RIGHTDOWN, win.MOUSEEVENTF_RIGHTUP},
	}
	for _, tc := range cases {
		down, up, err := sendInputFlags(tc.button)
		require.NoError(t, err)
		require.Equal(t, tc.down, down, tc.button.String())
		require.Equal(t, tc.up, up, tc.button.String())
	}

	_, _, err := sendInputFlags(input.Button(7))
	require.Error(t, err)
}
