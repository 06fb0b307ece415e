package hostinput

import (
	"fmt"

	"github.com/frudas24/deskpointer/internal/input"
)

// robotgoButton returns the robotgo mouse name for button. robotgo treats unknown names as the
// left button, so the middle button must be spelled "center".
func robotgoButton(button input.Button) (string, error) {
	switch button {
	case input.ButtonLeft:
		return "left", nil
	case input.ButtonMiddle:
		return "center", nil
	case input.ButtonRight:
		return "right", nil
	default:
		return "", fmt.Errorf("robotgo: unsupported %s", button)
	}
}
