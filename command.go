package chronosync

import (
	"fmt"

	"github.com/pkg/errors"
)

// CommandLen is the length of every sync command on the wire.
const CommandLen = 12

// Command returns the chronograph command that sets its clock to hour:minute:00,
// e.g. "\rATST143500\r" for 14:35.
func Command(hour, minute int) ([]byte, error) {
	if hour < 0 || hour > 23 {
		return nil, errors.Errorf("hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return nil, errors.Errorf("minute %d out of range", minute)
	}
	return []byte(fmt.Sprintf("\rATST%02d%02d00\r", hour, minute)), nil
}
