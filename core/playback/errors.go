package playback

import (
	"errors"
	"fmt"
)

// ErrUnknownChannel means no plugin is registered for a content's channel id.
var ErrUnknownChannel = errors.New("no channel plugin registered for channel id")

// DeviceError reports a failed protocol call against a device. Status 0 means
// the device could not be reached at all; any other value is the non-success
// HTTP status the device returned. A mid-sequence failure aborts the remaining
// steps; already-sent steps cannot be rolled back.
type DeviceError struct {
	Device string
	Step   string // description of the failing step, empty for single calls
	Status int
	Err    error
}

func (e *DeviceError) Error() string {
	where := e.Device
	if e.Step != "" {
		where = fmt.Sprintf("%s at %s", e.Device, e.Step)
	}
	if e.Status != 0 {
		return fmt.Sprintf("device %s rejected command: status %d", where, e.Status)
	}
	return fmt.Sprintf("device %s unreachable: %v", where, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Unreachable reports whether the failure was a transport failure rather than
// a rejection by the device.
func (e *DeviceError) Unreachable() bool { return e.Status == 0 }
