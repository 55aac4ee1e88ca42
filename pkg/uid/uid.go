package uid

import (
	"fmt"
	"time"

	"github.com/sony/sonyflake"
)

// UID generates unique, time ordered ids.
type UID interface {
	NextID() (uint64, error)
}

var _ UID = (*sonyflake.Sonyflake)(nil)

// StartTime is the epoch of every generated id. Changing it breaks ordering of stored ids.
var StartTime = time.Date(2021, 6, 28, 0, 0, 0, 0, time.UTC)

// NewSonyflake returns a sonyflake generator using machineID when it is not zero,
// otherwise the lower 16 bits of the private IP address.
func NewSonyflake(machineID uint16) (UID, error) {
	settings := sonyflake.Settings{
		StartTime: StartTime,
	}

	if machineID > 0 {
		settings.MachineID = func() (uint16, error) {
			return machineID, nil
		}
	}

	gen := sonyflake.NewSonyflake(settings)
	if gen == nil {
		return nil, fmt.Errorf("sonyflake cannot be created")
	}

	return gen, nil
}
