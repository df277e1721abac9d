package changerequest

import (
	"fmt"

	"procurement/internal/pkg/errs"
)

// Status is shared by change requests and their reviews.
//
//	Proposed ──> Approved
//	    └──────> Rejected
//
// Approved and Rejected are terminal.
type Status int

const (
	Unknown Status = iota
	Proposed
	Approved
	Rejected
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:  "Unknown",
		Proposed: "Proposed",
		Approved: "Approved",
		Rejected: "Rejected",
	}
}

func ParseStatus(name string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("change status", fmt.Errorf("%q is not a valid change status", name))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Rejected {
		return errs.NewValueIsInvalidErrorWithCause("change status", fmt.Errorf("%d is not a valid change status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

func (s Status) IsTerminal() bool {
	return s == Approved || s == Rejected
}
