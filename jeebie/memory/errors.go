package memory

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateRegion = errors.New("duplicate region")
	ErrUnknownRegion   = errors.New("unknown region")
	ErrOutOfRange      = errors.New("out of range")
	ErrRegionOverlap   = errors.New("region overlaps another region")
)

// RegionError records a rejected overlay operation.
type RegionError struct {
	Op     string
	Region string
	Err    error
	// Detail is an optional human readable explanation.
	Detail string
}

func (e *RegionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Region, e.Err)
	}
	return fmt.Sprintf("%s %q: %v (%s)", e.Op, e.Region, e.Err, e.Detail)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}
