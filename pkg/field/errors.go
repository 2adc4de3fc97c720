package field

import (
	"errors"
	"fmt"
)

// InvalidSubpathError reports a subpath template that produced an
// unusable path or failed to render. It carries the original template,
// not the rendered value, so diagnostics point at the configured
// setting. Recoverable: the caller surfaces it as a field warning and
// the field yields no usable folder.
type InvalidSubpathError struct {
	Template string
	Reason   string
	Err      error
}

func (e *InvalidSubpathError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid subpath %q: %s", e.Template, e.Reason)
	}
	return fmt.Sprintf("invalid subpath %q: %v", e.Template, e.Err)
}

func (e *InvalidSubpathError) Unwrap() error {
	return e.Err
}

// VolumeNotFoundError reports a volume with no root folder in the
// catalog. Fatal for the current resolution.
type VolumeNotFoundError struct {
	VolumeID string
}

func (e *VolumeNotFoundError) Error() string {
	return fmt.Sprintf("volume %q has no root folder", e.VolumeID)
}

// IsInvalidSubpath reports whether err is an InvalidSubpathError.
func IsInvalidSubpath(err error) bool {
	var target *InvalidSubpathError
	return errors.As(err, &target)
}

// IsVolumeNotFound reports whether err is a VolumeNotFoundError.
func IsVolumeNotFound(err error) bool {
	var target *VolumeNotFoundError
	return errors.As(err, &target)
}
