// Package opencv provides a gocv implementation of the exposure remap.
// It is only compiled in with the gocv build tag.
package opencv

import "errors"

// ErrUnavailable is returned by New when the binary was built without gocv.
var ErrUnavailable = errors.New("opencv backend not compiled in, rebuild with -tags gocv")
