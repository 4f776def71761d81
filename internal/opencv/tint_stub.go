//go:build !gocv

package opencv

import (
	"xray-simulator/internal/logger"
	"xray-simulator/internal/xray"
)

func New(_ logger.Logger) (xray.Tinter, error) {
	return nil, ErrUnavailable
}
