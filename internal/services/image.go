package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"xray-simulator/internal/logger"
	"xray-simulator/internal/models"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned when a decoded image has no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// ImageService handles image decoding, sample download and PNG export
type ImageService struct {
	client    *http.Client
	sampleURL string
	logger    logger.Logger
}

// NewImageService creates a new image service
func NewImageService(client *http.Client, sampleURL string, log logger.Logger) *ImageService {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ImageService{
		client:    client,
		sampleURL: sampleURL,
		logger:    log,
	}
}

// SampleURL returns the configured sample image location.
func (is *ImageService) SampleURL() string {
	return is.sampleURL
}

// DecodeImage reads and decodes an image from reader. name is used for the
// format hint and logging only.
func (is *ImageService) DecodeImage(ctx context.Context, reader io.Reader, name string, origin models.ImageOrigin) (*models.ImageData, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := io.ReadAll(bufio.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img, detected, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %q: %w", name, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("failed to decode image %q: %w", name, ErrEmptyImage)
	}

	format := is.determineFormat(strings.ToLower(filepath.Ext(name)), detected)
	imageData := models.NewImageData(img, format, origin, name, int64(len(data)))

	is.logger.Info("Image decoded", map[string]interface{}{
		"source": name,
		"origin": string(origin),
		"format": format,
		"width":  imageData.Width,
		"height": imageData.Height,
		"bytes":  len(data),
	})
	return imageData, nil
}

// FetchSample downloads and decodes the sample image with a single GET.
func (is *ImageService) FetchSample(ctx context.Context) (*models.ImageData, error) {
	buf, err := is.download(ctx, is.sampleURL)
	if err != nil {
		return nil, err
	}
	return is.DecodeImage(ctx, bytes.NewReader(buf), path.Base(is.sampleURL), models.OriginSample)
}

func (is *ImageService) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("error creating request: %w", err)
		is.logger.Error("Sample request failed", err, map[string]interface{}{"url": url})
		return nil, err
	}

	res, err := is.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request: %w", err)
		is.logger.Error("Sample request failed", err, map[string]interface{}{"url": url})
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		is.logger.Error("Sample request failed", err, map[string]interface{}{"url": url})
		return nil, err
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("error reading response: %w", err)
		is.logger.Error("Sample request failed", err, map[string]interface{}{"url": url})
		return nil, err
	}

	is.logger.Debug("Sample downloaded", map[string]interface{}{"url": url, "bytes": len(buf)})
	return buf, nil
}

// EncodePNG writes img as PNG.
func (is *ImageService) EncodePNG(writer io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no image data to save")
	}
	if err := png.Encode(writer, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// determineFormat determines the appropriate format based on extension and detected format
func (is *ImageService) determineFormat(extension, detectedFormat string) string {
	if detectedFormat != "" {
		return detectedFormat
	}
	switch extension {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".tiff", ".tif":
		return "tiff"
	case ".webp":
		return "webp"
	case ".gif":
		return "gif"
	default:
		return "unknown"
	}
}

// GetSupportedExtensions returns the file extensions offered in the upload dialog
func (is *ImageService) GetSupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}
