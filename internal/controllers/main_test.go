package controllers

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"xray-simulator/internal/models"
	"xray-simulator/internal/services"
	"xray-simulator/internal/views"
	"xray-simulator/internal/xray"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shownError struct {
	title string
	err   error
}

type fakeView struct {
	mu        sync.Mutex
	handlers  views.Handlers
	params    []models.Parameters
	statuses  []string
	errors    []shownError
	info      *models.ImageData
	refreshes int
}

func (f *fakeView) SetHandlers(h views.Handlers) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = h
}

func (f *fakeView) ShowParameters(p models.Parameters) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, p)
}

func (f *fakeView) UpdateStatus(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeView) SetImageInfo(img *models.ImageData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.info = img
}

func (f *fakeView) RefreshCanvas() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
}

func (f *fakeView) ShowError(title string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, shownError{title: title, err: err})
}

func (f *fakeView) lastParams() models.Parameters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params[len(f.params)-1]
}

func (f *fakeView) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func (f *fakeView) statusLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statuses...)
}

func (f *fakeView) errorLog() []shownError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shownError(nil), f.errors...)
}

type harness struct {
	controller *MainController
	view       *fakeView
	images     *models.ImageRepository
	params     *models.ParameterStore
	viewState  *models.ViewState
}

func newHarness(t *testing.T, sampleURL string) *harness {
	t.Helper()

	images := models.NewImageRepository()
	params := models.NewParameterStore()
	viewState := models.NewViewState()

	imageService := services.NewImageService(nil, sampleURL, nil)
	renderService := services.NewRenderService(xray.NewEngine(xray.NewGoTinter(2), nil), images, params, viewState, nil)
	loader := services.NewLoader(images, models.NewLoadStateRepository(), 5*time.Second, nil)

	h := &harness{
		controller: NewMainController(imageService, renderService, loader, images, params, viewState, nil),
		view:       &fakeView{},
		images:     images,
		params:     params,
		viewState:  viewState,
	}
	h.controller.SetMainView(h.view)
	t.Cleanup(h.controller.Shutdown)
	return h
}

func grayPNG(t *testing.T, w, h int, v uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type trackingReader struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func (r *trackingReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *trackingReader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func TestSetMainViewPushesDefaults(t *testing.T) {
	h := newHarness(t, "")

	assert.Equal(t, models.DefaultParameters(), h.view.lastParams())
	assert.NotNil(t, h.view.handlers.Render)
	assert.NotNil(t, h.view.handlers.ParameterChanged)
	assert.NotNil(t, h.view.handlers.Upload)
}

func TestParameterChanged(t *testing.T) {
	h := newHarness(t, "")

	h.controller.ParameterChanged(models.ParamKV, 95)
	assert.Equal(t, 95.0, h.params.Snapshot().KV)
	assert.Equal(t, 95.0, h.view.lastParams().KV)
	assert.Equal(t, 1, h.view.refreshCount())

	h.controller.ParameterChanged(models.ParamFilter, 12.5)
	assert.Equal(t, 2.5, h.params.Snapshot().Filter)
	assert.Equal(t, 2.5, h.view.lastParams().Filter)
	assert.Equal(t, 1, h.view.refreshCount())
}

func TestUploadImage(t *testing.T) {
	h := newHarness(t, "")
	reader := &trackingReader{Reader: bytes.NewReader(grayPNG(t, 8, 6, 128))}

	h.controller.UploadImage(reader, "chest.png")
	h.controller.Wait()

	assert.Equal(t, []string{StatusUploading, StatusUploaded}, h.view.statusLog())
	assert.True(t, reader.isClosed())
	require.True(t, h.images.HasSourceImage())
	assert.Equal(t, models.OriginUpload, h.images.GetSourceImage().Origin)
	assert.Equal(t, 8, h.view.info.Width)
	assert.Equal(t, 1, h.view.refreshCount())

	state := h.controller.GetApplicationState()
	assert.True(t, state.HasSourceImage)
	assert.False(t, state.IsLoading)
	assert.False(t, state.LastImageLoad.IsZero())

	img := h.controller.Render(8, 6)
	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 164, G: 164, B: 164, A: 255}, nrgba.NRGBAAt(4, 3))
}

func TestUploadImageDecodeFailure(t *testing.T) {
	h := newHarness(t, "")
	reader := &trackingReader{Reader: bytes.NewReader([]byte("plain text"))}

	h.controller.UploadImage(reader, "notes.txt")
	h.controller.Wait()

	assert.Equal(t, []string{StatusUploading, StatusUploadFailed}, h.view.statusLog())
	assert.True(t, reader.isClosed())
	assert.False(t, h.images.HasSourceImage())
	require.Len(t, h.view.errorLog(), 1)
}

func TestLoadSample(t *testing.T) {
	body := grayPNG(t, 4, 4, 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	h := newHarness(t, srv.URL+"/000001-1.png")
	h.controller.LoadSample()
	h.controller.Wait()

	assert.Equal(t, []string{StatusSampleLoading, StatusSampleLoaded}, h.view.statusLog())
	require.True(t, h.images.HasSourceImage())
	assert.Equal(t, models.OriginSample, h.images.GetSourceImage().Origin)
	assert.Empty(t, h.view.errorLog())
}

func TestLoadSampleFailureKeepsImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	h := newHarness(t, srv.URL)
	previous := models.NewImageData(image.NewRGBA(image.Rect(0, 0, 2, 2)), "png", models.OriginUpload, "mine.png", 0)
	h.images.SetSourceImage(previous)

	h.controller.LoadSample()
	h.controller.Wait()

	assert.Equal(t, []string{StatusSampleLoading, StatusSampleFailed}, h.view.statusLog())
	errs := h.view.errorLog()
	require.Len(t, errs, 1)
	assert.Equal(t, SampleFailedMessage, errs[0].title)
	assert.Same(t, previous, h.images.GetSourceImage())
	assert.Zero(t, h.view.refreshCount())
}

func TestSecondLoadIsRejected(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:1/unused")
	body := grayPNG(t, 3, 3, 50)
	pr, pw := io.Pipe()

	h.controller.UploadImage(pr, "slow.png")
	assert.True(t, h.controller.GetApplicationState().IsLoading)

	h.controller.LoadSample()
	assert.Equal(t, []string{StatusUploading, StatusBusy}, h.view.statusLog())

	go func() {
		_, _ = pw.Write(body)
		_ = pw.Close()
	}()
	h.controller.Wait()

	assert.Equal(t, StatusUploaded, h.view.statusLog()[2])
	assert.Equal(t, "slow.png", h.images.GetSourceImage().Source)
}

func TestViewOperations(t *testing.T) {
	h := newHarness(t, "")

	h.controller.ZoomIn()
	assert.InDelta(t, models.ZoomStep, h.viewState.Transform().Zoom, 1e-12)

	h.controller.Pan(10, 10)
	assert.Zero(t, h.viewState.Transform().OffsetX)

	h.controller.BeginPan()
	h.controller.Pan(5, -3)
	h.controller.Pan(1, 1)
	h.controller.EndPan()
	h.controller.Pan(100, 100)

	tr := h.viewState.Transform()
	assert.Equal(t, 6.0, tr.OffsetX)
	assert.Equal(t, -2.0, tr.OffsetY)

	h.controller.ZoomOut()
	assert.InDelta(t, 1.0, h.viewState.Transform().Zoom, 1e-12)

	h.controller.ResetView()
	assert.Equal(t, models.IdentityView(), h.viewState.Transform())

	// ZoomIn, ZoomOut, two pans and ResetView
	assert.Equal(t, 5, h.view.refreshCount())
}

func TestResetToDefaults(t *testing.T) {
	h := newHarness(t, "")

	h.controller.ParameterChanged(models.ParamMA, 50)
	h.controller.ZoomIn()
	h.controller.ResetToDefaults()

	assert.Equal(t, models.DefaultParameters(), h.params.Snapshot())
	assert.Equal(t, models.DefaultParameters(), h.view.lastParams())
	assert.Equal(t, models.IdentityView(), h.viewState.Transform())
}

func TestRenderAndExport(t *testing.T) {
	h := newHarness(t, "")

	var early bufferCloser
	err := h.controller.ExportImage(&early)
	require.ErrorIs(t, err, services.ErrNoFrame)
	assert.True(t, early.closed)
	require.Len(t, h.view.errorLog(), 1)

	img := h.controller.Render(40, 30)
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())

	var out bufferCloser
	require.NoError(t, h.controller.ExportImage(&out))
	assert.True(t, out.closed)

	decoded, err := png.Decode(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	assert.Equal(t, "Image exported", h.view.statusLog()[len(h.view.statusLog())-1])
}

func TestExportKeepsTransparentLetterbox(t *testing.T) {
	h := newHarness(t, "")
	h.controller.UploadImage(&trackingReader{Reader: bytes.NewReader(grayPNG(t, 4, 2, 128))}, "wide.png")
	h.controller.Wait()
	_, err := h.params.Set(models.ParamKV, 150)
	require.NoError(t, err)

	h.controller.Render(4, 4)
	var out bufferCloser
	require.NoError(t, h.controller.ExportImage(&out))

	decoded, err := png.Decode(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	r, g, b, a := decoded.At(0, 0).RGBA()
	assert.Zero(t, r|g|b|a)
	_, _, _, a = decoded.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestShutdownReleasesSource(t *testing.T) {
	h := newHarness(t, "")
	h.controller.UploadImage(&trackingReader{Reader: bytes.NewReader(grayPNG(t, 2, 2, 50))}, "a.png")
	h.controller.Wait()
	require.True(t, h.images.HasSourceImage())

	h.controller.Shutdown()
	assert.False(t, h.images.HasSourceImage())
	assert.False(t, h.controller.GetApplicationState().HasSourceImage)
}

func TestEventListeners(t *testing.T) {
	h := newHarness(t, "")

	var got []models.Parameters
	h.controller.AddEventListener("parameter_changed", func(data interface{}) error {
		got = append(got, data.(models.Parameters))
		return nil
	})

	h.controller.ParameterChanged(models.ParamTime, 0.5)
	require.Len(t, got, 1)
	assert.Equal(t, 0.5, got[0].Time)
}
