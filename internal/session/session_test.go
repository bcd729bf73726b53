package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/export"
	"github.com/mandalnilabja/scenesculpt/internal/storage/models"
	"github.com/mandalnilabja/scenesculpt/internal/tokenizer"
	"github.com/mandalnilabja/scenesculpt/internal/types"
	"github.com/mandalnilabja/scenesculpt/internal/viewport"
)

func pngBytes(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type fakeProvider struct {
	mu       sync.Mutex
	out      []byte
	err      error
	seeds    [][]byte
	textCall int
	// gate, when set, blocks each call until it is closed.
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeProvider) TextToImage(ctx context.Context, p types.GenerationParameters) ([]byte, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCall++
	return f.out, f.err
}

func (f *fakeProvider) ImageToImage(ctx context.Context, p types.GenerationParameters, seed []byte) ([]byte, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeds = append(f.seeds, seed)
	return f.out, f.err
}

func (f *fakeProvider) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

type fakeViews struct {
	names      []string
	capture    image.Image
	background map[string]string
}

func (f *fakeViews) Views() []string { return f.names }

func (f *fakeViews) Capture(ctx context.Context, name string, w, h int) (image.Image, error) {
	if f.capture == nil {
		return nil, errors.New("capture failed")
	}
	return f.capture, nil
}

func (f *fakeViews) SetBackground(ctx context.Context, name, path string) error {
	if f.background == nil {
		f.background = make(map[string]string)
	}
	f.background[name] = path
	return nil
}

type fakeUploader struct {
	name string
	data []byte
}

func (f *fakeUploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	f.name, f.data = name, data
	return "mem://" + name, nil
}

type fakeHistory struct {
	entries []*models.GenerationLog
}

func (f *fakeHistory) LogGeneration(e *models.GenerationLog) error {
	f.entries = append(f.entries, e)
	return nil
}

type harness struct {
	ctrl     *Controller
	provider *fakeProvider
	views    *fakeViews
	uploader *fakeUploader
	history  *fakeHistory
	bgDir    string
}

func newHarness(t *testing.T, prov *fakeProvider) *harness {
	t.Helper()
	h := &harness{
		provider: prov,
		views:    &fakeViews{names: []string{"Perspective"}},
		uploader: &fakeUploader{},
		history:  &fakeHistory{},
		bgDir:    filepath.Join(t.TempDir(), "backgrounds"),
	}
	ctrl, err := New(Options{
		Provider:       prov,
		Views:          h.views,
		Exporter:       h.uploader,
		History:        h.history,
		Tokens:         tokenizer.CounterFunc(func(s string) (int, error) { return len(s), nil }),
		EngineID:       "test-engine",
		ImportSize:     64,
		BackgroundsDir: h.bgDir,
		RequestID:      func(context.Context) string { return "req-1" },
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.ctrl = ctrl
	return h
}

func params() types.GenerationParameters {
	return types.DefaultParameters().WithPrompt("castle")
}

func TestGenerate_RegenerateReplacesCurrent(t *testing.T) {
	out := pngBytes(t, 8, 8, color.RGBA{0, 255, 0, 255})
	h := newHarness(t, &fakeProvider{out: out})

	if _, err := h.ctrl.Current(); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage initially, got %v", err)
	}

	res, err := h.ctrl.Generate(context.Background(), params(), types.ModeRegenerate)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.RequestID != "req-1" || res.Mode != types.ModeRegenerate || res.PromptTokens != len("castle") {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Image.Width != 8 || res.Image.Height != 8 || res.Image.Source != SourceGenerate {
		t.Errorf("unexpected image %+v", res.Image)
	}

	cur, err := h.ctrl.Current()
	if err != nil || !bytes.Equal(cur.PNG, out) {
		t.Fatalf("current image should be the generated bytes, err=%v", err)
	}
	if h.ctrl.Busy() {
		t.Error("busy flag should clear after success")
	}

	if len(h.history.entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(h.history.entries))
	}
	entry := h.history.entries[0]
	if entry.Status != models.GenerationSucceeded || entry.Engine != "test-engine" || entry.Prompt != "castle" {
		t.Errorf("unexpected history entry %+v", entry)
	}
}

func TestGenerate_IterateSeedsWithCurrent(t *testing.T) {
	first := pngBytes(t, 4, 4, color.RGBA{255, 0, 0, 255})
	prov := &fakeProvider{out: first}
	h := newHarness(t, prov)

	if _, err := h.ctrl.Generate(context.Background(), params(), types.ModeIterate); !errors.Is(err, ErrNoImage) {
		t.Fatalf("iterate without an image should fail with ErrNoImage, got %v", err)
	}
	if h.ctrl.Busy() {
		t.Error("busy flag should clear after ErrNoImage")
	}

	if _, err := h.ctrl.Generate(context.Background(), params(), types.ModeRegenerate); err != nil {
		t.Fatal(err)
	}

	second := pngBytes(t, 4, 4, color.RGBA{0, 0, 255, 255})
	prov.out = second
	res, err := h.ctrl.Generate(context.Background(), params(), types.ModeIterate)
	if err != nil {
		t.Fatalf("iterate failed: %v", err)
	}

	if len(prov.seeds) != 1 || !bytes.Equal(prov.seeds[0], first) {
		t.Error("iterate should send the previous image as seed")
	}
	if res.Image.Source != SourceIterate || !bytes.Equal(res.Image.PNG, second) {
		t.Error("iterate result should become the current image")
	}
}

func TestGenerate_FailureKeepsCurrent(t *testing.T) {
	good := pngBytes(t, 4, 4, color.RGBA{255, 255, 0, 255})
	prov := &fakeProvider{out: good}
	h := newHarness(t, prov)

	if _, err := h.ctrl.Generate(context.Background(), params(), types.ModeRegenerate); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		out      []byte
		err      error
		wantKind types.ErrorKind
	}{
		{"api error", nil, types.NewAPIErrorResponse("text-to-image", 401, []byte("bad key")), types.KindAPI},
		{"network error", nil, types.NewNetworkError("text-to-image", errors.New("refused")), types.KindNetwork},
		{"undecodable bytes", []byte("not a png"), nil, types.KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov.out, prov.err = tt.out, tt.err
			before := len(h.history.entries)

			_, err := h.ctrl.Generate(context.Background(), params(), types.ModeRegenerate)
			var ge *types.GenerationError
			if !errors.As(err, &ge) || ge.Kind != tt.wantKind {
				t.Fatalf("expected %s error, got %v", tt.wantKind, err)
			}

			cur, _ := h.ctrl.Current()
			if !bytes.Equal(cur.PNG, good) {
				t.Error("current image must not change on failure")
			}
			if h.ctrl.Busy() {
				t.Error("busy flag should clear after failure")
			}

			if len(h.history.entries) != before+1 {
				t.Fatal("failure should be recorded")
			}
			entry := h.history.entries[before]
			if entry.Status != models.GenerationFailed || entry.ErrorKind != string(tt.wantKind) {
				t.Errorf("unexpected history entry %+v", entry)
			}
		})
	}
}

func TestGenerate_RejectsConcurrentCalls(t *testing.T) {
	prov := &fakeProvider{
		out:     pngBytes(t, 2, 2, color.RGBA{1, 2, 3, 255}),
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	h := newHarness(t, prov)

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Generate(context.Background(), params(), types.ModeRegenerate)
		done <- err
	}()

	select {
	case <-prov.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first generation never started")
	}

	if !h.ctrl.Busy() {
		t.Error("expected busy while a generation runs")
	}
	if _, err := h.ctrl.Generate(context.Background(), params(), types.ModeRegenerate); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(prov.gate)
	if err := <-done; err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
	if h.ctrl.Busy() {
		t.Error("busy flag should clear")
	}
	if prov.textCall != 1 {
		t.Errorf("expected exactly one provider call, got %d", prov.textCall)
	}
}

func TestGenerate_CountsPromptBeforeClaimingSession(t *testing.T) {
	prov := &fakeProvider{out: pngBytes(t, 2, 2, color.RGBA{1, 2, 3, 255})}
	h := newHarness(t, prov)

	counting := make(chan struct{})
	release := make(chan struct{})
	h.ctrl.opts.Tokens = tokenizer.CounterFunc(func(s string) (int, error) {
		close(counting)
		<-release
		return len(s), nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Generate(context.Background(), params(), types.ModeRegenerate)
		done <- err
	}()

	select {
	case <-counting:
	case <-time.After(5 * time.Second):
		t.Fatal("prompt was never counted")
	}
	if h.ctrl.Busy() {
		t.Error("session should not be busy while the prompt is counted")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if prov.textCall != 1 {
		t.Errorf("expected one provider call, got %d", prov.textCall)
	}
}

func TestImport(t *testing.T) {
	h := newHarness(t, &fakeProvider{})

	src := pngBytes(t, 200, 100, color.RGBA{10, 20, 30, 255})
	img, err := h.ctrl.Import(bytes.NewReader(src))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if img.Width != 64 || img.Height != 64 || img.Source != SourceImport {
		t.Errorf("unexpected imported image %+v", img)
	}

	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	if err != nil || decoded.Bounds().Dx() != 64 {
		t.Errorf("imported image should be a 64x64 png, err=%v", err)
	}

	if _, err := h.ctrl.Import(bytes.NewReader([]byte("garbage"))); err == nil {
		t.Error("expected error for garbage input")
	}
	if cur, _ := h.ctrl.Current(); cur.Source != SourceImport {
		t.Error("failed import must not replace the current image")
	}
}

func TestCapture(t *testing.T) {
	h := newHarness(t, &fakeProvider{})
	h.views.capture = image.NewRGBA(image.Rect(0, 0, 64, 64))

	img, err := h.ctrl.Capture(context.Background(), "")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if img.Source != SourceCapture || img.Width != 64 {
		t.Errorf("unexpected capture %+v", img)
	}

	h.views.names = []string{"Top", "Front"}
	if _, err := h.ctrl.Capture(context.Background(), ""); !errors.Is(err, viewport.ErrViewRequired) {
		t.Errorf("expected ErrViewRequired, got %v", err)
	}
	if _, err := h.ctrl.Capture(context.Background(), "Left"); !errors.Is(err, viewport.ErrViewNotFound) {
		t.Errorf("expected ErrViewNotFound, got %v", err)
	}
}

func TestExport(t *testing.T) {
	h := newHarness(t, &fakeProvider{})

	if _, err := h.ctrl.Export(context.Background(), "out"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}

	src := pngBytes(t, 64, 64, color.RGBA{9, 9, 9, 255})
	if _, err := h.ctrl.Import(bytes.NewReader(src)); err != nil {
		t.Fatal(err)
	}

	loc, err := h.ctrl.Export(context.Background(), "../out")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if loc != "mem://out.png" || h.uploader.name != "out.png" {
		t.Errorf("unexpected export %q / %q", loc, h.uploader.name)
	}
	cur, _ := h.ctrl.Current()
	if !bytes.Equal(h.uploader.data, cur.PNG) {
		t.Error("exported bytes should be the current png")
	}

	if _, err := h.ctrl.Export(context.Background(), ".."); !errors.Is(err, export.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestApplyAsBackground(t *testing.T) {
	h := newHarness(t, &fakeProvider{})

	if _, _, err := h.ctrl.ApplyAsBackground(context.Background(), ""); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}

	if _, err := h.ctrl.Import(bytes.NewReader(pngBytes(t, 64, 64, color.RGBA{1, 1, 1, 255}))); err != nil {
		t.Fatal(err)
	}

	view, path, err := h.ctrl.ApplyAsBackground(context.Background(), "")
	if err != nil {
		t.Fatalf("ApplyAsBackground failed: %v", err)
	}
	if view != "Perspective" || path != filepath.Join(h.bgDir, BackgroundFile) {
		t.Errorf("unexpected result %q %q", view, path)
	}
	if h.views.background["Perspective"] != path {
		t.Error("viewport background should point at the written file")
	}

	written, err := os.ReadFile(path)
	cur, _ := h.ctrl.Current()
	if err != nil || !bytes.Equal(written, cur.PNG) {
		t.Errorf("background file should hold the current png, err=%v", err)
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	h := newHarness(t, &fakeProvider{})
	if _, err := h.ctrl.Import(bytes.NewReader(pngBytes(t, 64, 64, color.RGBA{5, 5, 5, 255}))); err != nil {
		t.Fatal(err)
	}

	a, _ := h.ctrl.Current()
	a.PNG[0] ^= 0xff

	b, _ := h.ctrl.Current()
	if a.PNG[0] == b.PNG[0] {
		t.Error("mutating a returned image must not affect the session")
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Options{Views: &fakeViews{}, Exporter: &fakeUploader{}}); err == nil {
		t.Error("expected error without provider")
	}
	if _, err := New(Options{Provider: &fakeProvider{}, Exporter: &fakeUploader{}}); err == nil {
		t.Error("expected error without views")
	}
	if _, err := New(Options{Provider: &fakeProvider{}, Views: &fakeViews{}}); err == nil {
		t.Error("expected error without exporter")
	}
}
