package escpos

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"net/http"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
)

const (
	// emblemDots is the printed emblem width. Multiple of 8 so rows
	// pack into whole bytes.
	emblemDots = 192
	// lumaThreshold splits pixels into print/no-print
	lumaThreshold = 160
	// maxEmblemBytes caps the downloaded asset size
	maxEmblemBytes = 2 << 20
)

// Raster is a 1-bit-per-pixel bitmap in ESC/POS raster order: rows top
// to bottom, WidthBytes bytes per row, most significant bit leftmost.
type Raster struct {
	WidthBytes int
	Height     int
	Data       []byte
}

// AssetGate loads the store emblem once and answers whether the logo
// asset is ready to print. The load settles exactly once, on success
// or on failure; a failed load settles with a nil raster so jobs print
// without the logo instead of deferring forever.
type AssetGate struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *zap.Logger

	once   sync.Once
	done   chan struct{}
	raster *Raster
}

// NewAssetGate creates a gate for the emblem at the given URL. An
// empty URL settles the gate immediately with no raster.
func NewAssetGate(url string, timeout time.Duration, logger *zap.Logger) *AssetGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetGate{
		url:     url,
		timeout: timeout,
		client:  &http.Client{},
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Poll reports whether the load has settled and, if so, hands out the
// raster. The first call starts the load.
func (g *AssetGate) Poll() (*Raster, bool) {
	g.once.Do(g.start)
	select {
	case <-g.done:
		return g.raster, true
	default:
		return nil, false
	}
}

// Wait blocks until the load settles or the context ends
func (g *AssetGate) Wait(ctx context.Context) (*Raster, error) {
	g.once.Do(g.start)
	select {
	case <-g.done:
		return g.raster, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *AssetGate) start() {
	if g.url == "" {
		close(g.done)
		return
	}
	go func() {
		defer close(g.done)
		g.raster = g.load()
	}()
}

func (g *AssetGate) load() *Raster {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		g.logger.Warn("invalid emblem URL, printing without logo", zap.String("url", g.url), zap.Error(err))
		return nil
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("fetching emblem failed, printing without logo", zap.Error(err))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("fetching emblem failed, printing without logo", zap.Int("status", resp.StatusCode))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxEmblemBytes))
	if err != nil {
		g.logger.Warn("reading emblem failed, printing without logo", zap.Error(err))
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		g.logger.Warn("decoding emblem failed, printing without logo", zap.Error(err))
		return nil
	}
	return rasterize(img)
}

// rasterize scales the image to the emblem width and thresholds it to
// one bit per pixel. Nearest-neighbor sampling and a fixed threshold
// keep the result deterministic for a given asset.
func rasterize(img image.Image) *Raster {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil
	}

	width := emblemDots
	height := srcH * width / srcW
	if height < 1 {
		height = 1
	}
	widthBytes := width / 8

	data := make([]byte, widthBytes*height)
	for y := 0; y < height; y++ {
		sy := bounds.Min.Y + y*srcH/height
		for x := 0; x < width; x++ {
			sx := bounds.Min.X + x*srcW/width
			if dark(img.At(sx, sy)) {
				data[y*widthBytes+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return &Raster{WidthBytes: widthBytes, Height: height, Data: data}
}

// dark decides whether a pixel prints. Transparent pixels stay white.
func dark(c color.Color) bool {
	r, g, b, a := c.RGBA()
	if a < 0x8000 {
		return false
	}
	luma := (299*r + 587*g + 114*b) / 1000
	return luma < lumaThreshold<<8
}
