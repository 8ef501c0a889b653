package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/nfnt/resize"
)

// Options controls capture output.
type Options struct {
	Dir      string // destination directory, created on demand
	MaxWidth uint   // downscale wider captures to this width; 0 disables
}

// Capturer takes page screenshots and writes them to disk.
type Capturer struct {
	page *rod.Page
	opts Options
}

// NewCapturer binds a capturer to a page.
func NewCapturer(page *rod.Page, opts Options) *Capturer {
	if opts.Dir == "" {
		opts.Dir = "screenshots"
	}
	return &Capturer{page: page, opts: opts}
}

// Capture takes a viewport screenshot and returns the decoded image.
func (c *Capturer) Capture() (image.Image, error) {
	quality := 90
	data, err := c.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatPng,
		Quality: &quality,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	if c.opts.MaxWidth > 0 && uint(img.Bounds().Dx()) > c.opts.MaxWidth {
		img = resize.Resize(c.opts.MaxWidth, 0, img, resize.Lanczos3)
	}
	return img, nil
}

// Save captures the page and writes a timestamped PNG under Dir with the
// given label, returning the written path.
func (c *Capturer) Save(label string) (string, error) {
	img, err := c.Capture()
	if err != nil {
		return "", err
	}
	return c.write(img, label)
}

// SaveAnnotated captures the page, draws the highlight boxes onto it, and
// writes the result.
func (c *Capturer) SaveAnnotated(label string, boxes []Box) (string, error) {
	img, err := c.Capture()
	if err != nil {
		return "", err
	}
	return c.write(Annotate(img, boxes), label)
}

func (c *Capturer) write(img image.Image, label string) (string, error) {
	if err := os.MkdirAll(c.opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.png", time.Now().Format("20060102_150405"), label)
	path := filepath.Join(c.opts.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create screenshot file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return path, nil
}
