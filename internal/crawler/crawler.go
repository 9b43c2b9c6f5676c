// Package crawler opens pages in Chromium through rod and exposes them as
// dom.Document.
package crawler

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/dom"
	"github.com/v0xg/resumefill/internal/logger"
)

// Options configures the browser.
type Options struct {
	Width    int
	Height   int
	Headless bool
	Timeout  time.Duration
	// ProfileDir is a Chrome/Chromium profile directory, for pages behind a
	// login. The browser using it must be closed first.
	ProfileDir string
	Logger     *zap.Logger
}

// Browser wraps the rod browser and the page being filled.
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	timeout time.Duration
	log     *zap.Logger
}

// Open launches Chromium and navigates to url.
func Open(url string, opts Options) (*Browser, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Width == 0 {
		opts.Width = 1280
	}
	if opts.Height == 0 {
		opts.Height = 900
	}
	log := logger.OrNop(opts.Logger)

	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(opts.Headless)
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	b := &Browser{browser: browser, timeout: opts.Timeout, log: log}
	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	b.page = page

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		b.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := b.Settle(); err != nil {
		b.Close()
		return nil, err
	}
	log.Info("page opened", zap.String(logger.FieldURL, url))
	return b, nil
}

// Settle waits for the page load, a short network idle and the first
// visible form control. Pages without controls settle after the timeout
// of the last step.
func (b *Browser) Settle() error {
	if err := b.page.Timeout(b.timeout).WaitLoad(); err != nil {
		return fmt.Errorf("wait for page load: %w", err)
	}

	// Persistent connections (WebSockets, polling) never go idle.
	b.page.Timeout(5*time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()

	b.waitForControls(5 * time.Second)
	return nil
}

// waitForControls polls until a visible form control appears or timeout.
// Client-rendered pages build their forms after load.
func (b *Browser) waitForControls(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		res, err := b.page.Eval(`(sel) => {
			let visible = 0;
			document.querySelectorAll(sel).forEach(el => { if (el.offsetParent) visible++; });
			return visible;
		}`, dom.ControlSelector)
		if err == nil && res.Value.Int() > 0 {
			time.Sleep(300 * time.Millisecond)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	b.log.Debug("no visible form controls before timeout")
}

// Document returns the live page as a dom.Document.
func (b *Browser) Document() *Page {
	return &Page{page: b.page}
}

// Screenshot captures the viewport.
func (b *Browser) Screenshot() (image.Image, error) {
	raw, err := b.page.Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

// Close cleans up browser resources.
func (b *Browser) Close() {
	if b.page != nil {
		_ = b.page.Close()
	}
	if b.browser != nil {
		_ = b.browser.Close()
	}
}
