package flightdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/skytagbot/skytag/internal/domain"
)

const rendererUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// navigationMargin covers page navigation before the table waits begin.
const navigationMargin = 15 * time.Second

// ChromeRenderer implements Renderer with a headless Chrome instance per
// render. The provider populates its table asynchronously; the renderer
// waits for the table element, waits out the loading placeholder, then
// sleeps the settle delay before snapshotting the table HTML.
type ChromeRenderer struct {
	wait   time.Duration
	settle time.Duration
}

// NewChromeRenderer creates a renderer with the given table wait budget and
// settle delay.
func NewChromeRenderer(wait, settle time.Duration) *ChromeRenderer {
	return &ChromeRenderer{wait: wait, settle: settle}
}

// RenderTable navigates to url and returns the outer HTML of the flight
// data table. An exceeded wait budget surfaces as domain.ErrRenderTimeout.
func (r *ChromeRenderer) RenderTable(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(rendererUserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.wait+r.settle+navigationMargin)
	defer cancelRun()

	var tableHTML string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("#"+TableID, chromedp.ByID),
		chromedp.WaitNotPresent(`//div[contains(text(), "Loading")]`, chromedp.BySearch),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("#"+TableID, &tableHTML, chromedp.ByID),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: table %q not ready within %s", domain.ErrRenderTimeout, TableID, r.wait+r.settle+navigationMargin)
		}
		return "", fmt.Errorf("%w: render %s: %w", domain.ErrExtractionFailure, url, err)
	}
	return tableHTML, nil
}
