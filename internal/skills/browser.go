package skills

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/rahul/nexus/internal/intent"
)

// Browser answers OPEN_URL with a visible chromedp-controlled window. The
// browser starts lazily on first use and is reused across steps; Shutdown
// closes it with the rest of the process.
type Browser struct {
	mu            sync.Mutex
	allocCtx      context.Context
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
}

func NewBrowser() *Browser {
	return &Browser{}
}

func (b *Browser) Kind() intent.Kind { return intent.KindOpenURL }

func (b *Browser) Execute(ctx context.Context, step intent.Step) intent.StepResult {
	target := normalizeURL(step.Arg("url"))

	if err := b.init(); err != nil {
		return fail(step, fmt.Sprintf("could not start the browser: %v", err))
	}

	navCtx, cancel := context.WithTimeout(b.browserCtx, 60*time.Second)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(target)); err != nil {
		return fail(step, fmt.Sprintf("could not open %s: %v", target, err))
	}
	return ok(step, fmt.Sprintf("Opened %s.", target))
}

func (b *Browser) init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		select {
		case <-b.browserCtx.Done():
			b.cleanup()
		default:
			return nil
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", false),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	return chromedp.Run(b.browserCtx)
}

func (b *Browser) cleanup() {
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.browserCtx = nil
	b.allocCtx = nil
}

// Shutdown closes the browser window if one is open.
func (b *Browser) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanup()
}

// normalizeURL adds the https scheme when the planner hands over a bare host.
func normalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}
