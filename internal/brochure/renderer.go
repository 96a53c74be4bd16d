package brochure

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrUnavailable means PDF output is switched off or the breaker is open.
// Callers fall back to serving the HTML.
var ErrUnavailable = errors.New("pdf rendering unavailable")

// Renderer turns a complete HTML document into a PDF
type Renderer interface {
	RenderPDF(ctx context.Context, html []byte) ([]byte, error)
}

// ChromeRenderer prints pages with a headless Chrome started per render
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
}

// NewChromeRenderer uses the Chrome found on PATH when execPath is empty
func NewChromeRenderer(execPath string, timeout time.Duration) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeRenderer{execPath: execPath, timeout: timeout}
}

func (r *ChromeRenderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp error: %w", err)
	}
	return pdf, nil
}

// Service guards a Renderer with a circuit breaker
type Service struct {
	renderer Renderer
	breaker  *CircuitBreaker
}

// NewService returns a service that always reports ErrUnavailable when
// renderer is nil.
func NewService(renderer Renderer, breaker *CircuitBreaker) *Service {
	return &Service{renderer: renderer, breaker: breaker}
}

func (s *Service) PDF(ctx context.Context, html []byte) ([]byte, error) {
	if s == nil || s.renderer == nil {
		return nil, ErrUnavailable
	}
	if s.breaker != nil && !s.breaker.CanProceed() {
		return nil, ErrUnavailable
	}

	start := time.Now()
	pdf, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		// a cancelled request says nothing about the renderer
		if ctx.Err() == nil && s.breaker != nil {
			s.breaker.RecordFailure()
		}
		log.Printf("Brochure: render failed after %v: %v", time.Since(start), err)
		return nil, err
	}
	if s.breaker != nil {
		s.breaker.RecordSuccess()
	}
	return pdf, nil
}

// Status returns the breaker state, or nil when rendering is off
func (s *Service) Status() *Status {
	if s == nil || s.breaker == nil {
		return nil
	}
	st := s.breaker.GetStatus()
	return &st
}
