package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/grafana/turnaround/pkg/config"
	"github.com/grafana/turnaround/pkg/logme"
	"github.com/grafana/turnaround/pkg/report"
)

type Nop struct{}

func (Nop) Show(context.Context, string) error { return nil }

// Browser opens charts in Chromium. Headless runs only save a PNG next to
// the chart, headed runs keep the window until the user closes it.
type Browser struct {
	Headless   bool
	Screenshot bool
	Install    bool
}

// New picks the viewer for a config.View mode.
func New(mode string) (report.Viewer, error) {
	switch mode {
	case config.ViewNone, "":
		return Nop{}, nil
	case config.ViewScreenshot:
		return &Browser{Headless: true, Screenshot: true, Install: true}, nil
	case config.ViewBrowser:
		return &Browser{Headless: false, Install: true}, nil
	}
	return nil, fmt.Errorf("unknown view mode %q", mode)
}

// ScreenshotPath is where the PNG of htmlPath goes.
func ScreenshotPath(htmlPath string) string {
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".png"
}

func (b *Browser) Show(ctx context.Context, htmlPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}

	if b.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("could not install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.Headless),
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}

	closed := make(chan struct{})
	page.OnClose(func(playwright.Page) { close(closed) })

	if _, err = page.Goto("file://"+filepath.ToSlash(abs), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return fmt.Errorf("could not goto: %w", err)
	}

	if b.Screenshot {
		png := ScreenshotPath(htmlPath)
		if _, err := page.Screenshot(playwright.PageScreenshotOptions{
			Path:     playwright.String(png),
			FullPage: playwright.Bool(true),
		}); err != nil {
			return fmt.Errorf("could not take screenshot: %w", err)
		}
		logme.InfoF("Saved chart screenshot to %s\n", png)
	}

	if b.Headless {
		return nil
	}

	logme.Infoln("Close the browser window to continue")
	select {
	case <-closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
