// Package browser owns the headless Chromium process a crawl batch runs in.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/IshaanNene/PostPulse/internal/automation"
	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// Session is one browser with a single page, reused for every post of a batch.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	wrapped  *automation.RodPage
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Launch starts Chromium, opens one page and configures its viewport,
// user-agent and dialog handling. Any failure releases what was created so far.
func Launch(ctx context.Context, cfg config.BrowserConfig, logger *slog.Logger) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.LaunchError{Stage: "start", Err: err}
	}

	s := &Session{logger: logger.With("component", "browser_session")}

	s.launcher = newLauncher(cfg)
	controlURL, err := s.launcher.Launch()
	if err != nil {
		s.launcher.Kill()
		return nil, &types.LaunchError{Stage: "process", Err: err}
	}

	s.browser = rod.New().ControlURL(controlURL)
	if err := s.browser.Connect(); err != nil {
		s.launcher.Kill()
		return nil, &types.LaunchError{Stage: "connect", Err: err}
	}

	if err := s.openPage(cfg); err != nil {
		_ = s.Close()
		return nil, err
	}

	s.wrapped = automation.NewRodPage(s.page, cfg.ElementTimeout, logger)
	s.logger.Info("browser session ready",
		"headless", cfg.Headless,
		"viewport", fmt.Sprintf("%dx%d", cfg.ViewportWidth, cfg.ViewportHeight),
	)
	return s, nil
}

// newLauncher builds the Chromium command line.
func newLauncher(cfg config.BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.ViewportWidth, cfg.ViewportHeight))

	if cfg.NoSandbox {
		l = l.Set("no-sandbox").Set("disable-setuid-sandbox")
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	return l
}

func (s *Session) openPage(cfg config.BrowserConfig) error {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return &types.LaunchError{Stage: "page", Err: err}
	}
	s.page = page

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.ViewportWidth,
		Height:            cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return &types.LaunchError{Stage: "viewport", Err: err}
	}

	err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent})
	if err != nil {
		return &types.LaunchError{Stage: "user_agent", Err: err}
	}

	// Native dialogs ("leave page?") would otherwise block every later call.
	go page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		s.logger.Debug("accepting dialog", "type", e.Type, "message", e.Message)
		if err := (proto.PageHandleJavaScriptDialog{Accept: true}).Call(page); err != nil {
			s.logger.Warn("dialog accept failed", "error", err)
		}
	})()

	return nil
}

// Page returns the page shared by every crawl in the batch.
func (s *Session) Page() automation.Page {
	return s.wrapped
}

// Close shuts the browser down and removes its profile directory. It is safe
// to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close browser: %w", err))
			}
		}
		if s.launcher != nil {
			s.launcher.Cleanup()
		}
		s.closeErr = errors.Join(errs...)
		s.logger.Info("browser session closed")
	})
	return s.closeErr
}
