// Package rodagent is the rod-backed browser session: deterministic
// element access for the field-mapping pass plus the act/observe agent
// the decision loop talks to.
package rodagent

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

var _ output.BrowserPort = (*Session)(nil)

type Config struct {
	// ControlURL connects to a remote browser (Browserless-style); empty
	// launches a local Chrome.
	ControlURL string
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
}

func DefaultConfig() Config {
	return Config{
		Headless:   true,
		SlowMotion: 300 * time.Millisecond,
		Timeout:    10 * time.Second,
		NoSandbox:  true,
	}
}

// Session is one live page serving one fill request.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration

	closeOnce sync.Once

	// frames caches iframe pages between FindField and the follow-up
	// FieldValue/FillField calls of the same pass.
	frames []*rod.Page
}

func NewSession(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Timeout <= 0 {
		cfg = DefaultConfig()
	}

	var l *launcher.Launcher
	url := cfg.ControlURL
	if url == "" {
		l = launcher.New().
			Headless(cfg.Headless).
			NoSandbox(cfg.NoSandbox).
			Delete("use-mock-keychain").
			Set("disable-web-security").
			Set("allow-running-insecure-content").
			Set("disable-setuid-sandbox")

		launched, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		url = launched
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
			l.Cleanup()
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		if l != nil {
			l.Kill()
			l.Cleanup()
		}
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &Session{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := s.page.Context(ctx).WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	s.page.WaitIdle(5 * time.Second)
	s.frames = nil
	return nil
}

// FindField searches the main document first, then each iframe. A miss
// is (nil, nil): absent fields are normal, not errors.
func (s *Session) FindField(ctx context.Context, selector string) (*output.FormField, error) {
	if visibleMatch(s.page.Context(ctx), selector) {
		return &output.FormField{Selector: selector, Frame: -1}, nil
	}

	s.refreshFrames()
	for i, fp := range s.frames {
		if visibleMatch(fp.Context(ctx), selector) {
			return &output.FormField{Selector: selector, Frame: i}, nil
		}
	}
	return nil, nil
}

func (s *Session) FieldValue(ctx context.Context, field *output.FormField) (string, error) {
	el, err := s.element(ctx, field)
	if err != nil {
		return "", err
	}

	typ, _ := el.Attribute("type")
	if typ != nil && (*typ == "checkbox" || *typ == "radio") {
		checked, err := el.Property("checked")
		if err != nil {
			return "", fmt.Errorf("checked lookup failed: %w", err)
		}
		if checked.Bool() {
			return "checked", nil
		}
		return "", nil
	}

	value, err := el.Property("value")
	if err != nil {
		return "", fmt.Errorf("value lookup failed: %w", err)
	}
	return value.String(), nil
}

func (s *Session) FillField(ctx context.Context, field *output.FormField, text string) error {
	el, err := s.element(ctx, field)
	if err != nil {
		return err
	}

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	imgBytes, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > 1024 {
		img = imaging.Resize(img, 1024, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (s *Session) CurrentURL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close is safe to call more than once; the loop closes the session it
// borrowed and the request handler releases it again.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.browser != nil {
			_ = s.browser.Close()
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
	})
}

func (s *Session) element(ctx context.Context, field *output.FormField) (*rod.Element, error) {
	doc := s.page
	if field.Frame >= 0 {
		if field.Frame >= len(s.frames) {
			s.refreshFrames()
		}
		if field.Frame >= len(s.frames) {
			return nil, fmt.Errorf("frame %d no longer present", field.Frame)
		}
		doc = s.frames[field.Frame]
	}

	el, err := doc.Context(ctx).Timeout(s.timeout).Element(field.Selector)
	if err != nil {
		return nil, fmt.Errorf("element not found: %s: %w", field.Selector, err)
	}
	return el, nil
}

func (s *Session) refreshFrames() {
	s.frames = s.frames[:0]
	iframes, err := s.page.Elements("iframe")
	if err != nil {
		return
	}
	for _, el := range iframes {
		fp, err := el.Frame()
		if err != nil {
			continue
		}
		s.frames = append(s.frames, fp)
	}
}

func visibleMatch(doc *rod.Page, selector string) bool {
	has, el, err := doc.Has(selector)
	if err != nil || !has || el == nil {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}
