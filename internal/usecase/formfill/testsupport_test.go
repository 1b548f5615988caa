package formfill

import (
	"context"
	"time"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any)                    {}
func (nopLogger) Info(msg string, args ...any)                     {}
func (nopLogger) Warn(msg string, args ...any)                     {}
func (nopLogger) Error(msg string, args ...any)                    {}
func (l nopLogger) WithField(key string, value any) output.LoggerPort { return l }
func (l nopLogger) WithFields(fields map[string]any) output.LoggerPort { return l }
func (nopLogger) Close() error                                     { return nil }

type fakeElement struct {
	value string
	fills int
}

// fakeBrowser is an in-memory page: selector -> element.
type fakeBrowser struct {
	elements map[string]*fakeElement
	url      string
	closed   bool
	navErr   error
}

func newFakeBrowser(elements map[string]*fakeElement) *fakeBrowser {
	if elements == nil {
		elements = map[string]*fakeElement{}
	}
	return &fakeBrowser{elements: elements, url: "https://example.test/contact"}
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	if b.navErr != nil {
		return b.navErr
	}
	b.url = url
	return nil
}

func (b *fakeBrowser) FindField(ctx context.Context, selector string) (*output.FormField, error) {
	if _, ok := b.elements[selector]; ok {
		return &output.FormField{Selector: selector, Frame: -1}, nil
	}
	return nil, nil
}

func (b *fakeBrowser) FieldValue(ctx context.Context, field *output.FormField) (string, error) {
	return b.elements[field.Selector].value, nil
}

func (b *fakeBrowser) FillField(ctx context.Context, field *output.FormField, text string) error {
	el := b.elements[field.Selector]
	el.value = text
	el.fills++
	return nil
}

func (b *fakeBrowser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	return &entity.Screenshot{Data: []byte{0xff}, Format: "jpeg", Width: 1, Height: 1}, nil
}

func (b *fakeBrowser) CurrentURL() string { return b.url }
func (b *fakeBrowser) Close()             { b.closed = true }

// fakeAgent replays a scripted sequence of observations; the last entry
// repeats once the script runs out.
type fakeAgent struct {
	observations [][]string
	obsIdx       int
	actResult    string
	actErr       error
	acts         []string
}

func (a *fakeAgent) Observe(ctx context.Context) ([]string, error) {
	if len(a.observations) == 0 {
		return nil, nil
	}
	idx := a.obsIdx
	if idx >= len(a.observations) {
		idx = len(a.observations) - 1
	}
	a.obsIdx++
	return a.observations[idx], nil
}

func (a *fakeAgent) Act(ctx context.Context, instruction string) (string, error) {
	a.acts = append(a.acts, instruction)
	if a.actErr != nil {
		return "", a.actErr
	}
	if a.actResult != "" {
		return a.actResult, nil
	}
	return "done", nil
}

func newTestLoop(browser output.BrowserPort, agent output.PageAgent, maxIter int) *Loop {
	cfg := DefaultConfig()
	cfg.MaxIterations = maxIter
	l := New(browser, agent, NewKeywordProbe(), nopLogger{}, cfg)
	l.sleep = func(ctx context.Context, d time.Duration) {}
	return l
}
