package output

import (
	"context"

	"quinn-backend/internal/domain/entity"
)

// FormField is a handle to one concrete input element. Frame is -1 for
// the main document, otherwise the index of the iframe it was found in.
type FormField struct {
	Selector string
	Frame    int
}

// BrowserPort is the deterministic surface of one live browser session:
// direct element lookup and filling, used by the field-mapping pass.
// One session serves one request and must always be closed.
type BrowserPort interface {
	Navigate(ctx context.Context, url string) error

	// FindField returns a handle to the first visible element matching
	// the selector, searching the main document first and then each
	// embedded frame. Returns nil when nothing matches.
	FindField(ctx context.Context, selector string) (*FormField, error)
	FieldValue(ctx context.Context, field *FormField) (string, error)
	FillField(ctx context.Context, field *FormField, text string) error

	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	CurrentURL() string
	Close()
}
