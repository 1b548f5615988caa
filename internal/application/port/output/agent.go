package output

import "context"

// PageAgent is the act/observe capability over a live page. Observe
// returns a natural-language inventory of interactive elements; Act
// executes one natural-language instruction against the page and
// reports what happened.
type PageAgent interface {
	Observe(ctx context.Context) ([]string, error)
	Act(ctx context.Context, instruction string) (string, error)
}
