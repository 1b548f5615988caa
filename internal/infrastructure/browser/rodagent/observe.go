package rodagent

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
)

// maxObserveElements bounds one observation's size.
const maxObserveElements = 120

// observeLines walks the page (and its iframes) and renders every
// actionable element as one natural-language line. The wording here is
// the contract the decision loop's probe classifies on.
func (s *Session) observeLines(ctx context.Context) ([]string, error) {
	var lines []string
	seen := make(map[string]bool)

	docs := []*rod.Page{s.page}
	s.refreshFrames()
	docs = append(docs, s.frames...)

	for _, doc := range docs {
		if len(lines) >= maxObserveElements {
			break
		}
		lines = s.collectButtons(ctx, doc, lines, seen)
		lines = s.collectInputs(ctx, doc, lines, seen)
		lines = s.collectOptions(ctx, doc, lines, seen)
	}
	return lines, nil
}

func (s *Session) collectButtons(ctx context.Context, doc *rod.Page, lines []string, seen map[string]bool) []string {
	els, err := doc.Context(ctx).Elements("button, [role='button'], input[type='submit'], input[type='button'], a.btn, a.button")
	if err != nil {
		return lines
	}
	for _, el := range els {
		if len(lines) >= maxObserveElements {
			break
		}
		label, ok := visibleLabel(el, seen)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("button '%s'", label))
	}
	return lines
}

func (s *Session) collectInputs(ctx context.Context, doc *rod.Page, lines []string, seen map[string]bool) []string {
	els, err := doc.Context(ctx).Elements("input, textarea")
	if err != nil {
		return lines
	}
	for _, el := range els {
		if len(lines) >= maxObserveElements {
			break
		}

		typ := attrOr(el, "type", "text")
		switch typ {
		case "hidden", "submit", "button", "image":
			continue
		case "checkbox":
			label, ok := visibleLabel(el, seen)
			if !ok {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s checkbox '%s'", checkedWord(isChecked(el)), label))
		case "radio":
			label, ok := visibleLabel(el, seen)
			if !ok {
				continue
			}
			state := "unselected"
			if isChecked(el) {
				state = "selected"
			}
			lines = append(lines, fmt.Sprintf("%s service option '%s'", state, label))
		default:
			label, ok := visibleLabel(el, seen)
			if !ok {
				continue
			}
			value, err := el.Property("value")
			if err == nil && strings.TrimSpace(value.String()) != "" {
				lines = append(lines, fmt.Sprintf("text input '%s' with value", label))
			} else {
				lines = append(lines, fmt.Sprintf("empty text input '%s'", label))
			}
		}
	}
	return lines
}

func (s *Session) collectOptions(ctx context.Context, doc *rod.Page, lines []string, seen map[string]bool) []string {
	els, err := doc.Context(ctx).Elements("[role='option'], [data-service-option]")
	if err != nil {
		return lines
	}
	for _, el := range els {
		if len(lines) >= maxObserveElements {
			break
		}
		label, ok := visibleLabel(el, seen)
		if !ok {
			continue
		}
		state := "unselected"
		if sel, err := el.Attribute("aria-selected"); err == nil && sel != nil && *sel == "true" {
			state = "selected"
		}
		lines = append(lines, fmt.Sprintf("%s service option '%s'", state, label))
	}
	return lines
}

// visibleLabel returns the element's display label, deduplicated and
// safe to single-quote.
func visibleLabel(el *rod.Element, seen map[string]bool) (string, bool) {
	visible, err := el.Visible()
	if err != nil || !visible {
		return "", false
	}

	label := elementLabel(el)
	if label == "" {
		return "", false
	}
	key := label
	if seen[key] {
		return "", false
	}
	seen[key] = true
	return label, true
}

func elementLabel(el *rod.Element) string {
	for _, attr := range []string{"aria-label", "placeholder", "name", "value", "title"} {
		if v, err := el.Attribute(attr); err == nil && v != nil && strings.TrimSpace(*v) != "" {
			return cleanLabel(*v)
		}
	}
	if text, err := el.Text(); err == nil {
		return cleanLabel(text)
	}
	return ""
}

func cleanLabel(raw string) string {
	label := strings.Join(strings.Fields(raw), " ")
	label = strings.ReplaceAll(label, "'", "")
	if len(label) > 60 {
		label = label[:60]
	}
	return strings.TrimSpace(label)
}

func attrOr(el *rod.Element, name, fallback string) string {
	v, err := el.Attribute(name)
	if err != nil || v == nil || *v == "" {
		return fallback
	}
	return strings.ToLower(*v)
}

func isChecked(el *rod.Element) bool {
	checked, err := el.Property("checked")
	return err == nil && checked.Bool()
}

// checkedWord renders checkbox state in the wording the decision loop
// keys on when it revisits checkbox groups.
func checkedWord(checked bool) string {
	if checked {
		return "checked"
	}
	return "unchecked"
}
