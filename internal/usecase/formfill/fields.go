package formfill

import (
	"context"
	"fmt"
	"strings"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

// FieldSpec maps one semantic field to the ordered locator strategies
// that find it on real contractor sites. AltAct, when set, is a one-shot
// natural-language fallback phrasing used if the deterministic fill of
// this field errors out.
type FieldSpec struct {
	Field    entity.SemanticField
	Locators []string
	AltAct   string
}

// DefaultFieldSpecs is the single declarative field-mapping table used
// by every fill pass. Order inside Locators matters: the first selector
// that finds an element wins.
func DefaultFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{
			Field: entity.FieldFirstName,
			Locators: []string{
				`input[name*='first' i]`,
				`input[id*='first' i]`,
				`input[placeholder*='first' i]`,
			},
		},
		{
			Field: entity.FieldLastName,
			Locators: []string{
				`input[name*='last' i]`,
				`input[id*='last' i]`,
				`input[placeholder*='last' i]`,
			},
		},
		{
			Field: entity.FieldEmail,
			Locators: []string{
				`input[type='email']`,
				`input[name*='email' i]`,
				`input[id*='email' i]`,
				`input[placeholder*='email' i]`,
			},
			AltAct: "Type %q into the email address field.",
		},
		{
			Field: entity.FieldPhone,
			Locators: []string{
				`input[type='tel']`,
				`input[name*='phone' i]`,
				`input[id*='phone' i]`,
				`input[placeholder*='phone' i]`,
			},
		},
		{
			Field: entity.FieldAddress,
			Locators: []string{
				`input[name*='address' i]`,
				`input[id*='address' i]`,
				`input[name*='street' i]`,
			},
		},
		{
			Field: entity.FieldCity,
			Locators: []string{
				`input[name*='city' i]`,
				`input[id*='city' i]`,
			},
		},
		{
			Field: entity.FieldPostalCode,
			Locators: []string{
				`input[name*='zip' i]`,
				`input[id*='zip' i]`,
				`input[name*='postal' i]`,
				`input[id*='postal' i]`,
			},
		},
		{
			Field: entity.FieldDescription,
			Locators: []string{
				`textarea[name*='message' i]`,
				`textarea[name*='description' i]`,
				`textarea[name*='comment' i]`,
				`textarea`,
			},
		},
	}
}

// fieldPassResult summarizes one deterministic pass over the field table.
type fieldPassResult struct {
	filled  []entity.SemanticField
	skipped []entity.SemanticField
}

func (r fieldPassResult) describe() string {
	if len(r.filled) == 0 && len(r.skipped) == 0 {
		return "no known fields matched"
	}
	parts := make([]string, 0, 2)
	if len(r.filled) > 0 {
		parts = append(parts, fmt.Sprintf("filled %s", joinFields(r.filled)))
	}
	if len(r.skipped) > 0 {
		parts = append(parts, fmt.Sprintf("kept existing %s", joinFields(r.skipped)))
	}
	return strings.Join(parts, "; ")
}

func joinFields(fields []entity.SemanticField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// runFieldPass walks the field table once. Per semantic field: the first
// locator that finds an element decides; a non-empty current value means
// skip; at most one element is filled. Vendor errors on a single field
// degrade to skipping that field, never aborting the pass.
func (l *Loop) runFieldPass(ctx context.Context, customer entity.Customer, st *loopState) fieldPassResult {
	var res fieldPassResult

	for _, spec := range l.fields {
		if st.handledFields[spec.Field] {
			continue
		}
		value := customer.Value(spec.Field)
		if value == "" {
			continue
		}

		field := l.locate(ctx, spec.Locators)
		if field == nil {
			continue
		}

		current, err := l.browser.FieldValue(ctx, field)
		if err != nil {
			l.log.Warn("Field value lookup failed", "field", spec.Field, "error", err)
			continue
		}
		if strings.TrimSpace(current) != "" {
			st.handledFields[spec.Field] = true
			res.skipped = append(res.skipped, spec.Field)
			continue
		}

		if err := l.browser.FillField(ctx, field, value); err != nil {
			l.log.Warn("Deterministic fill failed", "field", spec.Field, "error", err)
			l.tryAltPhrase(ctx, spec, value, st)
			continue
		}
		st.handledFields[spec.Field] = true
		res.filled = append(res.filled, spec.Field)
	}

	return res
}

func (l *Loop) locate(ctx context.Context, locators []string) *output.FormField {
	for _, sel := range locators {
		field, err := l.browser.FindField(ctx, sel)
		if err != nil {
			l.log.Debug("Locator lookup failed", "selector", sel, "error", err)
			continue
		}
		if field != nil {
			return field
		}
	}
	return nil
}

// tryAltPhrase issues the field's alternate natural-language phrasing at
// most once per run.
func (l *Loop) tryAltPhrase(ctx context.Context, spec FieldSpec, value string, st *loopState) {
	if spec.AltAct == "" || st.altPhrased[spec.Field] {
		return
	}
	st.altPhrased[spec.Field] = true
	if _, err := l.agent.Act(ctx, fmt.Sprintf(spec.AltAct, value)); err != nil {
		l.log.Warn("Alternate phrasing failed", "field", spec.Field, "error", err)
	}
}
