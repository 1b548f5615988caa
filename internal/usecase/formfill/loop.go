// Package formfill drives a contractor website toward a filled-in (but
// never submitted) contact/booking form with a bounded observe-decide-act
// loop. One action per iteration, everything recorded in a trace, every
// vendor error degraded to "skip and keep going".
package formfill

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quinn-backend/internal/application/port/input"
	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

type Config struct {
	MaxIterations  int
	FillSettle     time.Duration
	SelectSettle   time.Duration
	NavigateSettle time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxIterations:  12,
		FillSettle:     500 * time.Millisecond,
		SelectSettle:   1500 * time.Millisecond,
		NavigateSettle: 3 * time.Second,
	}
}

type Loop struct {
	browser output.BrowserPort
	agent   output.PageAgent
	probe   Probe
	fields  []FieldSpec
	cfg     Config
	log     output.LoggerPort

	// sleep is context-aware and replaceable in tests.
	sleep func(ctx context.Context, d time.Duration)
}

var _ input.FormFiller = (*Loop)(nil)

func New(browser output.BrowserPort, agent output.PageAgent, probe Probe, log output.LoggerPort, cfg Config) *Loop {
	if cfg.MaxIterations <= 0 {
		cfg = DefaultConfig()
	}
	return &Loop{
		browser: browser,
		agent:   agent,
		probe:   probe,
		fields:  DefaultFieldSpecs(),
		cfg:     cfg,
		log:     log,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// loopState is the explicit accumulator threaded through iterations:
// which semantic fields are already handled, which alternate phrasings
// were spent, and the fingerprint of the last-seen checkbox set.
type loopState struct {
	handledFields map[entity.SemanticField]bool
	altPhrased    map[entity.SemanticField]bool
	checkboxSig   string
}

func newLoopState() *loopState {
	return &loopState{
		handledFields: make(map[entity.SemanticField]bool),
		altPhrased:    make(map[entity.SemanticField]bool),
	}
}

// decision is the single action classified out of one observation.
type decision struct {
	kind   entity.ActionKind
	line   string
	labels []string
	sig    string
}

const contactSurfaceInstruction = "If this page is not already a contact, quote, or booking form, " +
	"click the link or button that leads to one. Do not fill or send anything yet."

// Fill runs the decision loop. The browser session is closed on every
// exit path. Vendor failures are reported in the result, not as errors;
// a half-filled form with a trace is a useful outcome.
func (l *Loop) Fill(ctx context.Context, req input.FillRequest) (*input.FillResult, error) {
	defer l.browser.Close()

	res := &input.FillResult{}

	if err := l.browser.Navigate(ctx, req.WebsiteURL); err != nil {
		l.log.Error("Navigation failed", "url", req.WebsiteURL, "error", err)
		res.Message = fmt.Sprintf("navigation failed: %v", err)
		return res, nil
	}

	if out, err := l.agent.Act(ctx, contactSurfaceInstruction); err != nil {
		l.log.Warn("Contact-surface click-through failed", "error", err)
	} else {
		l.log.Debug("Contact-surface click-through", "result", out)
	}
	l.sleep(ctx, l.cfg.NavigateSettle)

	st := newLoopState()
	trace := &res.Trace

	for i := 1; i <= l.cfg.MaxIterations; i++ {
		if ctx.Err() != nil {
			trace.TerminatedBy = entity.TermDeadline
			break
		}
		trace.Iterations = i

		obs, err := l.agent.Observe(ctx)
		if err != nil {
			l.log.Warn("Observation failed", "iteration", i, "error", err)
			continue
		}
		if len(obs) == 0 {
			trace.TerminatedBy = entity.TermNoElements
			break
		}

		d, ok := l.classify(obs, st)
		if !ok {
			trace.TerminatedBy = entity.TermNoMatch
			break
		}

		step := l.execute(ctx, d, req.Customer, st)
		step.Step = len(trace.Steps) + 1
		trace.Steps = append(trace.Steps, step)

		if negativeOutcome(step.Result) {
			trace.TerminatedBy = entity.TermNegativeOutcome
			break
		}
	}
	if trace.TerminatedBy == "" {
		trace.TerminatedBy = entity.TermBudgetExhausted
	}

	if shot, err := l.browser.Screenshot(ctx); err != nil {
		l.log.Warn("Final screenshot failed", "error", err)
	} else {
		res.Screenshot = shot
	}
	res.FormURL = l.browser.CurrentURL()
	res.Success = true
	res.Message = "form fill finished: " + trace.TerminatedBy
	return res, nil
}

// classify picks exactly one action by priority. The checkbox-set
// signature guards both select-type classes: a set identical to the
// previous iteration means the page did not react, so selecting again
// would loop forever.
func (l *Loop) classify(obs []string, st *loopState) (decision, bool) {
	labels, hasGroup := l.probe.CheckboxGroup(obs)
	sig := CheckboxSignature(labels)
	seenBefore := sig != "" && sig == st.checkboxSig

	if line, ok := l.probe.AddToBooking(obs); ok {
		return decision{kind: entity.ActionAddToBooking, line: line}, true
	}
	if line, ok := l.probe.BookService(obs); ok {
		return decision{kind: entity.ActionBookService, line: line}, true
	}
	if line, ok := l.probe.ServiceOption(obs); ok && !seenBefore {
		return decision{kind: entity.ActionSelectOption, line: line, sig: sig}, true
	}
	if line, ok := l.probe.EmptyInput(obs); ok {
		return decision{kind: entity.ActionFillFields, line: line}, true
	}
	if hasGroup && !seenBefore {
		return decision{kind: entity.ActionSelectCheckbox, labels: labels, sig: sig}, true
	}
	if line, ok := l.probe.NavigationButton(obs); ok {
		return decision{kind: entity.ActionClickButton, line: line}, true
	}
	return decision{}, false
}

// execute performs the single chosen action and waits the settle delay
// appropriate to it. Act errors are recorded on the step, never
// propagated.
func (l *Loop) execute(ctx context.Context, d decision, customer entity.Customer, st *loopState) entity.TraceStep {
	start := time.Now()
	step := entity.TraceStep{Kind: d.kind, At: start}
	settle := l.cfg.SelectSettle

	switch d.kind {
	case entity.ActionAddToBooking:
		step.Instruction = fmt.Sprintf("Click the add-to-booking control: %s", d.line)
		step.Result, step.Error = l.act(ctx, step.Instruction)
		settle = l.cfg.NavigateSettle

	case entity.ActionBookService:
		step.Instruction = fmt.Sprintf("Click the book-service control: %s", d.line)
		step.Result, step.Error = l.act(ctx, step.Instruction)
		settle = l.cfg.NavigateSettle

	case entity.ActionSelectOption:
		step.Instruction = fmt.Sprintf("Select the unselected service option: %s", d.line)
		step.Result, step.Error = l.act(ctx, step.Instruction)
		st.checkboxSig = d.sig

	case entity.ActionFillFields:
		step.Instruction = "fill known form fields from the field map"
		pass := l.runFieldPass(ctx, customer, st)
		if len(pass.filled) == 0 && len(pass.skipped) == 0 {
			// Deterministic pass found nothing it recognizes; hand the
			// single catch-all phrasing to the agent.
			step.Instruction = "Fill the first empty form field with the matching customer detail " +
				"(name, email, phone, address, or project description)."
			step.Result, step.Error = l.act(ctx, step.Instruction)
		} else {
			step.Result = pass.describe()
		}
		settle = l.cfg.FillSettle

	case entity.ActionSelectCheckbox:
		step.Instruction = fmt.Sprintf("Select the first unchecked option among: %s",
			strings.Join(d.labels, ", "))
		step.Result, step.Error = l.act(ctx, step.Instruction)
		st.checkboxSig = d.sig

	case entity.ActionClickButton:
		step.Instruction = fmt.Sprintf("Click the button that advances the form: %s. "+
			"Do not click any final submit control.", d.line)
		step.Result, step.Error = l.act(ctx, step.Instruction)
		settle = l.cfg.NavigateSettle
	}

	l.sleep(ctx, settle)
	step.DurationMS = time.Since(start).Milliseconds()
	return step
}

func (l *Loop) act(ctx context.Context, instruction string) (result, errMsg string) {
	out, err := l.agent.Act(ctx, instruction)
	if err != nil {
		l.log.Warn("Act failed", "instruction", instruction, "error", err)
		return "", err.Error()
	}
	return out, ""
}

// negativeOutcome reports whether an action result sounds like the page
// refused or the action was redundant.
func negativeOutcome(result string) bool {
	if result == "" {
		return false
	}
	lower := strings.ToLower(result)
	return strings.Contains(lower, "no ") ||
		strings.Contains(lower, "cannot") ||
		strings.Contains(lower, "already")
}
