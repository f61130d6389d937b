// internal/integrity/auditor.go
package integrity

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"focis/internal/domain"
	"focis/internal/eventstore"
	"focis/internal/projection"
)

// Input is what a rule inspects: every event in append order (reversed ones
// included) and the replay view of the same ledger.
type Input struct {
	Events []domain.Event
	Ledger projection.Ledger
	Now    time.Time
}

// Rule is a named invariant the ledger must satisfy.
type Rule struct {
	Name        string
	Description string
	Check       func(in Input) []Violation
}

// Violation names an event that breaks a rule.
type Violation struct {
	EventID string `json:"eventId,omitempty"`
	Message string `json:"message"`
}

// Result is the outcome of one rule.
type Result struct {
	Rule        string        `json:"rule"`
	Description string        `json:"description"`
	Passed      bool          `json:"passed"`
	Violations  []Violation   `json:"violations"`
	Duration    time.Duration `json:"duration"`
}

// Report is the outcome of a full audit.
type Report struct {
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
	Events    int           `json:"events"`
	Passed    bool          `json:"passed"`
	Results   []Result      `json:"results"`
}

// Auditor evaluates registered rules against ledger snapshots.
type Auditor struct {
	tracer trace.Tracer
	rules  []Rule
	mu     sync.Mutex
}

func NewAuditor() *Auditor {
	return &Auditor{
		tracer: otel.Tracer("focis/integrity"),
		rules:  make([]Rule, 0),
	}
}

// RegisterRule adds a rule to the audit.
func (a *Auditor) RegisterRule(r Rule) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rules = append(a.rules, r)
}

// Rules returns the registered rules in registration order.
func (a *Auditor) Rules() []Rule {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Rule(nil), a.rules...)
}

// Run evaluates every rule against snap.
func (a *Auditor) Run(ctx context.Context, snap eventstore.Snapshot) Report {
	ctx, span := a.tracer.Start(ctx, "integrity.run",
		trace.WithAttributes(attribute.Int("events.total", len(snap.Events))),
	)
	defer span.End()

	in := Input{
		Events: snap.Events,
		Ledger: projection.Ledger{Events: snap.Events, MasterData: snap.MasterData},
		Now:    snap.TakenAt,
	}
	report := Report{
		StartTime: time.Now(),
		Events:    len(snap.Events),
		Passed:    true,
		Results:   make([]Result, 0),
	}

	for _, rule := range a.Rules() {
		report.Results = append(report.Results, a.runRule(ctx, rule, in))
		if !report.Results[len(report.Results)-1].Passed {
			report.Passed = false
		}
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	span.SetAttributes(attribute.Bool("audit.passed", report.Passed))
	return report
}

func (a *Auditor) runRule(ctx context.Context, rule Rule, in Input) Result {
	_, span := a.tracer.Start(ctx, "integrity.rule",
		trace.WithAttributes(attribute.String("rule.name", rule.Name)),
	)
	defer span.End()

	start := time.Now()
	violations := rule.Check(in)
	if violations == nil {
		violations = []Violation{}
	}
	span.SetAttributes(attribute.Int("violations", len(violations)))
	return Result{
		Rule:        rule.Name,
		Description: rule.Description,
		Passed:      len(violations) == 0,
		Violations:  violations,
		Duration:    time.Since(start),
	}
}

// PrintReport writes a human-readable report to w.
func PrintReport(w io.Writer, report Report) {
	fmt.Fprintf(w, "🔎 Integrity audit of %d events\n", report.Events)
	for _, r := range report.Results {
		if r.Passed {
			fmt.Fprintf(w, "✅ PASS  %s\n", r.Rule)
			continue
		}
		fmt.Fprintf(w, "❌ FAIL  %s (%d violations)\n", r.Rule, len(r.Violations))
		for _, v := range r.Violations {
			if v.EventID != "" {
				fmt.Fprintf(w, "   - %s: %s\n", v.EventID, v.Message)
			} else {
				fmt.Fprintf(w, "   - %s\n", v.Message)
			}
		}
	}
	if report.Passed {
		fmt.Fprintf(w, "🛡️  Ledger explains every balance\n")
	} else {
		fmt.Fprintf(w, "⚠️  Ledger integrity violated\n")
	}
	fmt.Fprintf(w, "📊 Duration: %s\n", report.Duration)
}
