// Package engine runs the alerting rules against the record store and
// exposes the notifications they produce.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nhle/equipment-alerts/internal/metrics"
	"github.com/nhle/equipment-alerts/internal/model"
	"github.com/nhle/equipment-alerts/internal/publish"
	"github.com/nhle/equipment-alerts/internal/store"
)

const (
	// DefaultMaintenanceWindow is the upcoming-maintenance look-ahead in days.
	DefaultMaintenanceWindow = 7

	// defaultRuleTimeout bounds the storage work of a single rule.
	defaultRuleTimeout = 30 * time.Second

	// defaultPublishTimeout bounds the delivery of a single notification.
	defaultPublishTimeout = 10 * time.Second
)

// Outcome is the result of evaluating one rule: either Success or Failure.
type Outcome interface {
	isOutcome()
}

// Success reports a rule that ran to completion.
type Success struct {
	Created int
	Skipped int
}

// Failure reports a rule that stopped early. Created counts notifications
// inserted before the error occurred.
type Failure struct {
	Err     error
	Created int
	Skipped int
}

func (Success) isOutcome() {}
func (Failure) isOutcome() {}

// RuleResult pairs a rule name with its outcome.
type RuleResult struct {
	Rule    string
	Outcome Outcome
}

// Succeeded reports whether the rule ran to completion.
func (r RuleResult) Succeeded() bool {
	_, ok := r.Outcome.(Success)
	return ok
}

// Created returns the number of notifications the rule inserted.
func (r RuleResult) Created() int {
	switch o := r.Outcome.(type) {
	case Success:
		return o.Created
	case Failure:
		return o.Created
	}
	return 0
}

// Skipped returns the number of records ignored because of a malformed date.
func (r RuleResult) Skipped() int {
	switch o := r.Outcome.(type) {
	case Success:
		return o.Skipped
	case Failure:
		return o.Skipped
	}
	return 0
}

// Err returns the failure reason, or nil on success.
func (r RuleResult) Err() error {
	if f, ok := r.Outcome.(Failure); ok {
		return f.Err
	}
	return nil
}

type ruleResultJSON struct {
	Rule                 string `json:"rule"`
	Succeeded            bool   `json:"succeeded"`
	NotificationsCreated int    `json:"notifications_created"`
	Skipped              int    `json:"skipped"`
	Error                string `json:"error,omitempty"`
}

func (r RuleResult) MarshalJSON() ([]byte, error) {
	out := ruleResultJSON{
		Rule:                 r.Rule,
		Succeeded:            r.Succeeded(),
		NotificationsCreated: r.Created(),
		Skipped:              r.Skipped(),
	}
	if err := r.Err(); err != nil {
		out.Error = err.Error()
	}
	return json.Marshal(out)
}

// Report aggregates a single RunAll invocation.
type Report struct {
	RunID     string       `json:"run_id"`
	StartedAt time.Time    `json:"started_at"`
	Total     int          `json:"total_notifications_created"`
	Results   []RuleResult `json:"results"`
}

// Result returns the result for the named rule.
func (r Report) Result(rule string) (RuleResult, bool) {
	for _, res := range r.Results {
		if res.Rule == rule {
			return res, true
		}
	}
	return RuleResult{}, false
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used to derive today.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMaintenanceWindow sets the upcoming-maintenance look-ahead in days.
func WithMaintenanceWindow(days int) Option {
	return func(e *Engine) { e.window = days }
}

// WithRuleTimeout bounds each rule's storage work.
func WithRuleTimeout(d time.Duration) Option {
	return func(e *Engine) { e.ruleTimeout = d }
}

// WithLogger sets the logger the engine and its rules write to.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithPublisher hands every created notification to p.
func WithPublisher(p publish.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithPublishTimeout bounds each notification's delivery. Publishing runs
// after the rule's storage work and does not count against its timeout.
func WithPublishTimeout(d time.Duration) Option {
	return func(e *Engine) { e.publishTimeout = d }
}

// WithRules replaces the default rule set.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// Engine evaluates rules and owns the notification surface.
type Engine struct {
	store       store.Store
	rules       []Rule
	now         func() time.Time
	window      int
	ruleTimeout time.Duration
	log         zerolog.Logger
	publisher   publish.Publisher

	publishTimeout time.Duration
}

// New creates an engine backed by s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       s,
		now:         time.Now,
		window:      DefaultMaintenanceWindow,
		ruleTimeout: defaultRuleTimeout,
		log:         zerolog.Nop(),
		publisher:   publish.Nop{},

		publishTimeout: defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rules == nil {
		e.rules = DefaultRules(e.window)
	}
	return e
}

// Rules returns the names of the registered rules in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		names = append(names, r.Name)
	}
	return names
}

// RunAll evaluates every rule once, in order. A failing rule is reported in
// its own result and never stops the rules after it.
func (e *Engine) RunAll(ctx context.Context) Report {
	started := e.now()
	report := Report{
		RunID:     uuid.New().String(),
		StartedAt: started.UTC(),
		Results:   make([]RuleResult, 0, len(e.rules)),
	}
	today := model.Today(started)

	log := e.log.With().Str("run_id", report.RunID).Str("today", today.String()).Logger()
	log.Info().Int("rules", len(e.rules)).Msg("running rules")

	for _, rule := range e.rules {
		res := e.runRule(ctx, log, rule, today)
		report.Total += res.Created()
		report.Results = append(report.Results, res)
	}

	log.Info().Int("created", report.Total).Msg("rules finished")
	return report
}

func (e *Engine) runRule(ctx context.Context, log zerolog.Logger, rule Rule, today model.Date) RuleResult {
	log = log.With().Str("rule", rule.Name).Logger()

	res, fresh := e.evaluate(ctx, log, rule, today)
	for _, n := range fresh {
		e.publish(ctx, log, n)
	}
	return res
}

// evaluate runs rule under the storage timeout and returns the notifications
// it created, including those created before a failure.
func (e *Engine) evaluate(ctx context.Context, log zerolog.Logger, rule Rule, today model.Date) (res RuleResult, fresh []model.Notification) {
	res.Rule = rule.Name

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.ruleTimeout)
	defer cancel()

	var created, skipped int
	fail := func(err error) RuleResult {
		metrics.RuleRunsTotal.WithLabelValues(rule.Name, "failure").Inc()
		log.Error().Err(err).Int("created", created).Msg("rule failed")
		return RuleResult{Rule: rule.Name, Outcome: Failure{Err: err, Created: created, Skipped: skipped}}
	}

	defer func() {
		metrics.RuleDuration.WithLabelValues(rule.Name).Observe(time.Since(start).Seconds())
		if skipped > 0 {
			metrics.RecordsSkipped.WithLabelValues(rule.Name).Add(float64(skipped))
		}
		if p := recover(); p != nil {
			res = fail(fmt.Errorf("rule %s panicked: %v", rule.Name, p))
		}
	}()

	eval, err := rule.Evaluate(ctx, e.store, today)
	skipped = eval.Skipped
	for _, a := range eval.Anomalies {
		log.Warn().Err(a).Msg("skipping record")
	}
	if err != nil {
		return fail(err), nil
	}

	for _, candidate := range eval.Candidates {
		n, ok, err := e.insert(ctx, log, candidate)
		if err != nil {
			return fail(err), fresh
		}
		if ok {
			created++
			fresh = append(fresh, n)
		}
	}

	metrics.RuleRunsTotal.WithLabelValues(rule.Name, "success").Inc()
	log.Info().Int("created", created).Int("skipped", skipped).Msg("rule finished")
	return RuleResult{Rule: rule.Name, Outcome: Success{Created: created, Skipped: skipped}}, fresh
}

// insert stores n unless an unread notification already covers its subject.
// It returns n with its stored id when a row was created.
func (e *Engine) insert(ctx context.Context, log zerolog.Logger, n model.Notification) (model.Notification, bool, error) {
	open, err := e.store.HasOpenNotification(ctx, n.Kind, n.SubjectID())
	if err != nil {
		return n, false, err
	}
	if open {
		return n, false, nil
	}

	n.CreatedAt = e.now().UTC()
	created, err := e.store.CreateNotification(ctx, &n)
	if err != nil || !created {
		return n, false, err
	}

	metrics.NotificationsCreated.WithLabelValues(string(n.Kind)).Inc()
	log.Debug().Int64("notification_id", n.ID).Int64("subject_id", n.SubjectID()).Msg("notification created")
	return n, true, nil
}

// publish hands n to the publisher under its own timeout. Failures are
// logged and counted, never returned.
func (e *Engine) publish(ctx context.Context, log zerolog.Logger, n model.Notification) {
	ctx, cancel := context.WithTimeout(ctx, e.publishTimeout)
	defer cancel()

	if err := e.publisher.Publish(ctx, n); err != nil {
		metrics.PublishErrors.WithLabelValues(string(n.Kind)).Inc()
		log.Warn().Err(err).Int64("notification_id", n.ID).Msg("publishing notification")
	}
}
