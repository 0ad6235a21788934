package security

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
	"github.com/fleetops/fleet-management-backend/internal/domain/security"
	"github.com/fleetops/fleet-management-backend/internal/infrastructure/telemetry"
)

// ThresholdOverride is a configured replacement for the default rule set.
type ThresholdOverride struct {
	Action string
	Count  int
	Window time.Duration
	Reason string
}

// Detector sweeps the activity log for threshold crossings and persists one
// deduplicated incident per flagged (actor, reason).
//
// Sweeps are serialized by a mutex; the store's partial unique index on
// (actor_id, reason) WHERE status='active' backs the dedup even if a second
// process sweeps the same log.
type Detector struct {
	logs      security.LogRepository
	incidents security.IncidentRepository
	catalog   *security.ThresholdCatalog
	clock     security.Clock
	logger    *slog.Logger

	mu sync.Mutex
}

// NewDetector creates an anomaly detector
func NewDetector(
	logs security.LogRepository,
	incidents security.IncidentRepository,
	catalog *security.ThresholdCatalog,
	clock security.Clock,
	logger *slog.Logger,
) *Detector {
	if clock == nil {
		clock = security.RealClock{}
	}
	return &Detector{
		logs:      logs,
		incidents: incidents,
		catalog:   catalog,
		clock:     clock,
		logger:    logger,
	}
}

// RunSweep aggregates the log per action kind and flags actors whose count
// within the rule's window reaches the threshold. Storage failures for one
// kind are logged and do not stop the remaining kinds; the joined error is
// returned so an admin-triggered run can surface it.
func (d *Detector) RunSweep(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, span := telemetry.Tracer("fleetops.security").Start(ctx, "detector.sweep")
	defer span.End()

	started := time.Now()
	now := d.clock.Now()
	var sweepErrs []error

	for _, rule := range d.catalog.Rules() {
		activities, err := d.logs.AggregateByActor(ctx, rule.Action, now.Add(-rule.Window))
		if err != nil {
			d.logger.WarnContext(ctx, "sweep aggregation failed",
				"action", rule.Action.String(),
				"error", err,
			)
			sweepErrs = append(sweepErrs, err)
			continue
		}

		for _, activity := range activities {
			if activity.Count < rule.Count {
				continue
			}
			if err := d.flag(ctx, activity, rule); err != nil {
				sweepErrs = append(sweepErrs, err)
			}
		}
	}

	sweepDuration.Observe(time.Since(started).Seconds())
	if len(sweepErrs) > 0 {
		sweepsTotal.WithLabelValues("error").Inc()
	} else {
		sweepsTotal.WithLabelValues("ok").Inc()
	}

	err := stderrors.Join(sweepErrs...)
	telemetry.RecordError(span, err)
	return err
}

func (d *Detector) flag(ctx context.Context, activity security.ActorActivity, rule security.ThresholdRule) error {
	if _, err := d.incidents.FindActive(ctx, activity.ActorID, rule.Reason); err == nil {
		d.logger.DebugContext(ctx, "actor already flagged",
			"actor_id", activity.ActorID,
			"reason", rule.Reason,
		)
		return nil
	} else if !errors.IsType(err, errors.ErrorTypeNotFound) {
		return err
	}

	incident, err := security.NewIncident(activity, rule, d.clock.Now())
	if err != nil {
		return err
	}

	// The pre-check races with concurrent sweeps; the partial unique index
	// on (actor_id, reason) stays the arbiter.
	if err := d.incidents.Create(ctx, incident); err != nil {
		// A conflict means another sweep already flagged this actor.
		if errors.IsType(err, errors.ErrorTypeConflict) {
			d.logger.DebugContext(ctx, "actor already flagged",
				"actor_id", activity.ActorID,
				"reason", rule.Reason,
			)
			return nil
		}
		d.logger.WarnContext(ctx, "failed to persist incident",
			"actor_id", activity.ActorID,
			"reason", rule.Reason,
			"error", err,
		)
		return err
	}

	incidentsCreated.WithLabelValues(rule.Reason).Inc()
	d.logger.InfoContext(ctx, "incident created",
		"actor_id", activity.ActorID,
		"reason", rule.Reason,
		"activity_count", activity.Count,
		"observed_window", activity.ObservedWindow().String(),
	)
	return nil
}

// CatalogFromConfig builds the threshold catalog from configured overrides,
// falling back to the defaults when none are set.
func CatalogFromConfig(overrides []ThresholdOverride) (*security.ThresholdCatalog, error) {
	if len(overrides) == 0 {
		return security.NewThresholdCatalog(nil), nil
	}

	rules := make([]security.ThresholdRule, 0, len(overrides))
	for _, o := range overrides {
		action, err := security.ParseAction(o.Action)
		if err != nil {
			return nil, errors.NewValidationError("INVALID_THRESHOLD", err.Error())
		}
		rules = append(rules, security.ThresholdRule{
			Action: action,
			Count:  o.Count,
			Window: o.Window,
			Reason: o.Reason,
		})
	}
	return security.NewThresholdCatalog(rules), nil
}
