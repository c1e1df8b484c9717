// Package restrictions decides whether a user qualifies for a reset at all.
package restrictions

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
)

// RestrictionPolicy is a side effect free predicate evaluated before every reset.
type RestrictionPolicy interface {
	ShouldReset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) (bool, error)
}

// AllowAll is used when no restriction is configured.
type AllowAll struct{}

func (AllowAll) ShouldReset(context.Context, uint, *models.Course, *models.EffectiveConfig) (bool, error) {
	return true, nil
}

type departingKey struct{}

// WithDepartingEnrolment marks the reset as caused by removing an enrolment through the given
// enrol instance. That enrolment is gone by the time the restriction runs, so the instance
// stands in for it.
func WithDepartingEnrolment(ctx context.Context, enrolInstanceID uint) context.Context {
	return context.WithValue(ctx, departingKey{}, enrolInstanceID)
}

func departingEnrolment(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(departingKey{}).(uint)
	return id, ok && id != 0
}

// EnrolMethodRestriction only resets users actively enrolled through one of the allowed methods.
// A list naming methods the course does not use matches nobody.
type EnrolMethodRestriction struct {
	enrolments repositories.EnrolmentRepository
	now        func() time.Time
}

func NewEnrolMethodRestriction(enrolments repositories.EnrolmentRepository) *EnrolMethodRestriction {
	return &EnrolMethodRestriction{enrolments: enrolments, now: time.Now}
}

func (r *EnrolMethodRestriction) ShouldReset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) (bool, error) {
	if !cfg.HasRestriction() {
		return true, nil
	}

	allowed := make(map[string]bool, len(cfg.RestrictEnrol))
	for _, method := range cfg.RestrictEnrol {
		allowed[method] = true
	}

	instances, err := r.enrolments.GetInstances(ctx, course.ID)
	if err != nil {
		return false, fmt.Errorf("load enrolment instances: %w", err)
	}

	var instanceIDs []uint
	for _, instance := range instances {
		if allowed[instance.Enrol] && instance.Status == models.EnrolStatusEnabled {
			instanceIDs = append(instanceIDs, instance.ID)
		}
	}
	if len(instanceIDs) == 0 {
		return false, nil
	}

	if departing, ok := departingEnrolment(ctx); ok {
		for _, id := range instanceIDs {
			if id == departing {
				return true, nil
			}
		}
	}

	enrolments, err := r.enrolments.GetUserEnrolments(ctx, userID, instanceIDs)
	if err != nil {
		return false, fmt.Errorf("load user enrolments: %w", err)
	}

	now := r.now().Unix()
	for _, ue := range enrolments {
		if ue.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}

// All combines policies; every one must agree.
type All []RestrictionPolicy

func (a All) ShouldReset(ctx context.Context, userID uint, course *models.Course, cfg *models.EffectiveConfig) (bool, error) {
	for _, policy := range a {
		ok, err := policy.ShouldReset(ctx, userID, course, cfg)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
