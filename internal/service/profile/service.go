package profile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/profile"
)

type ServiceImpl struct {
	repo profile.Repository
	now  func() time.Time
}

func NewService(repo profile.Repository) *ServiceImpl {
	return &ServiceImpl{
		repo: repo,
		now:  time.Now,
	}
}

// Get implements profile.Service.
func (s *ServiceImpl) Get(ctx context.Context) (profile.Response, error) {
	view, err := s.repo.Get(ctx)
	if err != nil {
		return profile.Response{}, err
	}

	pending, err := s.repo.ListUnsynced(ctx)
	if err != nil {
		return profile.Response{}, fmt.Errorf("failed to list pending fields: %w", err)
	}

	return profile.ToResponse(view, pending), nil
}

// Update implements profile.Service. Each edited field is applied to the
// local view immediately and queued for push with the same timestamp, so the
// UI reflects the edit before any network round-trip. Re-editing a field
// before it syncs replaces the queued value rather than stacking a second
// mutation.
func (s *ServiceImpl) Update(ctx context.Context, req profile.UpdateRequest) (profile.Response, error) {
	if err := req.Validate(); err != nil {
		return profile.Response{}, err
	}

	view, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, profile.ErrProfileNotFound) {
			return profile.Response{}, err
		}
		view = profile.Profile{}
	}

	now := s.now()

	// Map iteration order is random; queue in a stable order so the oldest
	// first push order is deterministic for a single update call.
	names := make([]string, 0, len(req.Fields))
	for name := range req.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.repo.QueueMutation(ctx, profile.FieldMutation{
			Property:  name,
			Value:     req.Fields[name],
			UpdatedAt: now,
		}); err != nil {
			return profile.Response{}, fmt.Errorf("failed to queue %s: %w", name, err)
		}
		view.SetField(name, req.Fields[name])
	}
	view.LastUpdatedAt = now

	if err := s.repo.Save(ctx, view); err != nil {
		return profile.Response{}, fmt.Errorf("failed to save profile view: %w", err)
	}

	pending, err := s.repo.ListUnsynced(ctx)
	if err != nil {
		return profile.Response{}, fmt.Errorf("failed to list pending fields: %w", err)
	}

	return profile.ToResponse(view, pending), nil
}
