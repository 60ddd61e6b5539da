package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/profile"
	"github.com/cmlabs-hris/attendance-agent-go/internal/domain/settings"
	syncdomain "github.com/cmlabs-hris/attendance-agent-go/internal/domain/sync"
	"github.com/cmlabs-hris/attendance-agent-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-agent-go/internal/repository/sqlite"
)

type ServiceImpl struct {
	db             *database.DB
	repo           settings.Repository
	profileRepo    profile.Repository
	attendanceRepo attendance.Repository
	syncService    syncdomain.Service
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(
	db *database.DB,
	repo settings.Repository,
	profileRepo profile.Repository,
	attendanceRepo attendance.Repository,
	syncService syncdomain.Service,
	logger *slog.Logger,
) *ServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceImpl{
		db:             db,
		repo:           repo,
		profileRepo:    profileRepo,
		attendanceRepo: attendanceRepo,
		syncService:    syncService,
		logger:         logger,
		now:            time.Now,
	}
}

// Get implements settings.Service.
func (s *ServiceImpl) Get(ctx context.Context, key string) (settings.Response, error) {
	m, err := s.repo.Get(ctx, key)
	if err != nil {
		return settings.Response{}, err
	}
	return settings.ToResponse(m), nil
}

// Put implements settings.Service. The write lands locally and is queued for
// push; writing the same key again before it syncs supersedes the queued
// value.
func (s *ServiceImpl) Put(ctx context.Context, key, value string) (settings.Response, error) {
	req := settings.PutRequest{Value: value}
	if err := req.Validate(); err != nil {
		return settings.Response{}, err
	}

	now := s.now()
	if err := s.repo.Set(ctx, key, value, now); err != nil {
		return settings.Response{}, fmt.Errorf("failed to store setting %s: %w", key, err)
	}

	m, err := s.repo.Get(ctx, key)
	if err != nil {
		return settings.Response{}, err
	}
	return settings.ToResponse(m), nil
}

// SetPin implements settings.Service. Only the bcrypt hash is stored; the
// pin itself is never persisted or synced.
func (s *ServiceImpl) SetPin(ctx context.Context, pin string) error {
	req := settings.PinRequest{Pin: pin}
	if err := req.Validate(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	return s.repo.SetPinHash(ctx, string(hash))
}

// Unlock implements settings.Service.
func (s *ServiceImpl) Unlock(ctx context.Context, pin string) error {
	hash, err := s.repo.GetPinHash(ctx)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return settings.ErrPinMismatch
		}
		return fmt.Errorf("failed to verify pin: %w", err)
	}
	return nil
}

// Logout implements settings.Service. The in-flight sync cycle is cancelled
// before the wipe so a late response cannot write into an emptied store. The
// wipe covers all three categories plus the device pin and runs in one
// transaction: a failure part way through leaves the store untouched rather
// than half cleared.
func (s *ServiceImpl) Logout(ctx context.Context) error {
	if s.syncService != nil {
		s.syncService.Cancel()
	}

	err := sqlite.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if err := s.attendanceRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear punch log: %w", err)
		}
		if err := s.profileRepo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear profile: %w", err)
		}
		if err := s.repo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("local store wiped on logout")
	return nil
}
