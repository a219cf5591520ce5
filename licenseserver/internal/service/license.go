package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"licensegate/licenseserver/internal/model"
	"licensegate/licenseserver/internal/repository"
)

// Verdict is the outcome of a license authentication.
type Verdict struct {
	Valid   bool
	Message string
}

func (s *Service) CountLicenses(ctx context.Context) (int64, error) {
	return s.repo.CountLicenses(ctx)
}

func (s *Service) CreateLicense(ctx context.Context, token string, durationDays int) (string, error) {
	if err := s.requireAdmin(ctx, token); err != nil {
		return "", err
	}
	if durationDays <= 0 {
		return "", ValidationError{Msg: "duration must be a positive number of days"}
	}

	for range maxKeyAttempts {
		key, err := generateKey(s.keyLength)
		if err != nil {
			return "", err
		}
		lic := model.License{
			Key:          key,
			CreatedAt:    s.now(),
			DurationDays: durationDays,
		}
		err = s.repo.CreateLicense(ctx, &lic)
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		return key, nil
	}
	return "", fmt.Errorf("no unique license key after %d attempts", maxKeyAttempts)
}

func (s *Service) SuspendLicense(ctx context.Context, token, key string) error {
	if err := s.requireAdmin(ctx, token); err != nil {
		return err
	}
	exists, err := s.repo.LicenseExists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return s.repo.SuspendLicense(ctx, key)
}

func (s *Service) DeleteLicense(ctx context.Context, token, key string) error {
	if err := s.requireAdmin(ctx, token); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteLicense(ctx, key)
	if err != nil {
		return err
	}
	if !deleted {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Service) ClaimLicense(ctx context.Context, key, ownerID string) error {
	return s.repo.WithTx(ctx, func(repo repository.Repository) error {
		lic, err := repo.GetLicense(ctx, key)
		if err != nil {
			return err
		}
		if lic.Claimed() {
			return ConflictError{Msg: "License already claimed"}
		}
		if _, err := repo.GetUser(ctx, ownerID); err != nil {
			if IsNotFound(err) {
				return ValidationError{Msg: "Unknown owner"}
			}
			return err
		}
		claimed, err := repo.ClaimLicense(ctx, key, ownerID)
		if err != nil {
			return err
		}
		if !claimed {
			return ConflictError{Msg: "License already claimed"}
		}
		return nil
	})
}

// Authenticate checks a license for the given address. The first successful
// call on a claimed license activates it: the validity window starts and the
// address becomes the only one the license answers for.
func (s *Service) Authenticate(ctx context.Context, key, ip string) (Verdict, error) {
	var verdict Verdict
	err := s.repo.WithTx(ctx, func(repo repository.Repository) error {
		lic, err := repo.GetLicense(ctx, key)
		if err != nil {
			return err
		}
		if !lic.Claimed() {
			verdict = Verdict{Valid: false, Message: "Unclaimed License"}
			return nil
		}

		now := s.now()
		if !lic.Activated() {
			expires := now.Add(time.Duration(lic.DurationDays) * 24 * time.Hour)
			if _, err := repo.ActivateLicense(ctx, key, ip, expires); err != nil {
				return err
			}
			if lic, err = repo.GetLicense(ctx, key); err != nil {
				return err
			}
		}

		verdict = Verdict{Valid: lic.ValidFor(ip, now)}
		return nil
	})
	if err != nil {
		return Verdict{}, err
	}
	return verdict, nil
}

func (s *Service) IsActive(ctx context.Context, key string) (bool, error) {
	lic, err := s.repo.GetLicense(ctx, key)
	if err != nil {
		return false, err
	}
	return lic.Active(s.now()), nil
}
