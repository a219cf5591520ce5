package repository

import (
	"context"
	"errors"
	"time"

	"licensegate/licenseserver/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

type Repository interface {
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)

	CreateLicense(ctx context.Context, l *model.License) error
	GetLicense(ctx context.Context, key string) (model.License, error)
	LicenseExists(ctx context.Context, key string) (bool, error)
	CountLicenses(ctx context.Context) (int64, error)
	// ClaimLicense sets the owner only if the license has none yet.
	ClaimLicense(ctx context.Context, key, ownerID string) (bool, error)
	// ActivateLicense starts the license clock only if it has not started.
	ActivateLicense(ctx context.Context, key, ip string, expiresAt time.Time) (bool, error)
	// SuspendLicense does not report a missing key; check LicenseExists first.
	SuspendLicense(ctx context.Context, key string) error
	DeleteLicense(ctx context.Context, key string) (bool, error)
}
