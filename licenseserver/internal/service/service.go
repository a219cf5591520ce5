package service

import (
	"errors"
	"time"

	"licensegate/licenseserver/internal/repository"
)

const (
	DefaultLicenseLength = 32

	maxKeyAttempts = 8
)

type Options struct {
	JWTSecret     string
	LicenseLength int
	Now           func() time.Time
}

type Service struct {
	repo      repository.Repository
	secret    []byte
	keyLength int
	now       func() time.Time
}

func New(repo repository.Repository, opts Options) (*Service, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if opts.LicenseLength <= 0 {
		opts.LicenseLength = DefaultLicenseLength
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:      repo,
		secret:    []byte(opts.JWTSecret),
		keyLength: opts.LicenseLength,
		now:       opts.Now,
	}, nil
}
