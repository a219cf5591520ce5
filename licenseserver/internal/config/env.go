package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	DefaultListenAddr    = ":8080"
	DefaultDBPath        = "licenseserver.db"
	DefaultLicenseLength = 32
	minLicenseLength     = 8
	maxLicenseLength     = 128
)

type Env struct {
	ListenAddr    string
	DBPath        string
	JWTSecret     string
	LicenseLength int
	LogLevel      zerolog.Level

	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

func (e Env) HasAdmin() bool {
	return e.AdminUsername != "" && e.AdminPassword != ""
}

func LoadEnv() (Env, error) {
	env := Env{
		ListenAddr:    strings.TrimSpace(os.Getenv("LISTEN_ADDR")),
		DBPath:        strings.TrimSpace(os.Getenv("DB_PATH")),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminUsername: strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		LicenseLength: DefaultLicenseLength,
		LogLevel:      zerolog.InfoLevel,
	}
	if env.ListenAddr == "" {
		env.ListenAddr = DefaultListenAddr
	}
	if env.DBPath == "" {
		env.DBPath = DefaultDBPath
	}

	var errs []string
	if strings.TrimSpace(env.JWTSecret) == "" {
		errs = append(errs, "JWT_SECRET is required")
	}
	if v := os.Getenv("LICENSE_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("LICENSE_LENGTH: %v", err))
		} else {
			env.LicenseLength = n
		}
	}
	if env.LicenseLength < minLicenseLength || env.LicenseLength > maxLicenseLength {
		errs = append(errs, fmt.Sprintf("LICENSE_LENGTH must be %d-%d", minLicenseLength, maxLicenseLength))
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("LOG_LEVEL: %v", err))
		} else {
			env.LogLevel = lvl
		}
	}
	if (env.AdminUsername == "") != (env.AdminPassword == "") {
		errs = append(errs, "ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if len(errs) > 0 {
		return Env{}, errors.New(strings.Join(errs, "; "))
	}

	return env, nil
}
