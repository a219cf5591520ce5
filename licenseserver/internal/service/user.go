package service

import (
	"context"
	"errors"
	"strings"

	"licensegate/licenseserver/internal/model"
	"licensegate/licenseserver/internal/repository"
)

func (s *Service) CreateUser(ctx context.Context, username, email, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ValidationError{Msg: "username and password are required"}
	}
	u, err := model.NewUser(username, strings.TrimSpace(email), password, model.RankCustomer)
	if err != nil {
		return "", err
	}
	if err := s.repo.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "", ConflictError{Msg: "Username already taken"}
		}
		return "", err
	}
	return s.issueToken(u.ID)
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if IsNotFound(err) {
			return "", AuthError{Msg: "Invalid credentials"}
		}
		return "", err
	}
	if !u.VerifyPassword(password) {
		return "", AuthError{Msg: "Invalid credentials"}
	}
	return s.issueToken(u.ID)
}

func (s *Service) userFromToken(ctx context.Context, token string) (model.User, error) {
	userID, err := s.parseToken(token)
	if err != nil {
		return model.User{}, err
	}
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if IsNotFound(err) {
			return model.User{}, AuthError{Msg: "Invalid token"}
		}
		return model.User{}, err
	}
	return u, nil
}

func (s *Service) Rank(ctx context.Context, token string) (int, error) {
	u, err := s.userFromToken(ctx, token)
	if err != nil {
		return 0, err
	}
	return u.Rank, nil
}

func (s *Service) requireAdmin(ctx context.Context, token string) error {
	u, err := s.userFromToken(ctx, token)
	if err != nil {
		if IsAuth(err) {
			return AuthError{Msg: "Unauthorized"}
		}
		return err
	}
	if !u.IsAdmin() {
		return AuthError{Msg: "Unauthorized"}
	}
	return nil
}

// EnsureAdmin creates an admin account unless the username is taken.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return false, nil
	} else if !IsNotFound(err) {
		return false, err
	}
	u, err := model.NewUser(username, email, password, model.RankAdmin)
	if err != nil {
		return false, err
	}
	if err := s.repo.CreateUser(ctx, &u); err != nil {
		return false, err
	}
	return true, nil
}
