package service

import (
	"context"
	"fmt"
	"strings"

	"bistro/internal/auth"
	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	accountRepo repository.AccountRepository
	tokens      *auth.TokenManager
	logger      zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(accountRepo repository.AccountRepository, tokens *auth.TokenManager, logger zerolog.Logger) AuthService {
	return &authService{
		accountRepo: accountRepo,
		tokens:      tokens,
		logger:      logger.With().Str("service", "auth").Logger(),
	}
}

func checkNewPassword(password, confirm string) error {
	if password != confirm {
		return model.ErrPasswordMismatch
	}
	if len(password) < auth.MinPasswordLength {
		return model.ErrPasswordTooShort
	}
	return nil
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if err := checkNewPassword(req.Password, req.Password2); err != nil {
		return nil, err
	}

	exists, err := s.accountRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		IsActive:     true,
	}

	tx, err := s.accountRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.accountRepo.CreateAccount(ctx, tx, account); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().Int64("account_id", account.ID).Str("username", username).Msg("customer registered")
	return s.respond(account, model.RoleCustomer, "")
}

func (s *authService) respond(account *model.Account, role, claimRole model.Role) (*model.LoginResponse, error) {
	token, expires, err := s.tokens.Issue(account, claimRole)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		Account:   *account,
		Role:      role,
	}, nil
}

// authenticate checks credentials. Unknown users and bad passwords look the same.
func (s *authService) authenticate(ctx context.Context, req *model.LoginRequest) (*model.Account, error) {
	account, err := s.accountRepo.GetAccountByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if account == nil || !account.IsActive || !auth.VerifyPassword(account.PasswordHash, req.Password) {
		s.logger.Info().Str("username", req.Username).Msg("failed login attempt")
		return nil, model.ErrInvalidCredentials
	}
	return account, nil
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	account, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.respond(account, model.RoleCustomer, "")
}

func (s *authService) StaffLogin(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	account, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	profile, err := s.accountRepo.GetStaffProfile(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if profile == nil {
		return nil, model.ErrNoStaffAccess
	}
	if !profile.IsActive {
		return nil, model.ErrStaffDeactivated
	}

	s.logger.Info().Int64("account_id", account.ID).Str("role", string(profile.Role)).Msg("staff logged in")
	return s.respond(account, profile.Role, profile.Role)
}

func (s *authService) StaffRole(ctx context.Context, accountID int64) (model.Role, error) {
	profile, err := s.accountRepo.GetStaffProfile(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to load staff profile: %w", err)
	}
	if profile == nil {
		return "", model.ErrNoStaffAccess
	}
	if !profile.IsActive {
		return "", model.ErrStaffDeactivated
	}
	return profile.Role, nil
}
