package service

import (
	"context"
	"fmt"
	"strings"

	"bistro/internal/auth"
	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// staffService implements StaffService.
type staffService struct {
	accountRepo repository.AccountRepository
	logger      zerolog.Logger
}

// NewStaffService creates a new staff service.
func NewStaffService(accountRepo repository.AccountRepository, logger zerolog.Logger) StaffService {
	return &staffService{
		accountRepo: accountRepo,
		logger:      logger.With().Str("service", "staff").Logger(),
	}
}

// inTx runs fn in an account transaction and commits when it succeeds.
func (s *staffService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.accountRepo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *staffService) List(ctx context.Context) (*model.StaffListing, error) {
	staff, err := s.accountRepo.ListStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	listing := &model.StaffListing{Staff: staff, TotalStaff: len(staff)}
	for _, m := range staff {
		if m.Profile.IsActive {
			listing.ActiveStaff++
		}
	}
	return listing, nil
}

func staffRole(r model.Role) (model.Role, error) {
	if r == "" {
		return model.RoleStaff, nil
	}
	if !r.ValidStaffRole() {
		return "", model.NewValidationError("Invalid role")
	}
	return r, nil
}

func (s *staffService) Add(ctx context.Context, req *model.StaffRequest) (*model.StaffMember, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, model.NewValidationError("Username and password are required")
	}
	if err := checkNewPassword(req.Password, req.Password2); err != nil {
		return nil, err
	}
	role, err := staffRole(req.Role)
	if err != nil {
		return nil, err
	}

	exists, err := s.accountRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to add staff: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	member := &model.StaffMember{
		Account: model.Account{
			Username:     username,
			Email:        strings.TrimSpace(req.Email),
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			IsActive:     true,
		},
		Profile: model.StaffProfile{
			Role:     role,
			Phone:    strings.TrimSpace(req.Phone),
			IsActive: true,
		},
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.accountRepo.CreateAccount(ctx, tx, &member.Account); err != nil {
			return err
		}
		member.Profile.AccountID = member.Account.ID
		return s.accountRepo.CreateStaffProfile(ctx, tx, &member.Profile)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", username).Str("role", string(role)).Msg("staff member added")
	return member, nil
}

// member loads a staff member other than the acting account.
func (s *staffService) member(ctx context.Context, actorID, profileID int64) (*model.StaffMember, error) {
	m, err := s.accountRepo.GetStaffMember(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	if m == nil {
		return nil, model.ErrStaffNotFound
	}
	if actorID != 0 && m.Account.ID == actorID {
		return nil, model.ErrSelfAction
	}
	return m, nil
}

func (s *staffService) Edit(ctx context.Context, actorID, profileID int64, upd *model.StaffUpdate) (*model.StaffMember, error) {
	m, err := s.member(ctx, actorID, profileID)
	if err != nil {
		return nil, err
	}

	role := m.Profile.Role
	if upd.Role != "" {
		if role, err = staffRole(upd.Role); err != nil {
			return nil, err
		}
	}

	m.Account.FirstName = strings.TrimSpace(upd.FirstName)
	m.Account.LastName = strings.TrimSpace(upd.LastName)
	m.Account.Email = strings.TrimSpace(upd.Email)
	m.Profile.Phone = strings.TrimSpace(upd.Phone)
	m.Profile.Role = role

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.accountRepo.UpdateAccount(ctx, tx, &m.Account); err != nil {
			return err
		}
		return s.accountRepo.UpdateStaffProfile(ctx, tx, &m.Profile)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("profile_id", profileID).Str("role", string(role)).Msg("staff member updated")
	return m, nil
}

// ToggleActive flips the profile and the account login together.
func (s *staffService) ToggleActive(ctx context.Context, actorID, profileID int64) (*model.StaffMember, error) {
	m, err := s.member(ctx, actorID, profileID)
	if err != nil {
		return nil, err
	}

	active := !m.Profile.IsActive
	if err := s.accountRepo.SetStaffActive(ctx, profileID, active); err != nil {
		return nil, err
	}

	m.Profile.IsActive = active
	m.Account.IsActive = active
	if err := s.inTx(ctx, func(tx pgx.Tx) error {
		return s.accountRepo.UpdateAccount(ctx, tx, &m.Account)
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("profile_id", profileID).Bool("active", active).Msg("staff member toggled")
	return m, nil
}

func (s *staffService) ResetPassword(ctx context.Context, profileID int64, req *model.PasswordReset) error {
	if req.NewPassword == "" {
		return model.NewValidationError("Password cannot be empty")
	}
	if len(req.NewPassword) < auth.MinPasswordLength {
		return model.ErrPasswordTooShort
	}
	if req.NewPassword != req.NewPassword2 {
		return model.ErrPasswordMismatch
	}

	m, err := s.member(ctx, 0, profileID)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.accountRepo.SetPassword(ctx, m.Account.ID, hash); err != nil {
		return err
	}

	s.logger.Info().Int64("profile_id", profileID).Msg("staff password reset")
	return nil
}

func (s *staffService) Delete(ctx context.Context, actorID, profileID int64) error {
	m, err := s.member(ctx, actorID, profileID)
	if err != nil {
		return err
	}

	// The profile goes with the account.
	if err := s.accountRepo.DeleteAccount(ctx, m.Account.ID); err != nil {
		return err
	}

	s.logger.Info().Int64("profile_id", profileID).Str("username", m.Account.Username).Msg("staff member deleted")
	return nil
}

func (s *staffService) BootstrapOwner(ctx context.Context, req *model.StaffRequest) (*model.StaffMember, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, model.NewValidationError("Username is required")
	}

	account, err := s.accountRepo.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil {
		req.Role = model.RoleOwner
		return s.Add(ctx, req)
	}

	profile, err := s.accountRepo.GetStaffProfile(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up staff profile: %w", err)
	}

	m := &model.StaffMember{Account: *account}
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if profile == nil {
			m.Profile = model.StaffProfile{AccountID: account.ID, Role: model.RoleOwner, IsActive: true}
			return s.accountRepo.CreateStaffProfile(ctx, tx, &m.Profile)
		}
		m.Profile = *profile
		m.Profile.Role = model.RoleOwner
		return s.accountRepo.UpdateStaffProfile(ctx, tx, &m.Profile)
	})
	if err != nil {
		return nil, err
	}

	if !m.Profile.IsActive {
		if err := s.accountRepo.SetStaffActive(ctx, m.Profile.ID, true); err != nil {
			return nil, err
		}
		m.Profile.IsActive = true
	}

	s.logger.Info().Str("username", username).Msg("owner access granted")
	return m, nil
}
