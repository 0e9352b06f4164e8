package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bistro/internal/config"
	"bistro/internal/events"
	"bistro/internal/metrics"
	"bistro/internal/model"
	"bistro/internal/notify"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultAutoConfirmGuests = 4
	defaultMaxGuests         = 50
)

// reservationService implements ReservationService.
type reservationService struct {
	resRepo     repository.ReservationRepository
	accountRepo repository.AccountRepository
	notifier    notify.Notifier
	publisher   events.Publisher
	autoConfirm int
	maxGuests   int
	now         func() time.Time
	logger      zerolog.Logger
}

// NewReservationService creates a new reservation service.
func NewReservationService(
	resRepo repository.ReservationRepository,
	accountRepo repository.AccountRepository,
	notifier notify.Notifier,
	publisher events.Publisher,
	restaurant config.RestaurantConfig,
	logger zerolog.Logger,
) ReservationService {
	autoConfirm := restaurant.AutoConfirmMaxGuests
	if autoConfirm <= 0 {
		autoConfirm = defaultAutoConfirmGuests
	}
	maxGuests := restaurant.MaxGuests
	if maxGuests <= 0 {
		maxGuests = defaultMaxGuests
	}

	return &reservationService{
		resRepo:     resRepo,
		accountRepo: accountRepo,
		notifier:    notifier,
		publisher:   publisher,
		autoConfirm: autoConfirm,
		maxGuests:   maxGuests,
		now:         time.Now,
		logger:      logger.With().Str("service", "reservation").Logger(),
	}
}

func (s *reservationService) Create(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	now := s.now()
	date, err := time.ParseInLocation("2006-01-02", req.Date, now.Location())
	if err != nil {
		return nil, model.NewValidationError("Date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, model.NewValidationError("Time must be HH:MM")
	}
	if date.Before(startOfDay(now)) {
		return nil, model.ErrDateInPast
	}

	if req.Guests < 1 {
		return nil, model.ErrTooFewGuests
	}
	if req.Guests > s.maxGuests {
		return nil, model.ErrTooManyGuests
	}
	if !req.Occasion.Valid() {
		return nil, model.NewValidationError("Invalid occasion")
	}

	email := strings.TrimSpace(req.Email)
	blocked, err := s.accountRepo.GetBlocked(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocked customers: %w", err)
	}
	if blocked != nil {
		s.logger.Info().Str("email", email).Msg("blocked customer tried to book")
		return nil, model.ErrCustomerBlocked
	}

	status := model.ReservationPending
	if req.Guests <= s.autoConfirm {
		status = model.ReservationConfirmed
	}

	res := &model.Reservation{
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		Phone:          strings.TrimSpace(req.Phone),
		Date:           date,
		Time:           req.Time,
		Guests:         req.Guests,
		Occasion:       req.Occasion,
		SpecialRequest: strings.TrimSpace(req.SpecialRequest),
		Status:         status,
	}
	if err := s.resRepo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	metrics.IncReservationCreated(string(res.Status))
	s.publish(ctx, res)

	if err := s.notifier.ReservationReceived(ctx, res); err != nil {
		s.logger.Warn().Err(err).Int64("reservation_id", res.ID).Msg("failed to send reservation notification")
	}

	s.logger.Info().
		Int64("reservation_id", res.ID).
		Int("guests", res.Guests).
		Str("status", string(res.Status)).
		Msg("reservation created")

	return res, nil
}

func (s *reservationService) publish(ctx context.Context, res *model.Reservation) {
	if err := s.publisher.Publish(ctx, events.ReservationKey(res.Status), events.NewReservationEvent(res)); err != nil {
		s.logger.Warn().Err(err).Int64("reservation_id", res.ID).Msg("failed to publish reservation event")
	}
}

func (s *reservationService) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := s.resRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, model.ErrReservationNotFound
	}
	return res, nil
}

func (s *reservationService) List(ctx context.Context, filter model.ReservationFilter) (*model.ReservationListing, error) {
	reservations, err := s.resRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	byStatus, err := s.resRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}
	counts := map[string]int{"all": 0}
	for _, status := range []model.ReservationStatus{model.ReservationPending, model.ReservationConfirmed, model.ReservationCancelled} {
		counts[string(status)] = byStatus[status]
		counts["all"] += byStatus[status]
	}

	today := startOfDay(s.now())
	todayCount, err := s.resRepo.CountOnDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}
	upcoming, err := s.resRepo.CountUpcoming(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}

	return &model.ReservationListing{
		Reservations:  reservations,
		Counts:        counts,
		TodayCount:    todayCount,
		UpcomingCount: upcoming,
	}, nil
}

// decide moves a reservation to to while it is still in one of from.
func (s *reservationService) decide(ctx context.Context, id int64, from []model.ReservationStatus, to model.ReservationStatus, decision string, refused error) (*model.Reservation, error) {
	res, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, st := range from {
		if res.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, refused
	}

	updated, err := s.resRepo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	if !updated {
		// Changed by someone else since we read it.
		return nil, refused
	}

	res.Status = to
	metrics.IncReservationDecision(decision)
	s.publish(ctx, res)

	s.logger.Info().Int64("reservation_id", id).Str("decision", decision).Msg("reservation updated")
	return res, nil
}

func (s *reservationService) Approve(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.decide(ctx, id,
		[]model.ReservationStatus{model.ReservationPending},
		model.ReservationConfirmed, "approved", model.ErrOnlyPendingApprove)
}

func (s *reservationService) Reject(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.decide(ctx, id,
		[]model.ReservationStatus{model.ReservationPending},
		model.ReservationCancelled, "rejected", model.ErrOnlyPendingReject)
}

func (s *reservationService) Cancel(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.decide(ctx, id,
		[]model.ReservationStatus{model.ReservationPending, model.ReservationConfirmed},
		model.ReservationCancelled, "cancelled", model.ErrReservationCancelled)
}

func (s *reservationService) AddNote(ctx context.Context, id int64, note string) (*model.Reservation, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, model.ErrNoteEmpty
	}

	res, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.resRepo.SetStaffNote(ctx, id, note); err != nil {
		return nil, fmt.Errorf("failed to save staff note: %w", err)
	}
	res.StaffNote = note
	return res, nil
}
