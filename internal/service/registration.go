package service

import (
	"context"

	"campushub/internal/auth"
	"campushub/internal/domain"
	"campushub/internal/dto"
	"campushub/internal/model"
)

// Register creates a registration for the event. The capacity check, the
// insert, the QR credential and the confirmation outbox row commit as one
// transaction; see repo.RegisterTx.
func (s *Service) Register(ctx context.Context, actor auth.Actor, eventID int64, req dto.CreateRegistrationRequest) (dto.RegistrationResponse, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}

	rel := auth.Relation{Organizer: event.CreatorID == actor.UserID}

	targetUserID := actor.UserID
	if req.UserID != nil && *req.UserID != actor.UserID {
		if !auth.Authorize(actor, auth.ActionRegisterOther, rel) {
			return dto.RegistrationResponse{}, domain.ErrForbidden
		}
		targetUserID = *req.UserID
	} else if !auth.Authorize(actor, auth.ActionRegisterSelf, auth.Relation{Self: true}) {
		return dto.RegistrationResponse{}, domain.ErrForbidden
	}

	user, err := s.repo.GetUserByID(ctx, targetUserID)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}

	status := model.StatusPending
	if req.Status != nil {
		status = model.RegistrationStatus(*req.Status)
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	reg := &model.Registration{
		EventID: eventID,
		UserID:  targetUserID,
		Status:  status,
		Notes:   notes,
	}

	reg, err = s.repo.RegisterTx(ctx, reg, s.now(), func(registrationID int64) (string, error) {
		return s.issueQR(registrationID, eventID, targetUserID)
	})
	if err != nil {
		return dto.RegistrationResponse{}, err
	}

	s.log.Info().
		Int64("registration_id", reg.ID).
		Int64("event_id", eventID).
		Int64("user_id", targetUserID).
		Str("status", reg.Status.String()).
		Msg("registration created")

	return dto.NewRegistrationResponse(reg, event, user), nil
}

func (s *Service) ListRegistrations(ctx context.Context, actor auth.Actor, eventID int64) ([]dto.RegistrationResponse, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rel := auth.Relation{Organizer: event.CreatorID == actor.UserID}
	if !auth.Authorize(actor, auth.ActionListRegistration, rel) {
		return nil, domain.ErrForbidden
	}

	regs, err := s.repo.GetRegistrationsByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.RegistrationResponse, 0, len(regs))
	for i := range regs {
		user, err := s.repo.GetUserByID(ctx, regs[i].UserID)
		if err != nil {
			s.log.Error().Err(err).Int64("user_id", regs[i].UserID).Msg("failed to load registration user")
			continue
		}
		resp = append(resp, dto.NewRegistrationResponse(&regs[i], event, user))
	}
	return resp, nil
}

func (s *Service) GetRegistration(ctx context.Context, actor auth.Actor, eventID, registrationID int64) (dto.RegistrationResponse, error) {
	reg, event, err := s.loadRegistration(ctx, eventID, registrationID)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}

	rel := auth.Relation{
		Self:      reg.UserID == actor.UserID,
		Organizer: event.CreatorID == actor.UserID,
	}
	if !auth.Authorize(actor, auth.ActionViewRegistration, rel) {
		return dto.RegistrationResponse{}, domain.ErrForbidden
	}

	user, err := s.repo.GetUserByID(ctx, reg.UserID)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}
	return dto.NewRegistrationResponse(reg, event, user), nil
}

// UpdateRegistration applies a status/attendance/notes patch through the
// state machine. Self-service callers may only change status; attendance
// is organizer and admin territory.
func (s *Service) UpdateRegistration(ctx context.Context, actor auth.Actor, eventID, registrationID int64, req dto.UpdateRegistrationRequest) (dto.RegistrationResponse, error) {
	reg, event, err := s.loadRegistration(ctx, eventID, registrationID)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}

	rel := auth.Relation{
		Self:      reg.UserID == actor.UserID,
		Organizer: event.CreatorID == actor.UserID,
	}

	patch := domain.Patch{}
	if req.Status != nil {
		if !auth.Authorize(actor, auth.ActionUpdateStatus, rel) {
			return dto.RegistrationResponse{}, domain.ErrForbidden
		}
		status := model.RegistrationStatus(*req.Status)
		patch.Status = &status
	}
	if req.AttendanceStatus != nil {
		if !auth.Authorize(actor, auth.ActionUpdateAttendance, rel) {
			return dto.RegistrationResponse{}, domain.ErrForbidden
		}
		attendance := model.AttendanceStatus(*req.AttendanceStatus)
		patch.AttendanceStatus = &attendance
	}
	if req.Notes != nil {
		if !auth.Authorize(actor, auth.ActionUpdateNotes, rel) {
			return dto.RegistrationResponse{}, domain.ErrForbidden
		}
		patch.Notes = req.Notes
	}

	changes, intents, err := domain.ApplyPatch(reg, event, patch, s.now())
	if err != nil {
		return dto.RegistrationResponse{}, err
	}

	if err := s.repo.UpdateRegistrationTx(ctx, reg.ID, changes, intents); err != nil {
		return dto.RegistrationResponse{}, err
	}

	if !changes.Empty() {
		s.log.Info().
			Int64("registration_id", reg.ID).
			Int("notifications", len(intents)).
			Msg("registration updated")
	}

	updated, err := s.repo.GetRegistrationByID(ctx, reg.ID)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}
	user, err := s.repo.GetUserByID(ctx, updated.UserID)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}
	return dto.NewRegistrationResponse(updated, event, user), nil
}

// CancelRegistration soft-cancels: the row survives with status CANCELLED
// and a cancellation timestamp so past events keep their audit trail.
func (s *Service) CancelRegistration(ctx context.Context, actor auth.Actor, eventID, registrationID int64) error {
	reg, event, err := s.loadRegistration(ctx, eventID, registrationID)
	if err != nil {
		return err
	}

	rel := auth.Relation{
		Self:      reg.UserID == actor.UserID,
		Organizer: event.CreatorID == actor.UserID,
	}
	if !auth.Authorize(actor, auth.ActionCancel, rel) {
		return domain.ErrForbidden
	}

	changes, intents, err := domain.Cancel(reg, event, s.now())
	if err != nil {
		return err
	}
	if changes.Empty() {
		return nil
	}

	if err := s.repo.UpdateRegistrationTx(ctx, reg.ID, changes, intents); err != nil {
		return err
	}

	s.log.Info().Int64("registration_id", reg.ID).Msg("registration cancelled")
	return nil
}

func (s *Service) loadRegistration(ctx context.Context, eventID, registrationID int64) (*model.Registration, *model.Event, error) {
	reg, err := s.repo.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, nil, err
	}
	if reg.EventID != eventID {
		return nil, nil, domain.ErrRegistrationNotFound
	}
	event, err := s.repo.GetEventByID(ctx, reg.EventID)
	if err != nil {
		return nil, nil, err
	}
	return reg, event, nil
}
