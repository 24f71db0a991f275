package service

import (
	"context"

	"campushub/internal/auth"
	"campushub/internal/domain"
	"campushub/internal/dto"
	"campushub/internal/model"
)

func (s *Service) CreateEvent(ctx context.Context, actor auth.Actor, req dto.CreateEventRequest) (*model.Event, error) {
	if !auth.Authorize(actor, auth.ActionCreateEvent, auth.Relation{}) {
		return nil, domain.ErrForbidden
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, domain.ErrInvalidEventDates
	}

	event := &model.Event{
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		RegistrationDeadline: req.RegistrationDeadline,
		MaxAttendees:         req.MaxAttendees,
		IsActive:             true,
		CreatorID:            actor.UserID,
	}

	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	event.ID = id

	s.log.Info().Int64("event_id", id).Int64("creator_id", actor.UserID).Msg("event created")
	return s.repo.GetEventByID(ctx, id)
}

func (s *Service) UpdateEvent(ctx context.Context, actor auth.Actor, eventID int64, req dto.UpdateEventRequest) (*model.Event, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rel := auth.Relation{Organizer: event.CreatorID == actor.UserID}
	if !auth.Authorize(actor, auth.ActionUpdateEvent, rel) {
		return nil, domain.ErrForbidden
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = *req.EndDate
	}
	if req.RegistrationDeadline != nil {
		event.RegistrationDeadline = *req.RegistrationDeadline
	}
	if req.MaxAttendees != nil {
		event.MaxAttendees = req.MaxAttendees
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}

	if !event.EndDate.After(event.StartDate) {
		return nil, domain.ErrInvalidEventDates
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}

	s.log.Info().Int64("event_id", event.ID).Msg("event updated")
	return s.repo.GetEventByID(ctx, eventID)
}

func (s *Service) GetEvent(ctx context.Context, eventID int64) (*model.Event, int, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountActiveRegistrations(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	return event, count, nil
}

func (s *Service) ListEvents(ctx context.Context) ([]dto.EventResponse, error) {
	events, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		count, err := s.repo.CountActiveRegistrations(ctx, events[i].ID)
		if err != nil {
			s.log.Error().Err(err).Int64("event_id", events[i].ID).Msg("failed to count registrations")
			continue
		}
		resp = append(resp, dto.NewEventResponse(&events[i], count))
	}
	return resp, nil
}
