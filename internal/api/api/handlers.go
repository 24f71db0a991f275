package api

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"campushub/cmd/middleware"
	"campushub/internal/dto"
	"campushub/internal/service"
	"campushub/pkg/validator"
)

type Handlers struct {
	svc *service.Service
	log *zerolog.Logger
}

func NewHandlers(svc *service.Service, log *zerolog.Logger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

func (h *Handlers) Login(ctx *ginext.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.log.Error().Err(err).Msg("failed to parse login request")
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, verr)
		return
	}

	token, user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}

	dto.SuccessResponse(ctx, dto.LoginResponse{
		Token: token,
		User: dto.UserSummary{
			ID:    user.ID,
			Name:  user.FullName(),
			Email: user.Email,
		},
	})
}

func (h *Handlers) CreateEvent(ctx *ginext.Context) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, verr)
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), actor, req)
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}
	dto.SuccessCreatedResponse(ctx, dto.NewEventResponse(event, 0))
}

func (h *Handlers) UpdateEvent(ctx *ginext.Context) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadRequestError(ctx, "Invalid event ID")
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, verr)
		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), actor, eventID, req)
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}

	_, count, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, dto.NewEventResponse(event, count))
}

func (h *Handlers) GetEvent(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadRequestError(ctx, "Invalid event ID")
		return
	}

	event, count, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, dto.NewEventResponse(event, count))
}

func (h *Handlers) GetAllEvents(ctx *ginext.Context) {
	events, err := h.svc.ListEvents(ctx.Request.Context())
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, events)
}

func (h *Handlers) Register(ctx *ginext.Context) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadRequestError(ctx, "Invalid event ID")
		return
	}

	// Body is optional for plain self-registration.
	var req dto.CreateRegistrationRequest
	if err := bindOptionalJSON(ctx, &req); err != nil {
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, verr)
		return
	}

	resp, err := h.svc.Register(ctx.Request.Context(), actor, eventID, req)
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}
	dto.SuccessCreatedResponse(ctx, resp)
}

func (h *Handlers) ListRegistrations(ctx *ginext.Context) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadRequestError(ctx, "Invalid event ID")
		return
	}

	regs, err := h.svc.ListRegistrations(ctx.Request.Context(), actor, eventID)
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, regs)
}

func (h *Handlers) GetRegistration(ctx *ginext.Context) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, registrationID, err := registrationIDs(ctx)
	if err != nil {
		dto.BadRequestError(ctx, err.Error())
		return
	}

	resp, err := h.svc.GetRegistration(ctx.Request.Context(), actor, eventID, registrationID)
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, resp)
}

func (h *Handlers) UpdateRegistration(ctx *ginext.Context) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, registrationID, err := registrationIDs(ctx)
	if err != nil {
		dto.BadRequestError(ctx, err.Error())
		return
	}

	var req dto.UpdateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.ValidationError(ctx, verr)
		return
	}

	resp, err := h.svc.UpdateRegistration(ctx.Request.Context(), actor, eventID, registrationID, req)
	if err != nil {
		dto.DomainError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, resp)
}

func (h *Handlers) CancelRegistration(ctx *ginext.Context) {
	actor, ok := middleware.ActorFrom(ctx)
	if !ok {
		dto.UnauthorizedError(ctx)
		return
	}
	eventID, registrationID, err := registrationIDs(ctx)
	if err != nil {
		dto.BadRequestError(ctx, err.Error())
		return
	}

	if err := h.svc.CancelRegistration(ctx.Request.Context(), actor, eventID, registrationID); err != nil {
		dto.DomainError(ctx, err)
		return
	}
	dto.SuccessMessageResponse(ctx, "Registration cancelled")
}

// bindOptionalJSON binds the body when one is supplied. A missing body is
// not an error; content-length is not consulted so chunked requests still
// bind.
func bindOptionalJSON(ctx *ginext.Context, out any) error {
	if err := ctx.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func registrationIDs(ctx *ginext.Context) (int64, int64, error) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid event ID")
	}
	registrationID, err := strconv.ParseInt(ctx.Param("regID"), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid registration ID")
	}
	return eventID, registrationID, nil
}
