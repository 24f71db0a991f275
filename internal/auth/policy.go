package auth

import "campushub/internal/model"

// Action names a mutation or read the service guards.
type Action string

const (
	ActionRegisterSelf     Action = "registration.create.self"
	ActionRegisterOther    Action = "registration.create.other"
	ActionListRegistration Action = "registration.list"
	ActionViewRegistration Action = "registration.view"
	ActionUpdateStatus     Action = "registration.update.status"
	ActionUpdateAttendance Action = "registration.update.attendance"
	ActionUpdateNotes      Action = "registration.update.notes"
	ActionCancel           Action = "registration.cancel"
	ActionCreateEvent      Action = "event.create"
	ActionUpdateEvent      Action = "event.update"
)

// Relation describes how the actor relates to the resource being touched.
type Relation struct {
	// Self: the registration (or account) belongs to the actor.
	Self bool
	// Organizer: the actor created the event the resource hangs off.
	Organizer bool
}

type grant struct {
	self      bool // allowed when Relation.Self
	organizer bool // allowed when Relation.Organizer
	roles     []model.Role
}

// policy is the single capability table every handler consults. Admin roles
// are granted everything and short-circuit before the lookup.
var policy = map[Action]grant{
	ActionRegisterSelf:     {self: true},
	ActionRegisterOther:    {organizer: true},
	ActionListRegistration: {organizer: true},
	ActionViewRegistration: {self: true, organizer: true},
	ActionUpdateStatus:     {self: true, organizer: true},
	ActionUpdateAttendance: {organizer: true},
	ActionUpdateNotes:      {self: true, organizer: true},
	ActionCancel:           {self: true, organizer: true},
	ActionCreateEvent:      {roles: []model.Role{model.RoleOrganizer}},
	ActionUpdateEvent:      {organizer: true},
}

// Authorize decides whether the actor may perform the action given its
// relation to the resource.
func Authorize(actor Actor, action Action, rel Relation) bool {
	if actor.Role.IsAdmin() {
		return true
	}
	g, ok := policy[action]
	if !ok {
		return false
	}
	if g.self && rel.Self {
		return true
	}
	if g.organizer && rel.Organizer {
		return true
	}
	for _, role := range g.roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}
