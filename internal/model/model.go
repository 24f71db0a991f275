package model

import "time"

type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleOrganizer  Role = "ORGANIZER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleOrganizer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role carries campus-wide administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type RegistrationStatus string

const (
	StatusPending    RegistrationStatus = "PENDING"
	StatusConfirmed  RegistrationStatus = "CONFIRMED"
	StatusWaitlisted RegistrationStatus = "WAITLISTED"
	StatusCancelled  RegistrationStatus = "CANCELLED"
	StatusRejected   RegistrationStatus = "REJECTED"
	StatusAttended   RegistrationStatus = "ATTENDED"
)

func (s RegistrationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusWaitlisted,
		StatusCancelled, StatusRejected, StatusAttended:
		return true
	}
	return false
}

func (s RegistrationStatus) String() string {
	return string(s)
}

// OccupiesSeat reports whether a registration in this status still holds a
// seat against the event capacity.
func (s RegistrationStatus) OccupiesSeat() bool {
	return s != StatusCancelled && s != StatusRejected
}

// AttendanceStatus is the check-in sub-state; empty means not tracked yet.
type AttendanceStatus string

const (
	AttendanceNone    AttendanceStatus = ""
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

func (a AttendanceStatus) IsValid() bool {
	switch a {
	case AttendanceNone, AttendancePresent, AttendanceLate, AttendanceAbsent:
		return true
	}
	return false
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Event struct {
	ID                   int64     `db:"id" json:"id"`
	Title                string    `db:"title" json:"title"`
	Description          string    `db:"description,omitempty" json:"description,omitempty"`
	Location             string    `db:"location,omitempty" json:"location,omitempty"`
	StartDate            time.Time `db:"start_date" json:"start_date"`
	EndDate              time.Time `db:"end_date" json:"end_date"`
	RegistrationDeadline time.Time `db:"registration_deadline" json:"registration_deadline"`
	MaxAttendees         *int      `db:"max_attendees" json:"max_attendees,omitempty"`
	IsActive             bool      `db:"is_active" json:"is_active"`
	CreatorID            int64     `db:"creator_id" json:"creator_id"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

type Registration struct {
	ID               int64              `db:"id" json:"id"`
	EventID          int64              `db:"event_id" json:"event_id"`
	UserID           int64              `db:"user_id" json:"user_id"`
	Status           RegistrationStatus `db:"status" json:"status"`
	AttendanceStatus AttendanceStatus   `db:"attendance_status" json:"attendance_status,omitempty"`
	RegistrationDate time.Time          `db:"registration_date" json:"registration_date"`
	CheckInTime      *time.Time         `db:"check_in_time" json:"check_in_time,omitempty"`
	CheckOutTime     *time.Time         `db:"check_out_time" json:"check_out_time,omitempty"`
	CancelledAt      *time.Time         `db:"cancelled_at" json:"cancelled_at,omitempty"`
	Notes            string             `db:"notes,omitempty" json:"notes,omitempty"`
	QRCodeURL        string             `db:"qr_code_url,omitempty" json:"qr_code_url,omitempty"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}
