package services

import "errors"

// Error kinds. Handlers map these to HTTP status codes with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidState    = errors.New("invalid state")
)

// Error is a domain error of a given kind. Its message is safe to show to
// API clients.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Validation returns an ad hoc validation error.
func Validation(msg string) error {
	return newError(ErrValidation, msg)
}

var (
	ErrTeamNotFound         = newError(ErrNotFound, "team not found")
	ErrNotTeamMember        = newError(ErrForbidden, "not a member of this team")
	ErrInsufficientRole     = newError(ErrForbidden, "insufficient role for this action")
	ErrMemberNotFound       = newError(ErrNotFound, "member not found")
	ErrLastAdmin            = newError(ErrInvalidState, "team must keep at least one admin")
	ErrOrganizationNotFound = newError(ErrNotFound, "organization not found")
	ErrNotOrganizationOwner = newError(ErrForbidden, "only the organization owner can do this")

	ErrSprintNotFound      = newError(ErrNotFound, "sprint not found")
	ErrNoCurrentSprint     = newError(ErrInvalidState, "no current sprint found")
	ErrNoNextSprint        = newError(ErrInvalidState, "no next sprint found")
	ErrNextSprintExists    = newError(ErrConflict, "next sprint already exists")
	ErrSprintOtherTeam     = newError(ErrValidation, "sprint belongs to another team")
	ErrSprintCompleted     = newError(ErrInvalidState, "sprint is already completed")
	ErrTicketNotFound      = newError(ErrNotFound, "ticket not found")
	ErrInvalidStatus       = newError(ErrValidation, "invalid ticket status")
	ErrInvalidPriority     = newError(ErrValidation, "invalid ticket priority")
	ErrAssigneeNotMember   = newError(ErrValidation, "assignee is not a member of this team")
	ErrTitleRequired       = newError(ErrValidation, "title is required")
	ErrNoFieldsToUpdate    = newError(ErrValidation, "no fields to update")
	ErrWikiPageNotFound    = newError(ErrNotFound, "wiki page not found")
	ErrWikiVersionConflict = newError(ErrConflict, "version conflict: page has been modified")

	ErrInvalidRole         = newError(ErrValidation, "role must be between 0 and 3")
	ErrInvalidEmail        = newError(ErrValidation, "invalid email address")
	ErrAlreadyMember       = newError(ErrConflict, "already a member")
	ErrInviteExists        = newError(ErrConflict, "an invite for this email already exists")
	ErrInviteNotFound      = newError(ErrNotFound, "invite not found")
	ErrInviteEmailMismatch = newError(ErrForbidden, "invite was issued to a different email")
	ErrInviteNotPermitted  = newError(ErrForbidden, "you may only invite to a role below your own")

	ErrSessionNotFound = newError(ErrUnauthenticated, "session not found or revoked")
)

// InviteDeliveryError reports that an invite was stored but its email could
// not be sent. The invite can be re-sent later.
type InviteDeliveryError struct {
	Err error
}

func (e *InviteDeliveryError) Error() string {
	return "invite created but email delivery failed: " + e.Err.Error()
}

func (e *InviteDeliveryError) Unwrap() error {
	return e.Err
}
