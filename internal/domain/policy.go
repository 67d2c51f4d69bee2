package domain

// Authorization predicates over (actor, event). They hold no state and never touch storage.

// IsHost reports whether the actor created the event.
func IsHost(actor Principal, e *Event) bool {
	return e != nil && actor.UserID != "" && actor.UserID == e.HostID
}

// CanEditEvent: only the host may replace an event's fields.
func CanEditEvent(actor Principal, e *Event) bool {
	return IsHost(actor, e)
}

// CanDeleteEvent: the host or an administrator.
func CanDeleteEvent(actor Principal, e *Event) bool {
	return IsHost(actor, e) || actor.IsAdmin
}

// CanReviewEvents: listing pending events, checking availability and approving or rejecting.
func CanReviewEvents(actor Principal) bool {
	return actor.IsAdmin
}

// CanManageVenues guards venue create, update and delete.
func CanManageVenues(actor Principal) bool {
	return actor.IsAdmin
}

// CanManageRoster guards marking attendance and viewing the participant list.
// isVolunteer must say whether the actor is on the event's volunteer roster.
func CanManageRoster(actor Principal, e *Event, isVolunteer bool) bool {
	return IsHost(actor, e) || isVolunteer
}
