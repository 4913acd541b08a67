package entity

// TherapistFilter is a domain-level filter for browsing providers.
// Used by repository layer to avoid coupling with delivery DTOs.
type TherapistFilter struct {
	Specialization string // ILIKE
	Name           string // ILIKE on full_name
	Community      *bool
	RoleID         int // 0 = therapists and friends
}

type BookingFilter struct {
	Status BookingStatus
}

type AppointmentFilter struct {
	Status AppointmentStatus
}

type UserFilter struct {
	RoleID int
	Search string
	Page   int
	Limit  int
}

// Offset returns the row offset for 1-based pages.
func (f UserFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
