package dto

import "github.com/shopspring/decimal"

type DashboardResponse struct {
	TotalClients          int64           `json:"total_clients"`
	TotalTherapists       int64           `json:"total_therapists"`
	TotalFriends          int64           `json:"total_friends"`
	PendingBookings       int64           `json:"pending_bookings"`
	ScheduledAppointments int64           `json:"scheduled_appointments"`
	CompletedAppointments int64           `json:"completed_appointments"`
	TotalPayments         decimal.Decimal `json:"total_payments"`
	TotalDeposits         decimal.Decimal `json:"total_deposits"`
}
