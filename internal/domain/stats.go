package domain

import "time"

// StatsSnapshot is the aggregate counter set served to admins.
// Immutable once computed; recomputed wholesale on cache miss.
type StatsSnapshot struct {
	TotalChats         int64     `json:"total_chats"`
	EscalatedChats     int64     `json:"escalated_chats"`
	PendingEscalations int64     `json:"pending_escalations"`
	UniqueUsers        int64     `json:"unique_users"`
	TodayChats         int64     `json:"today_chats"`
	ComputedAt         time.Time `json:"computed_at"`
}
