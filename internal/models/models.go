package models

import "time"

type TechnicianStatus string

const (
	TechnicianActive   TechnicianStatus = "ACTIVE"
	TechnicianLocked   TechnicianStatus = "LOCKED"
	TechnicianInactive TechnicianStatus = "INACTIVE"
)

type CallStatus string

const (
	CallPending   CallStatus = "PENDING"
	CallRouted    CallStatus = "ROUTED"
	CallAnswered  CallStatus = "ANSWERED"
	CallMissed    CallStatus = "MISSED"
	CallCompleted CallStatus = "COMPLETED"
	CallCancelled CallStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s CallStatus) Terminal() bool {
	return s == CallCompleted || s == CallMissed || s == CallCancelled
}

type ServiceStatus string

const (
	ServiceScheduled  ServiceStatus = "SCHEDULED"
	ServiceInProgress ServiceStatus = "IN_PROGRESS"
	ServiceCompleted  ServiceStatus = "COMPLETED"
	ServiceCancelled  ServiceStatus = "CANCELLED"
)

func (s ServiceStatus) Terminal() bool {
	return s == ServiceCompleted || s == ServiceCancelled
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type Technician struct {
	ID                   string           `json:"id"`
	UserID               string           `json:"user_id"`
	Phone                string           `json:"phone,omitempty"`
	Status               TechnicianStatus `json:"status"`
	WeeklyQuota          int              `json:"weekly_quota"`
	CurrentWeekCompleted int              `json:"current_week_completed"`
	LastQuotaReset       *time.Time       `json:"last_quota_reset,omitempty"`
	LockedAt             *time.Time       `json:"locked_at,omitempty"`
	LockedReason         *string          `json:"locked_reason,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	User                 User             `json:"user"`
}

// Schedule is a weekly availability window, unique per (technician, day).
// DayOfWeek follows time.Weekday numbering: 0 = Sunday.
type Schedule struct {
	ID           string `json:"id"`
	TechnicianID string `json:"technician_id"`
	DayOfWeek    int    `json:"day_of_week"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	IsAvailable  bool   `json:"is_available"`
}

type Call struct {
	ID                string     `json:"id"`
	RingCentralCallID string     `json:"ringcentral_call_id"`
	CallerNumber      string     `json:"caller_number"`
	CallerName        string     `json:"caller_name,omitempty"`
	TechnicianID      *string    `json:"technician_id"`
	Status            CallStatus `json:"status"`
	RoutedAt          *time.Time `json:"routed_at,omitempty"`
	AnsweredAt        *time.Time `json:"answered_at,omitempty"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
	Duration          *int       `json:"duration,omitempty"`
	RecordingURL      *string    `json:"recording_url,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type ServiceRecord struct {
	ID               string        `json:"id"`
	TechnicianID     string        `json:"technician_id"`
	CallID           *string       `json:"call_id,omitempty"`
	CustomerName     string        `json:"customer_name"`
	CustomerPhone    string        `json:"customer_phone"`
	CustomerAddress  string        `json:"customer_address"`
	ApplianceType    string        `json:"appliance_type"`
	IssueDescription string        `json:"issue_description"`
	Status           ServiceStatus `json:"status"`
	ScheduledDate    *time.Time    `json:"scheduled_date,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	Diagnosis        string        `json:"diagnosis,omitempty"`
	Resolution       string        `json:"resolution,omitempty"`
	PartsUsed        string        `json:"parts_used,omitempty"`
	LaborHours       *float64      `json:"labor_hours,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

type AuditLog struct {
	ID         string    `json:"id"`
	ActorID    *string   `json:"actor_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   *string   `json:"entity_id,omitempty"`
	Details    []byte    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConfigEntry is one row of the admin-editable system configuration.
type ConfigEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type QuotaStatus struct {
	Current    int        `json:"current"`
	Required   int        `json:"required"`
	Remaining  int        `json:"remaining"`
	Percentage int        `json:"percentage"`
	OnTrack    bool       `json:"on_track"`
	LastReset  *time.Time `json:"last_reset,omitempty"`
}

type ResetOutcome string

const (
	OutcomeLocked ResetOutcome = "LOCKED"
	OutcomeReset  ResetOutcome = "RESET"
)

type ResetResult struct {
	TechnicianID string       `json:"technician_id"`
	Outcome      ResetOutcome `json:"outcome"`
}

type RoutingResult struct {
	Success        bool   `json:"success"`
	CallID         string `json:"call_id,omitempty"`
	TechnicianID   string `json:"technician_id,omitempty"`
	TechnicianName string `json:"technician_name,omitempty"`
	Message        string `json:"message"`
}
