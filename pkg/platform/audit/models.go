package audit

import (
	"time"

	id "olhopix/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: account
	// creation and fraud report submissions. Long retention required.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// failed logins and lockouts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging;
	// can be sampled or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	Action    string
	// Subject names the affected entity when it is not the acting user,
	// e.g. the report ID for report_submitted.
	Subject   string
	Reason    string
	Email     string
	RequestID string
	ClientIP  string
}

// AuditEvent enumerates the actions this service emits.
type AuditEvent string

const (
	EventUserCreated           AuditEvent = "user_created"
	EventTokenIssued           AuditEvent = "token_issued"
	EventAuthFailed            AuditEvent = "auth_failed"
	EventAuthLockoutTriggered  AuditEvent = "auth_lockout_triggered"
	EventReportSubmitted       AuditEvent = "report_submitted"
	EventAttachmentDownloaded  AuditEvent = "attachment_downloaded"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:          CategoryCompliance,
	EventReportSubmitted:      CategoryCompliance,
	EventAuthFailed:           CategorySecurity,
	EventAuthLockoutTriggered: CategorySecurity,
	EventTokenIssued:          CategoryOperations,
	EventAttachmentDownloaded: CategoryOperations,
}

// Category returns the category for the event, defaulting to operations for
// unknown actions so nothing is dropped.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}
