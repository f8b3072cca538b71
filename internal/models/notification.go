package models

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationTypeBudgetAlert    NotificationType = "BUDGET_ALERT"
	NotificationTypeGoalAchieved   NotificationType = "GOAL_ACHIEVED"
	NotificationTypeGoalProgress   NotificationType = "GOAL_PROGRESS"
	NotificationTypeRecurringDue   NotificationType = "RECURRING_DUE"
	NotificationTypeMonthlySummary NotificationType = "MONTHLY_SUMMARY"
)

// NotificationPriority is the display severity of a notification.
type NotificationPriority string

const (
	PriorityNormal   NotificationPriority = "NORMAL"
	PriorityWarning  NotificationPriority = "WARNING"
	PriorityHigh     NotificationPriority = "HIGH"
	PriorityCritical NotificationPriority = "CRITICAL"
)

// Notification is an append-only record; only IsRead is ever mutated.
// RelatedID points at the budget or goal the notification concerns,
// depending on Type. Threshold is set only for budget alerts and, together
// with the unique index, guarantees at most one alert per (user, budget,
// threshold) even under concurrent writers.
type Notification struct {
	Base
	UserID    uint                 `gorm:"not null;index;uniqueIndex:uniq_alert_threshold" json:"user_id"`
	Type      NotificationType     `gorm:"not null;uniqueIndex:uniq_alert_threshold" json:"type"`
	Title     string               `gorm:"not null;size:200" json:"title"`
	Message   string               `gorm:"not null" json:"message"`
	Priority  NotificationPriority `gorm:"default:'NORMAL'" json:"priority"`
	IsRead    bool                 `gorm:"default:false" json:"is_read"`
	RelatedID *uint                `gorm:"uniqueIndex:uniq_alert_threshold" json:"related_id,omitempty"`
	Threshold *int                 `gorm:"uniqueIndex:uniq_alert_threshold" json:"threshold,omitempty"`
}
