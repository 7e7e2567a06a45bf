package model

type AlertType string

const (
	AlertDashboard AlertType = "dashboard"
	AlertEmail     AlertType = "email"
	AlertSlack     AlertType = "slack"
)

type AlertStatus string

const (
	AlertPending      AlertStatus = "pending"
	AlertSent         AlertStatus = "sent"
	AlertFailed       AlertStatus = "failed"
	AlertAcknowledged AlertStatus = "acknowledged"
)

// Alert marks a change that crossed the configured risk threshold. Delivery
// mechanics live outside this service; only the records are kept here.
type Alert struct {
	ID        string      `json:"id"`
	ChangeID  string      `json:"change_id"`
	AlertType AlertType   `json:"alert_type"`
	Recipient string      `json:"recipient,omitempty"`
	Status    AlertStatus `json:"status"`
	Ctime     int64       `json:"ctime"`
}
