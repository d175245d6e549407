package model

import (
	"encoding/json"
	"time"
)

type AuditActivity string

const (
	ActivityPositionOpened  AuditActivity = "position_opened"
	ActivityPositionClosed  AuditActivity = "position_closed"
	ActivitySignalGenerated AuditActivity = "signal_generated"
	ActivityRiskRejected    AuditActivity = "risk_rejected"
)

const (
	AuditSeverityInfo = "info"
	AuditSeverityWarn = "warn"
)

// AuditPayload is the closed set of typed payloads an audit record can
// carry, one per activity kind.
type AuditPayload interface {
	AuditActivity() AuditActivity
}

type PositionOpenedPayload struct {
	PositionID string    `json:"position_id"`
	Symbol     string    `json:"symbol"`
	Side       Direction `json:"side"`
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`
	Confidence float64   `json:"confidence"`
}

func (PositionOpenedPayload) AuditActivity() AuditActivity { return ActivityPositionOpened }

type PositionClosedPayload struct {
	PositionID string    `json:"position_id"`
	Symbol     string    `json:"symbol"`
	Side       Direction `json:"side"`
	ExitPrice  float64   `json:"exit_price"`
	Pnl        float64   `json:"pnl"`
	Trigger    string    `json:"trigger,omitempty"`
}

func (PositionClosedPayload) AuditActivity() AuditActivity { return ActivityPositionClosed }

type SignalGeneratedPayload struct {
	SignalID   string    `json:"signal_id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	ModelName  string    `json:"model_name"`
}

func (SignalGeneratedPayload) AuditActivity() AuditActivity { return ActivitySignalGenerated }

type RiskRejectedPayload struct {
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Reason    string  `json:"reason"`
	RiskScore float64 `json:"risk_score"`
}

func (RiskRejectedPayload) AuditActivity() AuditActivity { return ActivityRiskRejected }

// AuditRecord is one persisted audit trail entry.
type AuditRecord struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Activity  AuditActivity `gorm:"size:50;not null;index" json:"activity"`
	Severity  string        `gorm:"size:20;not null" json:"severity"`
	Message   string        `gorm:"size:1024;not null" json:"message"`
	Payload   string        `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

func (AuditRecord) TableName() string {
	return "audit_records"
}

// NewAuditRecord builds a record from a typed payload, deriving the
// activity kind from the payload itself.
func NewAuditRecord(severity, message string, payload AuditPayload) (AuditRecord, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return AuditRecord{}, err
	}

	return AuditRecord{
		Activity: payload.AuditActivity(),
		Severity: severity,
		Message:  message,
		Payload:  string(raw),
	}, nil
}
