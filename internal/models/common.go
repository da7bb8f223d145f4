// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Metadata is the open key/value annotation map attached to contracts and commands.
type Metadata struct {
	Data map[string]string `json:"data"`
}

// NewMetadata builds a Metadata from alternating key/value pairs.
func NewMetadata(kv ...string) Metadata {
	m := Metadata{Data: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		m.Data[kv[i]] = kv[i+1]
	}
	return m
}

// Enums
type InstallStatus string

const (
	InstallStatusRequest InstallStatus = "REQUEST"
	InstallStatusInstall InstallStatus = "INSTALL"
)

type RenewalStatus string

const (
	RenewalStatusExpired            RenewalStatus = "EXPIRED"
	RenewalStatusAwaitingAcceptance RenewalStatus = "AWAITING_ACCEPTANCE"
	RenewalStatusAwaitingCompletion RenewalStatus = "AWAITING_COMPLETION"
)

type NotificationLevel string

const (
	NotificationLevelSuccess NotificationLevel = "success"
	NotificationLevelError   NotificationLevel = "error"
)

// Action names a per-row operation the view may offer.
type Action string

const (
	ActionAccept        Action = "accept"
	ActionReject        Action = "reject"
	ActionCancel        Action = "cancel"
	ActionCreateLicense Action = "create_license"
	ActionRenewals      Action = "renewals"
	ActionExpire        Action = "expire"
	ActionComplete      Action = "complete"
	ActionWithdraw      Action = "withdraw"
)
