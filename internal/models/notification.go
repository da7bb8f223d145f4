// internal/models/notification.go
package models

// Notification records a user-visible outcome of a fetch or command.
type Notification struct {
	BaseModel
	Level      NotificationLevel `json:"level" gorm:"type:varchar(10);not null;index"`
	Action     string            `json:"action" gorm:"size:100;not null;index"`
	Message    string            `json:"message" gorm:"type:text;not null"`
	ErrorKind  string            `json:"error_kind,omitempty" gorm:"size:30"`
	Status     int               `json:"status,omitempty"`
	CommandID  string            `json:"command_id,omitempty" gorm:"size:64;index"`
	ContractID string            `json:"contract_id,omitempty" gorm:"size:255;index"`
}

type AuditLog struct {
	BaseModel
	Subject      string `json:"subject" gorm:"size:255;index"`
	Action       string `json:"action" gorm:"size:100;not null;index"`
	ResourceType string `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   string `json:"resource_id" gorm:"size:255;index"`
	NewValues    JSONB  `json:"new_values" gorm:"type:jsonb"`
	Status       int    `json:"status"`
	IPAddress    string `json:"ip_address" gorm:"size:45"`
	UserAgent    string `json:"user_agent" gorm:"type:text"`
}
