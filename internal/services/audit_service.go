package services

import (
	"encoding/json"

	"fintrack/internal/logger"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

type auditService struct {
	db *gorm.DB
}

// NewAuditService returns an AuditServicer writing to the audit_logs table.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log appends one entry to the audit trail. A failed write is reported to
// the "audit" logger and otherwise ignored; the ledger change it describes
// has already been committed.
func (s *auditService) Log(actor, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	log := logger.Named("audit").With("action", action, "resource_type", resourceType, "resource_id", resourceID)

	entry := models.AuditLog{
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}
	if len(changes) > 0 {
		raw, err := json.Marshal(changes)
		if err != nil {
			log.Warnw("dropping unencodable audit changes", "error", err)
			raw = []byte("{}")
		}
		entry.Changes = string(raw)
	}

	if err := s.db.Create(&entry).Error; err != nil {
		log.Errorw("audit entry not recorded", "error", err, "actor", actor)
	}
}
