package services

import (
	"time"

	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// AuditService records security-relevant events. Writes are best-effort: a
// failed insert is logged but never propagated, auditing must not break the
// operation being audited.
type AuditService struct {
	appContext.DefaultService

	sqlSvc *PostgresService
	geoSvc *GeolocationService

	retention time.Duration
	closed    chan struct{}
}

const AUDIT_SVC = "audit_svc"

func (svc AuditService) Id() string {
	return AUDIT_SVC
}

func (svc *AuditService) Configure(ctx *appContext.Context) error {
	svc.retention = time.Duration(envInt64("AUDIT_RETENTION_DAYS", 90)) * 24 * time.Hour

	return svc.DefaultService.Configure(ctx)
}

func (svc *AuditService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.geoSvc = svc.Service(GEOLOCATION_SVC).(*GeolocationService)

	svc.closed = make(chan struct{}, 1)
	go svc.purgeLoop(24 * time.Hour)

	return nil
}

func (svc *AuditService) Shutdown() {
	if svc.closed != nil {
		svc.closed <- struct{}{}
	}
}

func (svc *AuditService) purgeLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			purged, err := svc.sqlSvc.PurgeAuditLogsBefore(time.Now().Add(-svc.retention))
			if err != nil {
				log.WithError(err).Error("Failed to purge old audit logs")
				continue
			}
			if purged > 0 {
				log.WithField("purged", purged).Info("Purged old audit logs")
			}
		case <-svc.closed:
			return
		}
	}
}

func (svc *AuditService) Record(userID, action, ip, userAgent string, success bool, details string) {
	location := ""
	if ip != "" && svc.geoSvc != nil {
		location = svc.geoSvc.Lookup(ip)
	}

	entry := &model.AuditLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		IP:        ip,
		Location:  location,
		UserAgent: userAgent,
		Success:   success,
		Details:   details,
		Timestamp: time.Now(),
	}

	if err := svc.sqlSvc.CreateAuditLog(entry); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"action":  action,
		}).Error("Failed to write audit log entry")
	}
}

func (svc *AuditService) List(userID, action string, page, pageSize int) (*dto.AuditLogResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 25
	}

	entries, total, err := svc.sqlSvc.ListAuditLogs(userID, action, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	out := make([]dto.AuditLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditLogEntry{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			IP:        e.IP,
			Location:  e.Location,
			UserAgent: e.UserAgent,
			Success:   e.Success,
			Details:   e.Details,
			Timestamp: e.Timestamp,
		})
	}

	return &dto.AuditLogResponse{
		Logs:  out,
		Total: int(total),
		Page:  page,
		Limit: pageSize,
	}, nil
}
