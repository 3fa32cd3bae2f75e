package services

import (
	"testing"
	"time"

	"github.com/inkwell-cms/inkwell_api/model"

	"github.com/stretchr/testify/require"
)

func TestAuditPurgeLoopStopsOnShutdown(t *testing.T) {
	sqlSvc := newTestDB(t)
	svc := &AuditService{
		sqlSvc:    sqlSvc,
		retention: time.Hour,
		closed:    make(chan struct{}, 1),
	}

	done := make(chan struct{})
	go func() {
		svc.purgeLoop(time.Hour)
		close(done)
	}()

	svc.Shutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("purge loop did not stop after shutdown")
	}
}

func TestAuditPurgeLoopRemovesExpiredRows(t *testing.T) {
	sqlSvc := newTestDB(t)
	svc := &AuditService{
		sqlSvc:    sqlSvc,
		retention: time.Hour,
		closed:    make(chan struct{}, 1),
	}

	svc.Record("", model.AuditActionLoginFailed, "1.2.3.4", "test-agent", false, "stale")
	require.NoError(t, sqlSvc.Db().Model(&model.AuditLog{}).
		Where("details = ?", "stale").
		Update("timestamp", time.Now().Add(-2*time.Hour)).Error)
	svc.Record("", model.AuditActionLoginFailed, "1.2.3.4", "test-agent", false, "fresh")

	done := make(chan struct{})
	go func() {
		svc.purgeLoop(20 * time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		var count int64
		if err := sqlSvc.Db().Model(&model.AuditLog{}).Count(&count).Error; err != nil {
			return false
		}
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	svc.Shutdown()
	<-done
}
