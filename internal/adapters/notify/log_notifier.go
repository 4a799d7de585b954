package notify

import (
	"context"
	"pallet-queue-service/internal/domain"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes sync outcomes and count changes to the station log.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n LogNotifier) CountsChanged(_ context.Context, c domain.Counts) {
	n.Log.WithFields(logrus.Fields{
		"working_set": c.WorkingSet,
		"pending":     c.Pending,
	}).Debug("counts changed")
}

func (n LogNotifier) Notify(_ context.Context, ev domain.SyncEvent) {
	switch ev.Type {
	case domain.SyncEventSuccess:
		n.Log.WithFields(logrus.Fields{
			"pallet_id": ev.PalletID,
			"count":     ev.Count,
			"entry_id":  ev.EntryID,
		}).Info("pallet synced")
	default:
		n.Log.WithFields(logrus.Fields{
			"entry_id": ev.EntryID,
			"message":  ev.Message,
		}).Warn("pallet sync failed")
	}
}
