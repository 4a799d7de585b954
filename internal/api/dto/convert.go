package dto

import (
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/services"
)

func Counts(c domain.Counts) CountsResponse {
	return CountsResponse{WorkingSet: c.WorkingSet, Pending: c.Pending}
}

func Packages(recs []domain.PackageRecord) []PackageResponse {
	out := make([]PackageResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Package(rec))
	}
	return out
}

func Package(rec domain.PackageRecord) PackageResponse {
	return PackageResponse{
		BRCode:    rec.BRCode,
		Route:     rec.Route,
		Datetime:  rec.Datetime,
		UserToken: rec.UserToken,
	}
}

func QueueEntry(e domain.QueueEntry) QueueEntryResponse {
	items := make([]QueueItemResponse, 0, len(e.Packages))
	for _, p := range e.Packages {
		items = append(items, QueueItemResponse{BRCode: p.BRCode, Route: p.Route})
	}
	return QueueEntryResponse{
		ID:           e.ID,
		Packages:     items,
		CreatedAt:    e.CreatedAt,
		TargetPallet: e.TargetPallet,
		Mode:         e.Mode,
	}
}

func Sync(r services.DrainReport) SyncResponse {
	return SyncResponse{
		Submitted: r.Submitted,
		Discarded: r.Discarded,
		Stop:      string(r.Stop),
		Message:   r.Message,
	}
}

func Settings(s domain.StationSettings) SettingsResponse {
	return SettingsResponse{
		MaxPackages: s.MaxPackages,
		LetterRange: s.LetterRange,
		NumberRange: s.NumberRange,
	}
}
