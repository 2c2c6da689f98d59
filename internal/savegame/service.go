// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

package savegame

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/veyrm/accountd/pkg/errutil"
)

// DefaultBackupKeep is how many pre-overwrite snapshots survive per save.
const DefaultBackupKeep = 5

// Service coordinates save uploads, conflict bookkeeping, and backup
// pruning.
type Service struct {
	saves      SaveRepository
	conflicts  ConflictRepository
	backups    BackupRepository
	backupKeep int
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a save-game service with the default logger.
func NewService(saves SaveRepository, conflicts ConflictRepository, backups BackupRepository) (*Service, error) {
	return NewServiceWithLogger(saves, conflicts, backups, slog.Default())
}

// NewServiceWithLogger creates a save-game service with an explicit logger.
func NewServiceWithLogger(saves SaveRepository, conflicts ConflictRepository, backups BackupRepository, logger *slog.Logger) (*Service, error) {
	if saves == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("save repository cannot be nil")
	}
	if conflicts == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("conflict repository cannot be nil")
	}
	if backups == nil {
		return nil, oops.Code("SERVICE_INVALID_DEPS").Errorf("backup repository cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		saves:      saves,
		conflicts:  conflicts,
		backups:    backups,
		backupKeep: DefaultBackupKeep,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithBackupKeep overrides how many backups survive pruning. Values
// below one are ignored.
func (s *Service) WithBackupKeep(keep int) *Service {
	if keep >= 1 {
		s.backupKeep = keep
	}
	return s
}

// UploadRequest carries one save payload plus the checksum of the cloud
// copy the client last synced from.
type UploadRequest struct {
	UserID         ulid.ULID
	Slot           int
	CharacterName  string
	CharacterLevel int
	MapDepth       int
	PlayTime       int
	TurnCount      int
	Data           json.RawMessage
	SaveVersion    string
	GameVersion    string
	DeviceID       string
	DeviceName     string
	BaseChecksum   string
}

// UploadResult reports what an upload did. Conflict is set only when
// the slot diverged; Save then still holds the untouched cloud copy.
type UploadResult struct {
	Result   string
	Save     *SaveGame
	Conflict *SaveConflict
}

// Upload stores a save into a user's slot. An empty slot gets a new
// row. An occupied slot is overwritten in place after a backup, unless
// the request's base checksum no longer matches the stored save; then
// the payload is parked in a conflict row and nothing is overwritten.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if !ValidSlot(req.Slot) {
		return nil, oops.Code("SAVE_INVALID_SLOT").
			With("slot", req.Slot).
			Errorf("slot must be %d..%d or %d..%d", MinManualSlot, MaxManualSlot, MinAutoSlot, MaxAutoSlot)
	}

	existing, err := s.saves.FindByUserAndSlot(ctx, req.UserID, req.Slot)
	switch {
	case errors.Is(err, ErrNotFound):
		return s.uploadNew(ctx, req)
	case err != nil:
		Uploads.WithLabelValues(ResultError).Inc()
		return nil, oops.With("operation", "upload save").Wrap(err)
	}

	if req.BaseChecksum != existing.Checksum {
		return s.uploadConflicted(ctx, req, existing)
	}
	return s.uploadOverwrite(ctx, req, existing)
}

func (s *Service) uploadNew(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	save, err := NewSaveGame(req.UserID, req.Slot, req.Data)
	if err != nil {
		Uploads.WithLabelValues(ResultError).Inc()
		return nil, err
	}
	s.applyRequest(save, req)
	save.CreatedAt = s.now()

	if err := s.saves.Create(ctx, save); err != nil {
		Uploads.WithLabelValues(ResultError).Inc()
		return nil, oops.With("operation", "create save").Wrap(err)
	}

	Uploads.WithLabelValues(ResultCreated).Inc()
	s.logger.Info("save created",
		"user_id", save.UserID.String(),
		"slot", save.Slot,
	)
	return &UploadResult{Result: ResultCreated, Save: save}, nil
}

func (s *Service) uploadConflicted(ctx context.Context, req UploadRequest, existing *SaveGame) (*UploadResult, error) {
	conflict, err := NewSaveConflict(existing.ID, req.Data, req.DeviceID, req.DeviceName)
	if err != nil {
		Uploads.WithLabelValues(ResultError).Inc()
		return nil, err
	}
	conflict.CreatedAt = s.now()

	if err := s.conflicts.Create(ctx, conflict); err != nil {
		Uploads.WithLabelValues(ResultError).Inc()
		return nil, oops.With("operation", "record save conflict").Wrap(err)
	}
	if err := s.saves.SetSyncStatus(ctx, existing.ID, StatusConflict); err != nil {
		errutil.LogError(s.logger, "failed to flag save as conflicted", err)
	}

	Uploads.WithLabelValues(ResultConflicted).Inc()
	ConflictsDetected.Inc()
	s.logger.Warn("save upload diverged",
		"user_id", req.UserID.String(),
		"slot", req.Slot,
		"conflict_id", conflict.ID.String(),
	)
	existing.SyncStatus = StatusConflict
	return &UploadResult{Result: ResultConflicted, Save: existing, Conflict: conflict}, nil
}

func (s *Service) uploadOverwrite(ctx context.Context, req UploadRequest, existing *SaveGame) (*UploadResult, error) {
	if err := s.backups.Create(ctx, existing.ID, existing.Data, ReasonPreUpdate); err != nil {
		Uploads.WithLabelValues(ResultError).Inc()
		return nil, oops.With("operation", "backup save before overwrite").Wrap(err)
	}

	s.applyRequest(existing, req)

	if err := s.saves.Update(ctx, existing); err != nil {
		Uploads.WithLabelValues(ResultError).Inc()
		return nil, oops.With("operation", "update save").Wrap(err)
	}

	// Prune is best-effort: a failed prune leaves extra backups, not a
	// broken save.
	pruned, err := s.backups.Prune(ctx, existing.ID, s.backupKeep)
	if err != nil {
		errutil.LogError(s.logger, "failed to prune save backups", err)
	} else {
		BackupsPruned.Add(float64(pruned))
	}

	Uploads.WithLabelValues(ResultUpdated).Inc()
	s.logger.Info("save updated",
		"user_id", existing.UserID.String(),
		"slot", existing.Slot,
	)
	return &UploadResult{Result: ResultUpdated, Save: existing}, nil
}

// applyRequest copies upload metadata onto a save and refreshes the
// checksum and timestamps.
func (s *Service) applyRequest(save *SaveGame, req UploadRequest) {
	data := req.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	now := s.now()
	save.CharacterName = req.CharacterName
	save.CharacterLevel = req.CharacterLevel
	save.MapDepth = req.MapDepth
	save.PlayTime = req.PlayTime
	save.TurnCount = req.TurnCount
	save.Data = data
	save.Checksum = DataChecksum(data)
	save.SaveVersion = req.SaveVersion
	save.GameVersion = req.GameVersion
	save.DeviceID = req.DeviceID
	save.DeviceName = req.DeviceName
	save.SyncStatus = StatusSynced
	save.UpdatedAt = now
	save.LastPlayedAt = now
}

// Download returns the save occupying a user's slot.
func (s *Service) Download(ctx context.Context, userID ulid.ULID, slot int) (*SaveGame, error) {
	if !ValidSlot(slot) {
		return nil, oops.Code("SAVE_INVALID_SLOT").
			With("slot", slot).
			Errorf("slot must be %d..%d or %d..%d", MinManualSlot, MaxManualSlot, MinAutoSlot, MaxAutoSlot)
	}

	save, err := s.saves.FindByUserAndSlot(ctx, userID, slot)
	if err != nil {
		return nil, oops.With("operation", "download save").With("slot", slot).Wrap(err)
	}
	return save, nil
}

// List returns all of a user's saves ordered by slot.
func (s *Service) List(ctx context.Context, userID ulid.ULID) ([]*SaveGame, error) {
	saves, err := s.saves.ListByUser(ctx, userID)
	if err != nil {
		return nil, oops.With("operation", "list saves").Wrap(err)
	}
	return saves, nil
}

// Delete removes the save in a user's slot. Conflict and backup rows
// go with it.
func (s *Service) Delete(ctx context.Context, userID ulid.ULID, slot int) error {
	save, err := s.saves.FindByUserAndSlot(ctx, userID, slot)
	if err != nil {
		return oops.With("operation", "delete save").With("slot", slot).Wrap(err)
	}

	if err := s.saves.Delete(ctx, save.ID); err != nil {
		return oops.With("operation", "delete save").With("slot", slot).Wrap(err)
	}

	s.logger.Info("save deleted",
		"user_id", userID.String(),
		"slot", slot,
	)
	return nil
}

// Conflicts lists a user's unresolved conflicts, newest first.
func (s *Service) Conflicts(ctx context.Context, userID ulid.ULID) ([]*SaveConflict, error) {
	conflicts, err := s.conflicts.UnresolvedForUser(ctx, userID)
	if err != nil {
		return nil, oops.With("operation", "list save conflicts").Wrap(err)
	}
	return conflicts, nil
}

// ResolveConflict settles a conflict and returns the save in its
// post-resolution state. local_wins installs the parked upload after
// snapshotting the cloud copy; cloud_wins discards the upload;
// backup_both keeps the cloud copy and snapshots the upload.
func (s *Service) ResolveConflict(ctx context.Context, conflictID ulid.ULID, resolution Resolution) (*SaveGame, error) {
	if !resolution.Valid() {
		return nil, oops.Code("CONFLICT_INVALID_RESOLUTION").
			With("resolution", string(resolution)).
			Errorf("unknown resolution %q", resolution)
	}

	conflict, err := s.conflicts.FindByID(ctx, conflictID)
	if err != nil {
		return nil, oops.With("operation", "resolve save conflict").Wrap(err)
	}
	if conflict.Resolved {
		return nil, oops.Code("CONFLICT_ALREADY_RESOLVED").
			With("conflict_id", conflictID.String()).
			Wrap(ErrNotFound)
	}

	save, err := s.saves.FindByID(ctx, conflict.SaveID)
	if err != nil {
		return nil, oops.With("operation", "resolve save conflict").Wrap(err)
	}

	switch resolution {
	case ResolutionLocalWins:
		if err := s.backups.Create(ctx, save.ID, save.Data, ReasonConflictResolution); err != nil {
			return nil, oops.With("operation", "backup save before resolution").Wrap(err)
		}
		now := s.now()
		save.Data = conflict.Data
		save.Checksum = DataChecksum(conflict.Data)
		save.SyncStatus = StatusSynced
		save.UpdatedAt = now
		save.LastPlayedAt = now
		if err := s.saves.Update(ctx, save); err != nil {
			return nil, oops.With("operation", "install conflicting save").Wrap(err)
		}

	case ResolutionBackupBoth:
		if err := s.backups.Create(ctx, save.ID, conflict.Data, ReasonConflictResolution); err != nil {
			return nil, oops.With("operation", "backup conflicting save").Wrap(err)
		}
		fallthrough

	case ResolutionCloudWins:
		if err := s.saves.SetSyncStatus(ctx, save.ID, StatusSynced); err != nil {
			return nil, oops.With("operation", "mark save synced").Wrap(err)
		}
		save.SyncStatus = StatusSynced
	}

	if err := s.conflicts.Resolve(ctx, conflictID, resolution); err != nil {
		return nil, oops.With("operation", "mark conflict resolved").Wrap(err)
	}

	s.logger.Info("save conflict resolved",
		"conflict_id", conflictID.String(),
		"save_id", save.ID.String(),
		"resolution", string(resolution),
	)
	return save, nil
}

// PruneBackups applies the per-save backup cap across every save and
// returns how many snapshot rows were removed. Called by the
// maintenance sweep.
func (s *Service) PruneBackups(ctx context.Context) (int64, error) {
	pruned, err := s.backups.PruneAll(ctx, s.backupKeep)
	if err != nil {
		return 0, oops.With("operation", "prune save backups").Wrap(err)
	}
	BackupsPruned.Add(float64(pruned))
	if pruned > 0 {
		s.logger.Info("save backups pruned", "deleted", pruned)
	}
	return pruned, nil
}

// Stats summarizes a user's save slots.
type Stats struct {
	Total      int
	Manual     int
	Auto       int
	Conflicted int
}

// Statistics counts a user's saves by kind.
func (s *Service) Statistics(ctx context.Context, userID ulid.ULID) (*Stats, error) {
	saves, err := s.saves.ListByUser(ctx, userID)
	if err != nil {
		return nil, oops.With("operation", "save statistics").Wrap(err)
	}

	stats := &Stats{Total: len(saves)}
	for _, save := range saves {
		if save.IsManualSave() {
			stats.Manual++
		}
		if save.IsAutoSave() {
			stats.Auto++
		}
		if save.HasConflict() {
			stats.Conflicted++
		}
	}
	return stats, nil
}
