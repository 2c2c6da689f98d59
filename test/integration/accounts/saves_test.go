// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

//go:build integration

package accounts_test

import (
	"context"
	"encoding/json"
	"fmt"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/oklog/ulid/v2"

	"github.com/veyrm/accountd/internal/savegame"
)

var _ = Describe("Cloud saves", func() {
	var ctx context.Context
	var userID ulid.ULID

	payload := func(depth int) json.RawMessage {
		return json.RawMessage(fmt.Sprintf(`{"depth":%d,"hp":20}`, depth))
	}

	upload := func(slot int, data json.RawMessage, base string) *savegame.UploadResult {
		res, err := env.Saves.Upload(ctx, savegame.UploadRequest{
			UserID:        userID,
			Slot:          slot,
			CharacterName: "Shae",
			Data:          data,
			DeviceID:      "device-1",
			BaseChecksum:  base,
		})
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	BeforeEach(func() {
		ctx = context.Background()
		cleanupUsers(ctx, env.pool)

		login := registerAndLogin(ctx, "shae", "shae@example.com", goodPassword)
		userID = login.UserID
	})

	Describe("Upload and download", func() {
		It("round-trips a save through a slot", func() {
			res := upload(1, payload(3), "")
			Expect(res.Result).To(Equal(savegame.ResultCreated))

			save, err := env.Saves.Download(ctx, userID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(save.Data).To(MatchJSON(payload(3)))
			Expect(save.SyncStatus).To(Equal(savegame.StatusSynced))
		})

		It("overwrites in place when the base checksum matches", func() {
			created := upload(1, payload(3), "")

			res := upload(1, payload(4), created.Save.Checksum)
			Expect(res.Result).To(Equal(savegame.ResultUpdated))

			save, err := env.Saves.Download(ctx, userID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(save.Data).To(MatchJSON(payload(4)))
		})

		It("keeps slots independent per user", func() {
			upload(1, payload(3), "")
			upload(2, payload(9), "")

			saves, err := env.Saves.List(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saves).To(HaveLen(2))
		})
	})

	Describe("Conflicts", func() {
		It("parks a diverged upload instead of overwriting", func() {
			upload(1, payload(3), "")

			res := upload(1, payload(7), "stale-checksum")
			Expect(res.Result).To(Equal(savegame.ResultConflicted))
			Expect(res.Conflict).NotTo(BeNil())

			// The cloud copy is untouched but flagged
			save, err := env.Saves.Download(ctx, userID, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(save.Data).To(MatchJSON(payload(3)))
			Expect(save.SyncStatus).To(Equal(savegame.StatusConflict))

			conflicts, err := env.Saves.Conflicts(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(conflicts).To(HaveLen(1))
		})

		It("installs the parked upload on local_wins", func() {
			upload(1, payload(3), "")
			res := upload(1, payload(7), "stale-checksum")

			resolved, err := env.Saves.ResolveConflict(ctx, res.Conflict.ID, savegame.ResolutionLocalWins)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Data).To(MatchJSON(payload(7)))
			Expect(resolved.SyncStatus).To(Equal(savegame.StatusSynced))

			conflicts, err := env.Saves.Conflicts(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(conflicts).To(BeEmpty())
		})

		It("keeps the cloud copy on cloud_wins", func() {
			upload(1, payload(3), "")
			res := upload(1, payload(7), "stale-checksum")

			resolved, err := env.Saves.ResolveConflict(ctx, res.Conflict.ID, savegame.ResolutionCloudWins)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.Data).To(MatchJSON(payload(3)))
			Expect(resolved.SyncStatus).To(Equal(savegame.StatusSynced))
		})

		It("refuses to resolve the same conflict twice", func() {
			upload(1, payload(3), "")
			res := upload(1, payload(7), "stale-checksum")

			_, err := env.Saves.ResolveConflict(ctx, res.Conflict.ID, savegame.ResolutionCloudWins)
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Saves.ResolveConflict(ctx, res.Conflict.ID, savegame.ResolutionCloudWins)
			Expect(err).To(MatchError(savegame.ErrNotFound))
		})
	})

	Describe("Backups", func() {
		It("prunes overwrite snapshots down to the retention cap", func() {
			res := upload(1, payload(0), "")
			base := res.Save.Checksum

			// Each overwrite snapshots the previous payload
			for i := 1; i <= 8; i++ {
				next := upload(1, payload(i), base)
				Expect(next.Result).To(Equal(savegame.ResultUpdated))
				base = next.Save.Checksum
			}

			var kept int
			err := env.pool.QueryRow(ctx, "SELECT count(*) FROM save_backups").Scan(&kept)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept).To(Equal(savegame.DefaultBackupKeep))
		})
	})

	Describe("Delete", func() {
		It("removes the save and its bookkeeping rows", func() {
			upload(1, payload(3), "")
			upload(1, payload(7), "stale-checksum")

			Expect(env.Saves.Delete(ctx, userID, 1)).To(Succeed())

			_, err := env.Saves.Download(ctx, userID, 1)
			Expect(err).To(MatchError(savegame.ErrNotFound))

			// FK cascades removed the parked conflict
			var conflicts int
			Expect(env.pool.QueryRow(ctx, "SELECT count(*) FROM save_conflicts").Scan(&conflicts)).To(Succeed())
			Expect(conflicts).To(BeZero())
		})
	})

	Describe("Statistics", func() {
		It("counts manual, auto, and conflicted saves", func() {
			upload(1, payload(3), "")
			upload(-1, payload(4), "")
			upload(1, payload(7), "stale-checksum")

			stats, err := env.Saves.Statistics(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Total).To(Equal(2))
			Expect(stats.Manual).To(Equal(1))
			Expect(stats.Auto).To(Equal(1))
			Expect(stats.Conflicted).To(Equal(1))
		})
	})
})
