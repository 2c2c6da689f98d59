// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Veyrm Contributors

// Package savegame manages cloud save slots: upload with divergence
// detection, download, pre-overwrite backups with an oldest-first
// prune, and conflict bookkeeping so a rejected upload is never lost.
package savegame
