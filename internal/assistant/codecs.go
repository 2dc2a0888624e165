package assistant

import (
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/health"
	"github.com/cory-johannsen/rotz-assistant/internal/game/tokens"
	"github.com/cory-johannsen/rotz-assistant/internal/persist"
	"github.com/cory-johannsen/rotz-assistant/internal/sheet"
)

// Storage keys, one per persisted store.
const (
	KeyHealth = "rotz-assistant-health-store"
	KeyTokens = "rotz-assistant-token-store"
	KeyNotes  = "rotz-assistant-notes-store"
	KeyRules  = "rotz-assistant-rules-store"
	KeySheets = "rotz-assistant-character-sheet-store"
	KeyDamage = "rotz-assistant-damage-store"
)

// NotesState is the persisted shape of the notes pad.
type NotesState struct {
	Notes string `json:"notes"`
}

// RulesState is the persisted shape of the rules pad.
type RulesState struct {
	Rules string `json:"rules"`
}

// DamageVersion is the version of the persisted damage session.
const DamageVersion = 1

var (
	HealthCodec = persist.Codec[health.Roster]{Key: KeyHealth, Version: health.RosterVersion, Migrate: health.MigrateRoster}
	TokenCodec  = persist.Codec[[]tokens.Token]{Key: KeyTokens, Version: tokens.ListVersion, Migrate: tokens.MigrateList}
	NotesCodec  = persist.Codec[NotesState]{Key: KeyNotes}
	RulesCodec  = persist.Codec[RulesState]{Key: KeyRules}
	SheetCodec  = persist.Codec[sheet.Collection]{Key: KeySheets, Version: sheet.CollectionVersion, Migrate: sheet.MigrateCollection}
	DamageCodec = persist.Codec[damage.State]{Key: KeyDamage, Version: DamageVersion}
)
