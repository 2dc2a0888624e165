package sheet

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CollectionVersion is the version of the persisted sheet collection.
const CollectionVersion = 1

// LegacyID derives the stable ID given to a sheet stored under a version 0 key.
func LegacyID(key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("rotz-assistant:sheet:"+key))
}

// MigrateCollection upgrades the version 0 shape to CollectionVersion.
//
// Version 0 keys sheets by "name::unixMillis" and names the active sheet by
// its key. Entries without a type discriminant predate the JSON format and
// are dropped, as are JSON entries that no longer validate.
func MigrateCollection(from int, raw json.RawMessage) (json.RawMessage, error) {
	if from != 0 {
		return nil, fmt.Errorf("no character sheet migration from version %d", from)
	}
	var old struct {
		Sheets map[string]json.RawMessage `json:"characterSheet"`
		Active string                     `json:"activeCharacter"`
	}
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("decoding version 0 character sheets: %w", err)
	}

	var c Collection
	for key, data := range old.Sheets {
		e, ok := legacyEntry(key, data)
		if !ok {
			continue
		}
		c.Sheets = append(c.Sheets, e)
		if key == old.Active {
			c.Active = e.ID
		}
	}
	sort.SliceStable(c.Sheets, func(i, j int) bool {
		a, b := c.Sheets[i], c.Sheets[j]
		if !a.AddedAt.Equal(b.AddedAt) {
			return a.AddedAt.Before(b.AddedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	if c.Sheets == nil {
		c.Sheets = []Entry{}
	}
	return json.Marshal(c)
}

func legacyEntry(key string, data json.RawMessage) (Entry, bool) {
	var item struct {
		Type     Format          `json:"type"`
		Markdown string          `json:"markdown"`
		JSON     json.RawMessage `json:"json"`
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return Entry{}, false
	}
	name, added := splitLegacyKey(key)
	if name == "" {
		name = UnknownName
	}
	e := Entry{ID: LegacyID(key), Name: name, AddedAt: added, Format: item.Type}
	switch item.Type {
	case FormatMarkdown:
		e.Markdown = item.Markdown
	case FormatJSON:
		sh, err := ParseJSON(item.JSON)
		if err != nil {
			return Entry{}, false
		}
		e.JSON = &sh
	default:
		return Entry{}, false
	}
	return e, true
}

// splitLegacyKey separates "name::unixMillis". A key without a timestamp
// keeps the whole key as its name and the zero time.
func splitLegacyKey(key string) (string, time.Time) {
	i := strings.LastIndex(key, "::")
	if i < 0 {
		return key, time.Time{}
	}
	ms, err := strconv.ParseInt(key[i+2:], 10, 64)
	if err != nil {
		return key, time.Time{}
	}
	return key[:i], time.UnixMilli(ms).UTC()
}
