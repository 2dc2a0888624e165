package tokens

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ListVersion is the version of the persisted token list.
const ListVersion = 1

// MigrateList upgrades the version 0 shape, {"tokens": {name: value}}, to the
// ordered list. Names are sorted since the object shape has no order.
func MigrateList(from int, raw json.RawMessage) (json.RawMessage, error) {
	if from != 0 {
		return nil, fmt.Errorf("no token migration from version %d", from)
	}
	var old struct {
		Tokens map[string]int `json:"tokens"`
	}
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("decoding version 0 tokens: %w", err)
	}
	names := make([]string, 0, len(old.Tokens))
	for n := range old.Tokens {
		names = append(names, n)
	}
	sort.Strings(names)
	list := make([]Token, 0, len(names))
	for _, n := range names {
		list = append(list, Token{Name: n, Value: old.Tokens[n]})
	}
	return json.Marshal(list)
}
