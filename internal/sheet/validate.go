package sheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidSheet is wrapped by every validation failure.
var ErrInvalidSheet = errors.New("invalid character sheet")

// ParseJSON validates data against the sheet schema and decodes it.
//
// Postcondition: Returns a Sheet, or an error wrapping ErrInvalidSheet that
// lists every violation found.
func ParseJSON(data []byte) (Sheet, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Sheet{}, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
	}
	if errs := Validate(doc); len(errs) > 0 {
		return Sheet{}, fmt.Errorf("%w: %s", ErrInvalidSheet, strings.Join(errs, "; "))
	}
	s, err := decodeSheet(data)
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
	}
	return s, nil
}

// Validate walks a decoded JSON document and returns one message per schema
// violation, each prefixed with its path.
func Validate(doc any) []string {
	v := &validator{}
	root := v.object("", doc)
	if root == nil {
		return v.errs
	}
	if info := v.object("info", v.required(root, "", "info")); info != nil {
		v.info(info)
	}
	if runes := v.object("runes", v.required(root, "", "runes")); runes != nil {
		v.runes(runes)
	}
	return v.errs
}

type validator struct {
	errs []string
}

func (v *validator) fail(path, format string, args ...any) {
	if path == "" {
		path = "sheet"
	}
	v.errs = append(v.errs, path+": "+fmt.Sprintf(format, args...))
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// required returns obj[key], recording a violation when it is missing.
func (v *validator) required(obj map[string]any, path, key string) any {
	val, ok := obj[key]
	if !ok {
		v.fail(join(path, key), "is required")
		return missing{}
	}
	return val
}

// missing marks a value already reported as absent.
type missing struct{}

func (v *validator) object(path string, val any) map[string]any {
	if _, gone := val.(missing); gone {
		return nil
	}
	obj, ok := val.(map[string]any)
	if !ok {
		v.fail(path, "must be an object")
		return nil
	}
	return obj
}

func (v *validator) array(path string, val any) []any {
	if _, gone := val.(missing); gone {
		return nil
	}
	arr, ok := val.([]any)
	if !ok {
		v.fail(path, "must be an array")
		return nil
	}
	return arr
}

func (v *validator) number(path string, val any) {
	if _, gone := val.(missing); gone {
		return
	}
	if _, ok := val.(float64); !ok {
		v.fail(path, "must be a number")
	}
}

func (v *validator) str(path string, val any) {
	if _, gone := val.(missing); gone {
		return
	}
	if _, ok := val.(string); !ok {
		v.fail(path, "must be a string")
	}
}

func (v *validator) stringList(path string, val any) {
	for i, item := range v.array(path, val) {
		v.str(fmt.Sprintf("%s[%d]", path, i), item)
	}
}

func (v *validator) pair(path string, val any) {
	arr := v.array(path, val)
	if arr == nil {
		return
	}
	if len(arr) != 2 {
		v.fail(path, "must hold exactly 2 numbers, got %d items", len(arr))
		return
	}
	for i, item := range arr {
		v.number(fmt.Sprintf("%s[%d]", path, i), item)
	}
}

func (v *validator) optional(obj map[string]any, path, key string, check func(string, any)) {
	if val, ok := obj[key]; ok {
		check(join(path, key), val)
	}
}

// entries iterates an object's members in key order so messages are stable.
func (v *validator) entries(path string, val any, fn func(string, map[string]any)) {
	obj := v.object(path, val)
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p := join(path, k)
		if member := v.object(p, obj[k]); member != nil {
			fn(p, member)
		}
	}
}

func (v *validator) info(info map[string]any) {
	const p = "info"
	v.str(join(p, "name"), v.required(info, p, "name"))
	v.str(join(p, "shortName"), v.required(info, p, "shortName"))
	v.number(join(p, "version"), v.required(info, p, "version"))

	if stats := v.object(join(p, "stats"), v.required(info, p, "stats")); stats != nil {
		sp := join(p, "stats")
		for _, key := range []string{"movement", "health", "power", "basicRange", "critChance"} {
			v.number(join(sp, key), v.required(stats, sp, key))
		}
		v.pair(join(sp, "shield"), v.required(stats, sp, "shield"))
	}

	more := v.object(join(p, "moreInfo"), v.required(info, p, "moreInfo"))
	for k, val := range more {
		v.stringList(join(join(p, "moreInfo"), k), val)
	}

	v.entries(join(p, "summons"), v.required(info, p, "summons"), v.summon)
}

func (v *validator) summon(path string, s map[string]any) {
	v.optional(s, path, "cost", v.number)
	v.pair(join(path, "health"), v.required(s, path, "health"))
	speed := v.required(s, path, "speed")
	if str, ok := speed.(string); ok {
		if str != "fast" && str != "slow" {
			v.fail(join(path, "speed"), "must be fast or slow, got %q", str)
		}
	} else {
		v.str(join(path, "speed"), speed)
	}
	v.number(join(path, "power"), v.required(s, path, "power"))
	v.number(join(path, "movement"), v.required(s, path, "movement"))
	v.stringList(join(path, "passive"), v.required(s, path, "passive"))
	for i, item := range v.array(join(path, "active"), v.required(s, path, "active")) {
		ap := fmt.Sprintf("%s[%d]", join(path, "active"), i)
		action := v.object(ap, item)
		if action == nil {
			continue
		}
		v.optional(action, ap, "damage", v.pair)
		v.optional(action, ap, "accuracy", v.number)
		v.str(join(ap, "effect"), v.required(action, ap, "effect"))
	}
}

func (v *validator) runes(runes map[string]any) {
	const p = "runes"
	v.stringList(join(p, "passive"), v.required(runes, p, "passive"))
	v.entries(join(p, "primary"), v.required(runes, p, "primary"), v.primary)
	v.entries(join(p, "secondary"), v.required(runes, p, "secondary"), v.secondary)
}

func (v *validator) primary(path string, r map[string]any) {
	v.optional(r, path, "damage", v.pair)
	v.optional(r, path, "damageDisplay", v.str)
	v.optional(r, path, "heal", v.pair)
	v.optional(r, path, "healing", v.boolean)
	v.optional(r, path, "accuracy", v.number)
	v.optional(r, path, "accuracyDisplay", v.str)
	v.number(join(path, "speed"), v.required(r, path, "speed"))
	v.optional(r, path, "range", v.numberOrString)
	v.optional(r, path, "AoE", v.number)
	v.optional(r, path, "duration", v.str)
	v.str(join(path, "effect"), v.required(r, path, "effect"))
	v.resolve(join(path, "resolve"), v.required(r, path, "resolve"))
	v.optional(r, path, "bonus", v.bonus)
}

func (v *validator) secondary(path string, r map[string]any) {
	v.optional(r, path, "damage", v.number)
	v.optional(r, path, "duration", v.str)
	v.str(join(path, "effect"), v.required(r, path, "effect"))
}

func (v *validator) boolean(path string, val any) {
	if _, ok := val.(bool); !ok {
		v.fail(path, "must be a boolean")
	}
}

func (v *validator) numberOrString(path string, val any) {
	switch val.(type) {
	case float64, string:
	default:
		v.fail(path, "must be a number or a string")
	}
}

func (v *validator) resolve(path string, val any) {
	arr := v.array(path, val)
	if arr == nil {
		return
	}
	if len(arr) != 2 {
		v.fail(path, "must hold [amount, cost], got %d items", len(arr))
		return
	}
	switch amount := arr[0].(type) {
	case float64:
	case string:
		if !percentPattern.MatchString(amount) {
			v.fail(path+"[0]", "must be a number or a percentage, got %q", amount)
		}
	default:
		v.fail(path+"[0]", "must be a number or a percentage")
	}
	v.number(path+"[1]", arr[1])
}

func (v *validator) bonus(path string, val any) {
	arr := v.array(path, val)
	if arr == nil {
		return
	}
	if len(arr) != 2 {
		v.fail(path, "must hold [amount, description], got %d items", len(arr))
		return
	}
	v.number(path+"[0]", arr[0])
	v.str(path+"[1]", arr[1])
}
