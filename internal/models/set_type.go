package models

import "strings"

// SetType classifies a single set. It only affects display; numbering and
// persistence ignore it.
type SetType string

const (
	SetNormal  SetType = "normal"
	SetWarmup  SetType = "warmup"
	SetDrop    SetType = "drop"
	SetSuper   SetType = "super"
	SetFailure SetType = "failure"
)

// ParseSetType maps a user-supplied tag (case-insensitive) to a SetType.
func ParseSetType(s string) (SetType, bool) {
	switch t := SetType(strings.ToLower(strings.TrimSpace(s))); t {
	case SetNormal, SetWarmup, SetDrop, SetSuper, SetFailure:
		return t, true
	}
	return "", false
}
