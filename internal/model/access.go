package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AccessLevel is the level of access an identity has on a document.
// Levels are ordered: AccessNone < AccessView < AccessEdit.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessView
	AccessEdit
)

// ParseAccessLevel converts "none", "view" or "edit" (case-insensitive) into an AccessLevel.
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return AccessNone, nil
	case "view":
		return AccessView, nil
	case "edit":
		return AccessEdit, nil
	default:
		return AccessNone, fmt.Errorf("invalid access level %q", s)
	}
}

// AtLeast reports whether l is at least as permissive as other.
func (l AccessLevel) AtLeast(other AccessLevel) bool {
	return l >= other
}

func (l AccessLevel) String() string {
	switch l {
	case AccessView:
		return "view"
	case AccessEdit:
		return "edit"
	default:
		return "none"
	}
}

func (l AccessLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *AccessLevel) UnmarshalText(b []byte) error {
	v, err := ParseAccessLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Permissions maps an identity ID to its explicit access level.
// Being a map, it holds at most one entry per identity.
type Permissions map[string]AccessLevel

// Set grants level to userID. AccessNone removes any existing entry.
func (p Permissions) Set(userID string, level AccessLevel) {
	if level == AccessNone {
		delete(p, userID)
		return
	}
	p[userID] = level
}

// Lookup returns the explicit level for userID, or AccessNone.
func (p Permissions) Lookup(userID string) AccessLevel {
	if lvl, ok := p[userID]; ok {
		return lvl
	}
	return AccessNone
}

// Clone returns an independent copy.
func (p Permissions) Clone() Permissions {
	out := make(Permissions, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// MarshalJSON always emits an object, never null.
func (p Permissions) MarshalJSON() ([]byte, error) {
	m := make(map[string]AccessLevel, len(p))
	for k, v := range p {
		m[k] = v
	}
	return json.Marshal(m)
}
