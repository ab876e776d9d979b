package domain

import (
	"encoding/json"
	"maps"
	"slices"

	engineDomain "github.com/allisson/iou/internal/engine/domain"
)

const (
	// PartyClaim is the claim holding the caller's protocol roles.
	PartyClaim = "party"
	// UsernameClaim is the claim holding the caller's username.
	UsernameClaim = "preferred_username"
)

// StringSet is an unordered set of strings, serialized as a sorted JSON array.
type StringSet map[string]struct{}

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Values returns the members in sorted order.
func (s StringSet) Values() []string {
	return slices.Sorted(maps.Keys(s))
}

// Single returns the only member of a one-element set.
func (s StringSet) Single() (string, bool) {
	if len(s) != 1 {
		return "", false
	}
	for v := range s {
		return v, true
	}
	return "", false
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	values := s.Values()
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}

// Party identifies a protocol participant by named attribute groups.
type Party struct {
	Entity map[string]StringSet `json:"entity"`
	Access map[string]StringSet `json:"access"`
}

// UserParty builds the party of username acting in role.
func UserParty(role, username string) Party {
	return Party{
		Entity: map[string]StringSet{
			PartyClaim:    NewStringSet(role),
			UsernameClaim: NewStringSet(username),
		},
		Access: map[string]StringSet{},
	}
}

// Username returns the single preferred_username of the party.
func (p Party) Username() (string, bool) {
	return p.Entity[UsernameClaim].Single()
}

// Equal reports whether both attribute groups match exactly.
func (p Party) Equal(other Party) bool {
	return groupsEqual(p.Entity, other.Entity) && groupsEqual(p.Access, other.Access)
}

func groupsEqual(a, b map[string]StringSet) bool {
	return maps.EqualFunc(a, b, func(x, y StringSet) bool {
		return maps.Equal(x, y)
	})
}

// ToEngine converts the party into its engine representation.
func (p Party) ToEngine() engineDomain.Party {
	return engineDomain.Party{Entity: groupsToEngine(p.Entity), Access: groupsToEngine(p.Access)}
}

// PartyFromEngine converts an engine party.
func PartyFromEngine(p engineDomain.Party) Party {
	return Party{Entity: groupsFromEngine(p.Entity), Access: groupsFromEngine(p.Access)}
}

func groupsToEngine(groups map[string]StringSet) map[string][]string {
	out := make(map[string][]string, len(groups))
	for name, set := range groups {
		out[name] = set.Values()
	}
	return out
}

func groupsFromEngine(groups map[string][]string) map[string]StringSet {
	out := make(map[string]StringSet, len(groups))
	for name, values := range groups {
		out[name] = NewStringSet(values...)
	}
	return out
}
