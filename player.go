package main

// Player is the connection-owned component of a character. It outlives the
// characters it controls: kills and deaths accumulate across respawns.
type Player struct {
	Session      Session
	Nickname     string
	Account      string
	EliteAllowed bool
	Team         int
	Kills        int
	Deaths       int
	Character    *Character
}

// PlayerInfo is what the session layer knows about a connection when it
// enters a room
type PlayerInfo struct {
	Nickname     string
	Account      string
	EliteAllowed bool
}

// CharacterRequest is a create-character command
type CharacterRequest struct {
	Class     ClassID
	Elite     bool
	Abilities [ElementCount]int
}

// Validate resolves the request against the tables. It fails with
// ErrCorruptedData when any index is out of range or names a summon-only
// class.
func (req CharacterRequest) Validate(t *Tables) (*ClassDef, [ElementCount]*AbilityDef, error) {
	var abilities [ElementCount]*AbilityDef
	def, ok := t.Classes.Get(req.Class)
	if !ok || !def.Selectable {
		return nil, abilities, ErrCorruptedData
	}
	for e := 0; e < ElementCount; e++ {
		a, ok := t.Abilities.Get(Element(e), req.Abilities[e])
		if !ok {
			return nil, abilities, ErrCorruptedData
		}
		abilities[e] = a
	}
	return def, abilities, nil
}
