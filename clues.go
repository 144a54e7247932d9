package main

import "slices"

// ClueDefinition is a static catalog entry for a discoverable clue.
type ClueDefinition struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	XPAward     int    `json:"xpAward"`
}

// Clue is a catalog entry as held in a player's inventory, tagged with
// the room it was discovered in.
type Clue struct {
	ClueDefinition
	RoomID string `json:"roomId"`
}

// RoomClueConfig defines, per searchable room, the chance a search
// succeeds and the pool of clues eligible there.
type RoomClueConfig struct {
	RoomID      string
	Probability float64
	ClueIDs     []string
}

var clueDefinitions = map[string]ClueDefinition{
	"clue_fingerprint": {
		ID:          "clue_fingerprint",
		Type:        "Physical Evidence",
		Description: "A set of mysterious fingerprints on a glass.",
		XPAward:     25,
	},
	"clue_letter": {
		ID:          "clue_letter",
		Type:        "Document",
		Description: "A torn letter with cryptic handwriting.",
		XPAward:     30,
	},
	"clue_key": {
		ID:          "clue_key",
		Type:        "Object",
		Description: "An old brass key with strange markings.",
		XPAward:     20,
	},
	"clue_footprint": {
		ID:          "clue_footprint",
		Type:        "Physical Evidence",
		Description: "Muddy footprints leading to the door.",
		XPAward:     15,
	},
	"clue_book": {
		ID:          "clue_book",
		Type:        "Document",
		Description: "A journal with suspicious annotations.",
		XPAward:     35,
	},
	"clue_photograph": {
		ID:          "clue_photograph",
		Type:        "Document",
		Description: "An old photograph with a familiar face.",
		XPAward:     25,
	},
	"clue_weapon": {
		ID:          "clue_weapon",
		Type:        "Object",
		Description: "A letter opener with dried stains.",
		XPAward:     40,
	},
	"clue_cigar": {
		ID:          "clue_cigar",
		Type:        "Physical Evidence",
		Description: "A half-smoked cigar in an ashtray.",
		XPAward:     20,
	},
	"clue_receipt": {
		ID:          "clue_receipt",
		Type:        "Document",
		Description: "A receipt for a large sum of money.",
		XPAward:     30,
	},
	"clue_fabric": {
		ID:          "clue_fabric",
		Type:        "Physical Evidence",
		Description: "A torn piece of expensive fabric.",
		XPAward:     15,
	},
}

var roomClueConfigs = map[string]RoomClueConfig{
	"LIBRARY": {
		RoomID:      "LIBRARY",
		Probability: 0.6,
		ClueIDs:     []string{"clue_book", "clue_letter", "clue_photograph"},
	},
	"STUDY": {
		RoomID:      "STUDY",
		Probability: 0.65,
		ClueIDs:     []string{"clue_letter", "clue_receipt", "clue_key"},
	},
	"DINING": {
		RoomID:      "DINING",
		Probability: 0.5,
		ClueIDs:     []string{"clue_fingerprint", "clue_weapon", "clue_fabric"},
	},
	"KITCHEN": {
		RoomID:      "KITCHEN",
		Probability: 0.55,
		ClueIDs:     []string{"clue_footprint", "clue_fingerprint", "clue_weapon"},
	},
	"BALLROOM": {
		RoomID:      "BALLROOM",
		Probability: 0.45,
		ClueIDs:     []string{"clue_fabric", "clue_photograph", "clue_footprint"},
	},
	"LOUNGE": {
		RoomID:      "LOUNGE",
		Probability: 0.5,
		ClueIDs:     []string{"clue_cigar", "clue_fingerprint", "clue_key"},
	},
	"CONSERVATORY": {
		RoomID:      "CONSERVATORY",
		Probability: 0.4,
		ClueIDs:     []string{"clue_footprint", "clue_fabric"},
	},
	"BILLIARD": {
		RoomID:      "BILLIARD",
		Probability: 0.5,
		ClueIDs:     []string{"clue_cigar", "clue_photograph", "clue_key"},
	},
	"FOYER": {
		RoomID:      "FOYER",
		Probability: 0.35,
		ClueIDs:     []string{"clue_footprint", "clue_key"},
	},
}

// searchRoomForClue decides whether a search of roomID succeeds and which
// clue is awarded. Each call is an independent trial against the room's
// probability; clues the searcher already holds are excluded, and an
// exhausted pool always fails. chance returns a value in [0,1), pick a
// uniform index below its argument; both are injectable for tests.
func searchRoomForClue(roomID string, foundIDs []string, chance func() float64, pick func(n int) int) (ClueDefinition, bool) {
	config, ok := roomClueConfigs[roomID]
	if !ok {
		return ClueDefinition{}, false
	}

	if chance() > config.Probability {
		return ClueDefinition{}, false
	}

	available := make([]string, 0, len(config.ClueIDs))
	for _, id := range config.ClueIDs {
		if !slices.Contains(foundIDs, id) {
			available = append(available, id)
		}
	}

	if len(available) == 0 {
		return ClueDefinition{}, false
	}

	return clueDefinitions[available[pick(len(available))]], true
}
