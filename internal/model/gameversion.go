package model

// GameVersion is the client build family a title id belongs to
type GameVersion string

const (
	GameVersionUnknown GameVersion = ""
	GameVersionLBP1    GameVersion = "lbp1"
	GameVersionLBP2    GameVersion = "lbp2"
	GameVersionLBP3    GameVersion = "lbp3"
	GameVersionVita    GameVersion = "vita"
)

var titleIDs = map[string]GameVersion{
	// LittleBigPlanet
	"BCES00141": GameVersionLBP1,
	"BCUS98148": GameVersionLBP1,
	"BCUS98199": GameVersionLBP1,
	"BCAS20058": GameVersionLBP1,
	"BCJS30018": GameVersionLBP1,
	"NPEA00241": GameVersionLBP1,
	"NPUA80472": GameVersionLBP1,
	// LittleBigPlanet 2
	"BCES00850": GameVersionLBP2,
	"BCUS98245": GameVersionLBP2,
	"BCUS98372": GameVersionLBP2,
	"BCAS20113": GameVersionLBP2,
	"BCJS70024": GameVersionLBP2,
	"NPEA00324": GameVersionLBP2,
	"NPUA80662": GameVersionLBP2,
	// LittleBigPlanet 3
	"BCES01663": GameVersionLBP3,
	"BCUS98362": GameVersionLBP3,
	"BCAS20322": GameVersionLBP3,
	"NPEA00515": GameVersionLBP3,
	"NPUA81116": GameVersionLBP3,
	// LittleBigPlanet PS Vita
	"PCSF00021": GameVersionVita,
	"PCSA00081": GameVersionVita,
	"PCSD00006": GameVersionVita,
	"PCSA00549": GameVersionVita,
}

// GameVersionFromTitleID maps a client title id to its build family.
// Unrecognised ids return GameVersionUnknown.
func GameVersionFromTitleID(titleID string) GameVersion {
	return titleIDs[titleID]
}
