package engine

// HouseRules holds the configurable parts of the game.
type HouseRules struct {
	MaxGameTurns         uint16 // 0 = unlimited
	CardsPerPlayer       uint8
	CambiaAllowedRound   uint8 // earliest round a player may call Cambia
	AllowDrawFromDiscard bool
	NumJokers            uint8 // 0, 1 or 2
}

func DefaultHouseRules() HouseRules {
	return HouseRules{
		MaxGameTurns:         46,
		CardsPerPlayer:       4,
		CambiaAllowedRound:   0,
		AllowDrawFromDiscard: true,
		NumJokers:            2,
	}
}
