package models

// BlockTemplate defines a block a fresh build starts with
type BlockTemplate struct {
	Type  string `json:"type"`
	Order int    `json:"order"`
}

// DefaultBlocks returns the standard block layout for a new build
func DefaultBlocks() []BlockTemplate {
	return []BlockTemplate{
		{Type: "Starting Items", Order: 0},
		{Type: "Early Items", Order: 1},
		{Type: "Core Items", Order: 2},
		{Type: "Situational", Order: 3},
	}
}

// Summoner's Rift and Howling Abyss map ids
const (
	MapSummonersRift = 11
	MapHowlingAbyss  = 12
)
