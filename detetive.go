package detetive

const (
	// Service is the name of this service.
	Service = "detetive"

	// DefaultDetective is the display name recorded for a solved case when
	// the player never gave one.
	DefaultDetective = "Detetive"
)

// Suspects is the canonical deck of suspect cards.
var Suspects = []string{
	"Scarlet",
	"Green",
	"Mustard",
	"Plum",
	"Peacock",
	"White",
}

// Weapons is the canonical deck of weapon cards.
var Weapons = []string{
	"Knife",
	"Candlestick",
	"Revolver",
	"Rope",
	"Lead Pipe",
	"Wrench",
}

// Locations is the canonical deck of location cards.
var Locations = []string{
	"Kitchen",
	"Ballroom",
	"Conservatory",
	"Dining Room",
	"Billiard Room",
	"Library",
	"Lounge",
	"Hall",
	"Study",
}
