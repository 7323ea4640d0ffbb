package member

import "errors"

// Belt constants in rank order.
const (
	BeltWhite  = "white"
	BeltYellow = "yellow"
	BeltOrange = "orange"
	BeltGreen  = "green"
	BeltBlue   = "blue"
	BeltBrown  = "brown"
	BeltBlack  = "black"
)

// Belts defines the belt progression order.
var Belts = []string{BeltWhite, BeltYellow, BeltOrange, BeltGreen, BeltBlue, BeltBrown, BeltBlack}

// ErrInvalidBelt is returned for belts outside the progression.
var ErrInvalidBelt = errors.New("invalid belt value")

// BeltIndex returns the position of belt in Belts. Unknown belts rank as white.
func BeltIndex(belt string) int {
	for i, b := range Belts {
		if b == belt {
			return i
		}
	}
	return 0
}

// IsValidBelt checks if belt is part of the progression.
func IsValidBelt(belt string) bool {
	return contains(Belts, belt)
}
