package main

import "math"

// levelForXP derives a player's level from experience. Level is never
// stored independently; every xp mutation recomputes it through here.
func levelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}
