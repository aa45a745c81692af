package conversation

// Progress weights. Each bucket caps independently and a bonus applies
// once all three are non-empty.
const (
	entityWeight     = 10
	entityCap        = 30
	scenarioWeight   = 8
	scenarioCap      = 40
	constraintWeight = 5
	constraintCap    = 20
	completionBonus  = 10
	maxScore         = 100
)

// Score computes the progress score from the three counts. It is a pure
// function, recomputed from scratch on every update, and always lands in
// [0, 100].
func Score(entities, scenarios, constraints int) int {
	score := capped(entities*entityWeight, entityCap) +
		capped(scenarios*scenarioWeight, scenarioCap) +
		capped(constraints*constraintWeight, constraintCap)

	if entities > 0 && scenarios > 0 && constraints > 0 {
		score += completionBonus
	}

	if score > maxScore {
		return maxScore
	}
	if score < 0 {
		return 0
	}
	return score
}

func capped(v, limit int) int {
	if v > limit {
		return limit
	}
	return v
}
