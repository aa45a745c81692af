package pattern

// VagueWords are terms that make a scenario component imprecise. Their
// presence raises a validation issue and lowers scenario confidence.
var VagueWords = []string{"something", "anything", "somehow", "maybe", "possibly"}

// UntestablePhrases are subjective outcomes with no checkable assertion.
var UntestablePhrases = []string{"user is happy", "system works well", "good performance"}

// NormalizeReplacements maps common conversational phrasings to the role
// keyword they stand for. Applied before sentence classification.
var NormalizeReplacements = [][2]string{
	{"and then", "then"},
	{"after that", "then"},
	{"as a result", "then"},
	{"provided that", "given"},
	{"assuming", "given"},
	{"in case", "when"},
}
