package domain

// Strategy selects a retrieval pipeline.
type Strategy string

const (
	// StrategyAuto lets the router pick based on a probe search.
	StrategyAuto Strategy = "auto"
	// StrategyStandard is the single-pass default pipeline.
	StrategyStandard Strategy = "standard"
	// StrategyCorrective gates a second retrieval round on a relevance score.
	StrategyCorrective Strategy = "corrective"
	// StrategySpeculative enriches retrieval with entities from a draft answer.
	StrategySpeculative Strategy = "speculative"
	// StrategyFusion merges searches over query paraphrases via RRF.
	StrategyFusion Strategy = "fusion"
)

// ParseStrategy maps a caller-supplied string to a Strategy.
// Empty means auto; anything unrecognized degrades to standard so the
// caller-facing contract stays lenient.
func ParseStrategy(s string) Strategy {
	switch Strategy(s) {
	case StrategyAuto, "":
		return StrategyAuto
	case StrategyStandard, StrategyCorrective, StrategySpeculative, StrategyFusion:
		return Strategy(s)
	default:
		return StrategyStandard
	}
}
