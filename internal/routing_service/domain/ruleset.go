package domain

// RuleType identifies the message or recipient attribute a rule tests.
// The set is closed: unknown types never match.
type RuleType string

const (
	RuleTypeUser     RuleType = "user"     // username of the sending user
	RuleTypeSender   RuleType = "sender"   // sender id string of the message
	RuleTypeCount    RuleType = "count"    // number of recipients still in the pool
	RuleTypeCountry  RuleType = "country"  // country calling code of the recipient number
	RuleTypeArea     RuleType = "area"     // 3-digit area prefix after the country code
	RuleTypeNumber   RuleType = "number"   // raw recipient number
	RuleTypeSendTime RuleType = "sendtime" // message send timestamp (unix seconds)
)

// Operator is the comparison applied between the selected attribute and the
// rule operand.
type Operator string

const (
	OpEQ Operator = "EQ" // equal
	OpLT Operator = "LT" // less than
	OpLE Operator = "LE" // less than or equal
	OpGT Operator = "GT" // greater than
	OpGE Operator = "GE" // greater than or equal
	OpIN Operator = "IN" // any of (comma-separated wildcard patterns)
	OpLK Operator = "LK" // looks like (wildcards % and ?)
	OpRX Operator = "RX" // regular expression
)

// Rule is a single typed predicate within a ruleset. Operand semantics depend
// on the operator: a literal for EQ/LT/LE/GT/GE, a comma-separated pattern
// list for IN/LK, a regular expression body for RX.
type Rule struct {
	Type    RuleType `json:"type"`
	Op      Operator `json:"op"`
	Operand string   `json:"operand"`
	Negate  bool     `json:"negate"`
}

// Ruleset is a named, weighted bundle of rules mapped to one target gateway.
//
// Rules are kept as an ordered slice rather than a map keyed by rule type:
// the compact encoding must round-trip rules in their original order, and Go
// map iteration order is undefined. Rule types are unique within a ruleset.
type Ruleset struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	// Weight orders rulesets for evaluation; lower weight runs first and
	// wins ties for a recipient.
	Weight  int    `json:"weight"`
	Enabled bool   `json:"enabled"`
	Gateway string `json:"gateway"`
	// AllTrue selects AND combination of the rules; false selects OR.
	AllTrue bool   `json:"all_true"`
	Rules   []Rule `json:"rules"`
}
