package app

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
)

// evaluateRule applies one scalar comparison between param and operand.
//
// EQ/LT/LE/GT/GE compare numerically when both sides parse as numbers,
// lexically otherwise. IN and LK are the same operation: operand is a
// comma-separated wildcard pattern list ('%' any sequence, '?' any single
// character) and the rule passes when any pattern matches anywhere in param.
// RX is an unanchored case-insensitive regular expression match.
//
// Negation inverts the comparison result. Unknown operators and patterns
// that fail to compile never match, negated or not.
func evaluateRule(param string, op domain.Operator, operand string, negate bool) bool {
	var ret bool
	switch op {
	case domain.OpEQ:
		ret = compareValues(param, operand) == 0
	case domain.OpLT:
		ret = compareValues(param, operand) < 0
	case domain.OpLE:
		ret = compareValues(param, operand) <= 0
	case domain.OpGT:
		ret = compareValues(param, operand) > 0
	case domain.OpGE:
		ret = compareValues(param, operand) >= 0
	case domain.OpIN, domain.OpLK:
		for _, pattern := range strings.Split(strings.ReplaceAll(operand, " ", ""), ",") {
			if matchWildcard(pattern, param) {
				ret = true
				break
			}
		}
	case domain.OpRX:
		re, err := regexp.Compile("(?i)" + operand)
		if err != nil {
			return false
		}
		ret = re.MatchString(param)
	default:
		return false
	}
	if negate {
		ret = !ret
	}
	return ret
}

// compareValues orders param against operand: numeric when both parse as
// numbers, byte-wise lexical otherwise.
func compareValues(param, operand string) int {
	pf, perr := strconv.ParseFloat(strings.TrimSpace(param), 64)
	of, oerr := strconv.ParseFloat(strings.TrimSpace(operand), 64)
	if perr == nil && oerr == nil {
		switch {
		case pf < of:
			return -1
		case pf > of:
			return 1
		}
		return 0
	}
	return strings.Compare(param, operand)
}

// matchWildcard translates a '%'/'?' wildcard pattern to a regular expression
// and searches for it within param. Empty patterns never match.
func matchWildcard(pattern, param string) bool {
	if pattern == "" {
		return false
	}
	expr := strings.ReplaceAll(strings.ReplaceAll(pattern, "?", "."), "%", ".*")
	return matchRegexp(expr, param)
}

// matchRegexp performs an unanchored case-insensitive match. Expressions that
// fail to compile never match.
func matchRegexp(expr, param string) bool {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return false
	}
	return re.MatchString(param)
}
