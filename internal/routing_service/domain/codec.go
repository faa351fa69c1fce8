package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CompactRules serializes a ruleset's combine mode and rules into the
// length-prefixed storage encoding: a leading '1'/'0' flag for AND/OR,
// followed by, for each rule, len(key) '.' key len(payload) '.' payload,
// where payload is the 2-character operator, a '0'/'1' negate flag and the
// operand. Lengths are byte counts; ExpandRules uses the same convention so
// the pair round-trips any operand, including multi-byte text.
func CompactRules(allTrue bool, rules []Rule) string {
	var b strings.Builder
	if allTrue {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}
	for _, rule := range rules {
		key := string(rule.Type)
		neg := "0"
		if rule.Negate {
			neg = "1"
		}
		payload := string(rule.Op) + neg + rule.Operand
		b.WriteString(strconv.Itoa(len(key)))
		b.WriteByte('.')
		b.WriteString(key)
		b.WriteString(strconv.Itoa(len(payload)))
		b.WriteByte('.')
		b.WriteString(payload)
	}
	return b.String()
}

// ExpandRules decodes a compacted rule string produced by CompactRules,
// reconstructing rules in the order they were compacted. A corrupted
// encoding yields ErrMalformedRuleEncoding.
func ExpandRules(compacted string) (allTrue bool, rules []Rule, err error) {
	if compacted == "" {
		return false, nil, fmt.Errorf("%w: empty encoding", ErrMalformedRuleEncoding)
	}
	allTrue = compacted[0] == '1'
	rest := compacted[1:]
	for len(rest) > 0 {
		var key, payload string
		key, rest, err = readChunk(rest)
		if err != nil {
			return false, nil, err
		}
		payload, rest, err = readChunk(rest)
		if err != nil {
			return false, nil, err
		}
		if len(payload) < 3 {
			return false, nil, fmt.Errorf("%w: rule payload for key %q too short", ErrMalformedRuleEncoding, key)
		}
		rules = append(rules, Rule{
			Type:    RuleType(key),
			Op:      Operator(payload[:2]),
			Negate:  payload[2] == '1',
			Operand: payload[3:],
		})
	}
	return allTrue, rules, nil
}

// readChunk consumes one "len '.' data" segment from the front of s.
func readChunk(s string) (chunk, rest string, err error) {
	dot := strings.IndexByte(s, '.')
	if dot <= 0 {
		return "", "", fmt.Errorf("%w: missing length prefix", ErrMalformedRuleEncoding)
	}
	n, convErr := strconv.Atoi(s[:dot])
	if convErr != nil || n < 0 {
		return "", "", fmt.Errorf("%w: bad length prefix %q", ErrMalformedRuleEncoding, s[:dot])
	}
	start := dot + 1
	if start+n > len(s) {
		return "", "", fmt.Errorf("%w: truncated segment", ErrMalformedRuleEncoding)
	}
	return s[start : start+n], s[start+n:], nil
}
