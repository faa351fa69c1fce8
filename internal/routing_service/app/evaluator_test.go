package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dpi/sms-rule-based/internal/routing_service/domain"
)

func TestEvaluateRule_Comparisons(t *testing.T) {
	testCases := []struct {
		name     string
		param    string
		op       domain.Operator
		operand  string
		negate   bool
		expected bool
	}{
		{"EQ numeric equal", "10", domain.OpEQ, "10.0", false, true},
		{"EQ numeric unequal", "10", domain.OpEQ, "11", false, false},
		{"EQ string equal", "alice", domain.OpEQ, "alice", false, true},
		{"EQ string case sensitive", "Alice", domain.OpEQ, "alice", false, false},
		{"LT numeric", "9", domain.OpLT, "10", false, true},
		{"LT falls back to lexical", "9", domain.OpLT, "10x", false, false},
		{"LE boundary", "10", domain.OpLE, "10", false, true},
		{"GT numeric", "11", domain.OpGT, "10", false, true},
		{"GE boundary", "10", domain.OpGE, "10", false, true},
		{"GE below", "9.5", domain.OpGE, "10", false, false},
		{"EQ negated", "10", domain.OpEQ, "10", true, false},
		{"GT negated", "5", domain.OpGT, "10", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, evaluateRule(tc.param, tc.op, tc.operand, tc.negate))
		})
	}
}

func TestEvaluateRule_WildcardLists(t *testing.T) {
	testCases := []struct {
		name     string
		param    string
		op       domain.Operator
		operand  string
		negate   bool
		expected bool
	}{
		{"LK prefix match", "2348191234500", domain.OpLK, "234819%", false, true},
		{"LK no match", "2348171234500", domain.OpLK, "234819%", false, false},
		{"LK list any match", "2347041234500", domain.OpLK, "234819%,234704%,234702%", false, true},
		{"LK list spaces ignored", "2347041234500", domain.OpLK, "234819%, 234704%", false, true},
		{"IN behaves like LK", "2348191234500", domain.OpIN, "234819%,234704%", false, true},
		{"LK question mark single char", "alice", domain.OpLK, "al?ce", false, true},
		{"LK case insensitive", "ALICE", domain.OpLK, "alice", false, true},
		{"LK unanchored substring", "xx234819xx", domain.OpLK, "234819", false, true},
		{"LK empty operand never matches", "anything", domain.OpLK, "", false, false},
		{"LK empty operand negated matches", "anything", domain.OpLK, "", true, true},
		{"LK negated", "2348191234500", domain.OpLK, "234819%", true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, evaluateRule(tc.param, tc.op, tc.operand, tc.negate))
		})
	}
}

func TestEvaluateRule_Regexp(t *testing.T) {
	testCases := []struct {
		name     string
		param    string
		op       domain.Operator
		operand  string
		negate   bool
		expected bool
	}{
		{"RX match", "2348191234500", domain.OpRX, "^234(819|704)", false, true},
		{"RX no match", "2348031234500", domain.OpRX, "^234(819|704)", false, false},
		{"RX case insensitive", "Alice", domain.OpRX, "^ali", false, true},
		{"RX bad expression never matches", "anything", domain.OpRX, "(", false, false},
		{"RX bad expression stays false under negate", "anything", domain.OpRX, "(", true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, evaluateRule(tc.param, tc.op, tc.operand, tc.negate))
		})
	}
}

func TestEvaluateRule_UnknownOperator(t *testing.T) {
	assert.False(t, evaluateRule("x", domain.Operator("ZZ"), "x", false))
	// Unknown operators fail closed even when negated.
	assert.False(t, evaluateRule("x", domain.Operator("ZZ"), "x", true))
}
