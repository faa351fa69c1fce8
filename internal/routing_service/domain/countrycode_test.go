package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountryCode(t *testing.T) {
	testCases := []struct {
		name     string
		number   string
		expected string
	}{
		{"Nigeria, 3-digit code", "2348191234500", "234"},
		{"Iran, 2-digit code", "989121234567", "98"},
		{"US, 1-digit code", "15551234567", "1"},
		{"Leading plus stripped", "+447911123456", "44"},
		{"Longest match wins over shorter", "2348031234500", "234"},
		{"Unknown prefix", "0001234", ""},
		{"Empty number", "", ""},
		{"Bare plus", "+", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CountryCode(tc.number))
		})
	}
}

func TestAreaCode(t *testing.T) {
	testCases := []struct {
		name     string
		number   string
		expected string
	}{
		{"Nigeria operator prefix", "2348191234500", "819"},
		{"Iran operator prefix", "989121234567", "912"},
		{"US area code", "15551234567", "555"},
		{"Leading plus", "+2348031234500", "803"},
		{"Shorter tail than 3", "23481", "81"},
		{"Nothing after code", "234", ""},
		{"Unknown code takes leading digits", "0001234", "000"},
		{"Empty number", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AreaCode(tc.number))
		})
	}
}
