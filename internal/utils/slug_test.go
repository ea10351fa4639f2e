package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Organic Bananas", "organic-bananas"},
		{"  Fresh   Spinach  ", "fresh-spinach"},
		{"A2 Cow Milk (500ml)", "a2-cow-milk-500ml"},
		{"Ready-to-Eat Poha", "ready-to-eat-poha"},
		{"100% Pure Honey!!!", "100-pure-honey"},
		{"---", ""},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}
