package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBar_Clamps(t *testing.T) {
	assert.Equal(t, 10, strings.Count(Bar(5, 10, 10), "█")+strings.Count(Bar(5, 10, 10), "░"))
	assert.Equal(t, 5, strings.Count(Bar(5, 10, 10), "█"))
	assert.Equal(t, 4, strings.Count(Bar(99, 10, 4), "█"))
	assert.Equal(t, 0, strings.Count(Bar(-3, 10, 4), "█"))
	assert.Equal(t, 0, strings.Count(Bar(3, 0, 4), "█"))
	assert.Empty(t, Bar(1, 1, 0))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, " 12.5%", Percent(0.125))
}

func TestHeading(t *testing.T) {
	assert.Contains(t, Heading(IconTrophy, "Rankings"), "Rankings")
}
