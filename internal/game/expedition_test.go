package game

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = Position{Latitude: 37.5665, Longitude: 126.9780}

// north returns p moved the given meters due north along a meridian.
func north(p Position, meters float64) Position {
	deg := meters / (EarthRadiusKm * 1000) * 180 / math.Pi
	return Position{Latitude: p.Latitude + deg, Longitude: p.Longitude}
}

func TestHaversine_KnownDistance(t *testing.T) {
	tokyo := Position{Latitude: 35.6762, Longitude: 139.6503}
	assert.InDelta(t, 1149, Haversine(seoul, tokyo), 2)
	assert.Equal(t, 0.0, Haversine(seoul, seoul))
}

func TestMeasureStep_NoiseFilter(t *testing.T) {
	km, counted := MeasureStep(seoul, north(seoul, 4), 5)
	assert.False(t, counted)
	assert.InDelta(t, 0.004, km, 1e-6)

	km, counted = MeasureStep(seoul, north(seoul, 6), 5)
	assert.True(t, counted)
	assert.InDelta(t, 0.006, km, 1e-6)
}

func startedExpedition(t *testing.T, loot []LootItem) (*Catalog, State) {
	t.Helper()
	c, s := newTestState(t)
	s, err := c.StartExpedition(s, &seoul, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	s.Expedition.Loot = loot
	return c, s
}

func TestRecordPosition_NoiseProducesNoDelta(t *testing.T) {
	c, s := startedExpedition(t, nil)

	next, mv := c.RecordPosition(s, north(seoul, 4), testNow)

	assert.False(t, mv.Counted)
	assert.Zero(t, mv.DistanceDelta)
	assert.Zero(t, mv.PointsDelta)
	assert.Zero(t, next.Expedition.TotalDistanceKm)
	assert.Len(t, next.Expedition.Path, 1)
}

func TestRecordPosition_CountsRealMovement(t *testing.T) {
	c, s := startedExpedition(t, nil)
	p := north(seoul, 6)

	next, mv := c.RecordPosition(s, p, testNow)

	require.True(t, mv.Counted)
	assert.InDelta(t, Haversine(seoul, p), mv.DistanceDelta, 1e-12)
	assert.Greater(t, mv.DistanceDelta, 0.0)
	assert.Len(t, next.Expedition.Path, 2)
	assert.Equal(t, p, *next.Expedition.LastPos)
}

func TestRecordPosition_AccumulatesPoints(t *testing.T) {
	c, s := startedExpedition(t, nil)

	pos := seoul
	total := 0
	for i := 0; i < 12; i++ {
		pos = north(pos, 100)
		var mv Movement
		s, mv = c.RecordPosition(s, pos, testNow)
		total += mv.PointsDelta
	}

	// 1.2 km at 100 points per km, floored.
	assert.InDelta(t, 1.2, s.Expedition.TotalDistanceKm, 1e-6)
	assert.InDelta(t, 120, s.Expedition.PointsEarned, 1)
	assert.Equal(t, s.Expedition.PointsEarned, total)
}

func TestRecordPosition_IgnoredWhenIdle(t *testing.T) {
	c, s := newTestState(t)

	next, mv := c.RecordPosition(s, seoul, testNow)

	assert.Equal(t, s, next)
	assert.False(t, mv.Counted)
}

func TestStartExpedition_WithoutFeed(t *testing.T) {
	c, s := newTestState(t)

	next, err := c.StartExpedition(s, nil, rand.New(rand.NewSource(1)))

	assert.ErrorIs(t, err, ErrNoPositionFeed)
	assert.False(t, next.Expedition.Active)
}

func TestStartExpedition_SeedsLootAndResets(t *testing.T) {
	c, s := newTestState(t)
	s.Expedition.TotalDistanceKm = 3
	s.Expedition.PointsEarned = 300

	next, err := c.StartExpedition(s, &seoul, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.True(t, next.Expedition.Active)
	assert.Zero(t, next.Expedition.TotalDistanceKm)
	assert.Zero(t, next.Expedition.PointsEarned)
	require.Len(t, next.Expedition.Loot, 8)
	for _, l := range next.Expedition.Loot {
		assert.True(t, l.Active)
		assert.GreaterOrEqual(t, l.Value, 20)
		assert.LessOrEqual(t, l.Value, 69)
		assert.LessOrEqual(t, math.Abs(l.Position.Latitude-seoul.Latitude), 0.0015)
		assert.LessOrEqual(t, math.Abs(l.Position.Longitude-seoul.Longitude), 0.0015)
	}

	_, err = c.StartExpedition(next, &seoul, rand.New(rand.NewSource(7)))
	assert.ErrorIs(t, err, ErrExpeditionActive)
}

func TestCheckLootProximity_Idempotent(t *testing.T) {
	loot := []LootItem{
		{ID: 0, Position: north(seoul, 10), Value: 25, Active: true},
		{ID: 1, Position: north(seoul, 40), Value: 30, Active: true},
		{ID: 2, Position: north(seoul, 400), Value: 60, Active: true},
	}

	after, collected, gems := CheckLootProximity(seoul, loot, 50)
	assert.Len(t, collected, 2)
	assert.Equal(t, 55, gems)
	assert.False(t, after[0].Active)
	assert.False(t, after[1].Active)
	assert.True(t, after[2].Active)
	assert.True(t, loot[0].Active, "input slice untouched")

	again, collected, gems := CheckLootProximity(seoul, after, 50)
	assert.Empty(t, collected)
	assert.Zero(t, gems)
	assert.Equal(t, after, again)
}

func TestRecordPosition_CollectsLootEvenOnNoise(t *testing.T) {
	loot := []LootItem{{ID: 0, Position: north(seoul, 20), Value: 42, Active: true}}
	c, s := startedExpedition(t, loot)
	gemsBefore := s.Profile.Gems

	next, mv := c.RecordPosition(s, north(seoul, 3), testNow)

	assert.False(t, mv.Counted)
	assert.Equal(t, 42, mv.GemsFound)
	assert.Equal(t, gemsBefore+42, next.Profile.Gems)
	require.Len(t, next.Notifications, 1)
	assert.Equal(t, "Space crystal found! +42 gems!", next.Notifications[0].Text)

	again, mv := c.RecordPosition(next, north(seoul, 3), testNow.Add(time.Second))
	assert.Zero(t, mv.GemsFound)
	assert.Equal(t, next.Profile.Gems, again.Profile.Gems)
}

func TestStopExpedition_PaysOutOnce(t *testing.T) {
	c, s := startedExpedition(t, nil)
	s, _ = c.RecordPosition(s, north(seoul, 255), testNow)
	gemsBefore := s.Profile.Gems

	next, sum, ok := c.StopExpedition(s, testNow)

	require.True(t, ok)
	assert.Equal(t, 25, sum.GemsEarned)
	assert.Equal(t, gemsBefore+25, next.Profile.Gems)
	assert.False(t, next.Expedition.Active)
	assert.Len(t, next.Notifications, 1)

	again, _, ok := c.StopExpedition(next, testNow)
	assert.False(t, ok)
	assert.Equal(t, next, again)
}
