package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionInfo_fingerprint(t *testing.T) {
	monza := SessionInfo{Year: 2024, EventName: "Monza", SessionType: "R", DataVersion: "v1"}

	assert.Equal(t, monza.Fingerprint(), monza.Fingerprint(),
		"fingerprint must be stable across calls")
	assert.Len(t, monza.Fingerprint(), 64)

	variants := []SessionInfo{
		{Year: 2023, EventName: "Monza", SessionType: "R", DataVersion: "v1"},
		{Year: 2024, EventName: "Spa", SessionType: "R", DataVersion: "v1"},
		{Year: 2024, EventName: "Monza", SessionType: "S", DataVersion: "v1"},
		{Year: 2024, EventName: "Monza", SessionType: "R", DataVersion: "v2"},
	}
	for _, v := range variants {
		assert.NotEqual(t, monza.Fingerprint(), v.Fingerprint(), "%s", v)
	}
}

func TestTimeline_statusAt(t *testing.T) {
	tl := &Timeline{Statuses: []TrackStatus{
		{Status: StatusYellow, Start: 10, End: 20},
		{Status: StatusClear, Start: 20, End: -1},
	}}

	assert.Equal(t, "", tl.StatusAt(5))
	assert.Equal(t, StatusYellow, tl.StatusAt(10))
	assert.Equal(t, StatusYellow, tl.StatusAt(19.99))
	assert.Equal(t, StatusClear, tl.StatusAt(20))
	// open-ended interval covers the rest of the session
	assert.Equal(t, StatusClear, tl.StatusAt(1e9))
}
