package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildingLayout_FloorPartition(t *testing.T) {
	layout := NewBuildingLayout(8)

	floor, err := layout.Floor(3)
	require.NoError(t, err)

	assert.Equal(t, []int{301, 302}, floor.SideA.Upper)
	assert.Equal(t, []int{303, 304, 305, 306, 307, 308, 309}, floor.SideA.Lower)
	assert.Equal(t, []int{310, 311, 312, 313, 314}, floor.SideB.Upper)
	assert.Equal(t, []int{315, 316, 317, 318, 319, 320}, floor.SideB.Lower)
}

func TestBuildingLayout_RoomsAreUnique(t *testing.T) {
	layout := NewBuildingLayout(8)

	seen := make(map[int]bool)
	for _, floor := range layout.Floors() {
		rooms := floor.Rooms()
		assert.Len(t, rooms, RoomsPerFloor, "floor %d", floor.Floor)
		for _, r := range rooms {
			assert.False(t, seen[r], "room %d generated twice", r)
			seen[r] = true
			assert.Equal(t, floor.Floor, r/100)
		}
	}
	assert.Len(t, seen, layout.TotalRooms())
	assert.Equal(t, 160, layout.TotalRooms())
}

func TestBuildingLayout_FloorOutOfRange(t *testing.T) {
	layout := NewBuildingLayout(8)

	for _, f := range []int{0, -1, 9} {
		_, err := layout.Floor(f)
		require.Error(t, err)
		assert.Equal(t, KindInvalidArgument, KindOf(err))
	}
}

func TestBuildingLayout_FloorOf(t *testing.T) {
	layout := NewBuildingLayout(8)

	tests := []struct {
		room string
		want int
	}{
		{"101", 1},
		{"320", 3},
		{"820", 8},
		{"321", 0},
		{"300", 0},
		{"901", 0},
		{"A12", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.room, func(t *testing.T) {
			assert.Equal(t, tt.want, layout.FloorOf(tt.room))
		})
	}
}
