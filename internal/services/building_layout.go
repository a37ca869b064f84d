package services

import (
	"strconv"

	"github.com/mkheight/hostel-backend/internal/models"
)

// Room offsets within a floor. Room numbers are floor*100 + offset and must
// stay stable because payments and rosters reference them as text.
var (
	sideAUpperOffsets = []int{1, 2}
	sideALowerOffsets = []int{3, 4, 5, 6, 7, 8, 9}
	sideBUpperOffsets = []int{10, 11, 12, 13, 14}
	sideBLowerOffsets = []int{15, 16, 17, 18, 19, 20}
)

// RoomsPerFloor is the number of rooms generated for every floor
const RoomsPerFloor = 20

// BuildingLayout generates the fixed room grid of the hostel
type BuildingLayout struct {
	totalFloors int
}

// NewBuildingLayout creates a layout for a building with totalFloors floors
func NewBuildingLayout(totalFloors int) *BuildingLayout {
	return &BuildingLayout{totalFloors: totalFloors}
}

// TotalFloors returns the number of floors
func (b *BuildingLayout) TotalFloors() int {
	return b.totalFloors
}

// TotalRooms returns the room capacity of the whole building
func (b *BuildingLayout) TotalRooms() int {
	return b.totalFloors * RoomsPerFloor
}

// Floor returns the room partition of one floor
func (b *BuildingLayout) Floor(floor int) (models.FloorLayout, error) {
	if floor < 1 || floor > b.totalFloors {
		return models.FloorLayout{}, InvalidArgumentf("floor must be between 1 and %d", b.totalFloors)
	}
	return models.FloorLayout{
		Floor: floor,
		SideA: models.RoomSide{
			Upper: roomNumbers(floor, sideAUpperOffsets),
			Lower: roomNumbers(floor, sideALowerOffsets),
		},
		SideB: models.RoomSide{
			Upper: roomNumbers(floor, sideBUpperOffsets),
			Lower: roomNumbers(floor, sideBLowerOffsets),
		},
	}, nil
}

// Floors returns the layout of every floor, ground up
func (b *BuildingLayout) Floors() []models.FloorLayout {
	layouts := make([]models.FloorLayout, 0, b.totalFloors)
	for f := 1; f <= b.totalFloors; f++ {
		layout, _ := b.Floor(f)
		layouts = append(layouts, layout)
	}
	return layouts
}

// FloorOf returns the floor a room number belongs to, or 0 when the number is not on the grid
func (b *BuildingLayout) FloorOf(room string) int {
	n, err := strconv.Atoi(room)
	if err != nil {
		return 0
	}
	floor, offset := n/100, n%100
	if floor < 1 || floor > b.totalFloors || offset < 1 || offset > RoomsPerFloor {
		return 0
	}
	return floor
}

func roomNumbers(floor int, offsets []int) []int {
	rooms := make([]int, len(offsets))
	for i, off := range offsets {
		rooms[i] = floor*100 + off
	}
	return rooms
}
