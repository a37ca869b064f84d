package models

import (
	"fmt"
	"strings"
)

// RoomCategory is the bed/balcony configuration of a room
type RoomCategory string

const (
	RoomCategoryNone          RoomCategory = ""
	RoomCategorySingle        RoomCategory = "single"
	RoomCategorySingleBalcony RoomCategory = "single_balcony"
	RoomCategoryDouble        RoomCategory = "double"
	RoomCategoryDoubleBalcony RoomCategory = "double_balcony"
)

// RoomCategories lists the bookable categories in display order
var RoomCategories = []RoomCategory{
	RoomCategorySingle,
	RoomCategorySingleBalcony,
	RoomCategoryDouble,
	RoomCategoryDoubleBalcony,
}

// ParseRoomCategory validates a raw category string. The empty string is accepted.
func ParseRoomCategory(s string) (RoomCategory, error) {
	switch RoomCategory(s) {
	case RoomCategoryNone, RoomCategorySingle, RoomCategorySingleBalcony, RoomCategoryDouble, RoomCategoryDoubleBalcony:
		return RoomCategory(s), nil
	default:
		return "", fmt.Errorf("invalid room category: %q", s)
	}
}

// IsDouble reports whether the category is a two-bed room
func (c RoomCategory) IsDouble() bool {
	return strings.Contains(string(c), "double")
}

// Beds returns the number of occupants the category holds, or 0 when unknown
func (c RoomCategory) Beds() int {
	switch c {
	case RoomCategorySingle, RoomCategorySingleBalcony:
		return 1
	case RoomCategoryDouble, RoomCategoryDoubleBalcony:
		return 2
	}
	return 0
}

// RoomStatus is the derived occupancy state of a room
type RoomStatus string

const (
	RoomStatusAvailable RoomStatus = "available"
	RoomStatusPartial   RoomStatus = "partial"
	RoomStatusOccupied  RoomStatus = "occupied"
)

// RoomSide is one half of a floor split into upper and lower wings
type RoomSide struct {
	Upper []int `json:"upper"`
	Lower []int `json:"lower"`
}

// FloorLayout partitions a floor's rooms. SideA faces the lift, SideB is opposite.
type FloorLayout struct {
	Floor int      `json:"floor"`
	SideA RoomSide `json:"sideA"`
	SideB RoomSide `json:"sideB"`
}

// Rooms returns every room number on the floor in layout order
func (l FloorLayout) Rooms() []int {
	rooms := make([]int, 0, len(l.SideA.Upper)+len(l.SideA.Lower)+len(l.SideB.Upper)+len(l.SideB.Lower))
	rooms = append(rooms, l.SideA.Upper...)
	rooms = append(rooms, l.SideA.Lower...)
	rooms = append(rooms, l.SideB.Upper...)
	rooms = append(rooms, l.SideB.Lower...)
	return rooms
}

// OccupantSummary is the roster slice shown on a room card
type OccupantSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Coaching string `json:"coaching"`
	PhotoURL string `json:"photoUrl"`
}

// RoomOccupancy is the derived state of a single room
type RoomOccupancy struct {
	Status    RoomStatus        `json:"status"`
	Category  RoomCategory      `json:"category"`
	Occupants []OccupantSummary `json:"occupants"`
}

// FloorOccupancy is the occupancy view of one floor
type FloorOccupancy struct {
	Layout FloorLayout              `json:"layout"`
	Rooms  map[string]RoomOccupancy `json:"rooms"`
}

// OccupancyStats aggregates whole-building occupancy
type OccupancyStats struct {
	TotalRooms     int `json:"totalRooms"`
	OccupiedRooms  int `json:"occupiedRooms"`
	AvailableRooms int `json:"availableRooms"`
	OccupancyRate  int `json:"occupancyRate"`
}

// BuildingOccupancy is the whole-building occupancy view
type BuildingOccupancy struct {
	Rooms map[string]RoomOccupancy `json:"rooms"`
	Stats OccupancyStats           `json:"stats"`
}

// CategoryAvailability is the public bed count for one room category
type CategoryAvailability struct {
	Total     int `json:"total"`
	Occupied  int `json:"occupied"`
	Available int `json:"available"`
}

// Availability is the public occupancy summary shown on the marketing site
type Availability struct {
	OccupancyStats
	RoomTypes map[RoomCategory]CategoryAvailability `json:"roomTypes"`
}
