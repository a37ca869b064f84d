package services

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mkheight/hostel-backend/internal/models"
)

// OccupantLister supplies the active, room-assigned roster
type OccupantLister interface {
	ListAssigned(ctx context.Context) ([]models.Occupant, error)
}

// OccupancyService projects the roster onto the building layout
type OccupancyService struct {
	layout           *BuildingLayout
	occupants        OccupantLister
	roomsPerCategory int
}

// NewOccupancyService creates a new occupancy service
func NewOccupancyService(layout *BuildingLayout, occupants OccupantLister, roomsPerCategory int) *OccupancyService {
	return &OccupancyService{
		layout:           layout,
		occupants:        occupants,
		roomsPerCategory: roomsPerCategory,
	}
}

// Layout returns the building layout used by the projector
func (s *OccupancyService) Layout() *BuildingLayout {
	return s.layout
}

// Floor returns the occupancy of every room on one floor
func (s *OccupancyService) Floor(ctx context.Context, floor int) (*models.FloorOccupancy, error) {
	layout, err := s.layout.Floor(floor)
	if err != nil {
		return nil, err
	}

	occupants, err := s.occupants.ListAssigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupants: %w", err)
	}

	rooms := make([]string, 0, RoomsPerFloor)
	for _, n := range layout.Rooms() {
		rooms = append(rooms, strconv.Itoa(n))
	}

	return &models.FloorOccupancy{
		Layout: layout,
		Rooms:  ProjectRooms(occupants, rooms),
	}, nil
}

// Building returns the occupancy of the whole building with aggregate counts.
// Rooms holding occupants but missing from the grid are included in the map.
func (s *OccupancyService) Building(ctx context.Context) (*models.BuildingOccupancy, error) {
	occupants, err := s.occupants.ListAssigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupants: %w", err)
	}

	rooms := make([]string, 0, s.layout.TotalRooms())
	seen := make(map[string]bool, s.layout.TotalRooms())
	for _, floor := range s.layout.Floors() {
		for _, n := range floor.Rooms() {
			room := strconv.Itoa(n)
			rooms = append(rooms, room)
			seen[room] = true
		}
	}
	for _, o := range occupants {
		if room := o.RoomNumber.String; room != "" && !seen[room] {
			rooms = append(rooms, room)
			seen[room] = true
		}
	}

	occupancy := ProjectRooms(occupants, rooms)

	return &models.BuildingOccupancy{
		Rooms: occupancy,
		Stats: BuildingStats(occupancy, s.layout.TotalRooms()),
	}, nil
}

// Availability returns the public occupancy summary with bed counts per room category
func (s *OccupancyService) Availability(ctx context.Context) (*models.Availability, error) {
	occupants, err := s.occupants.ListAssigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupants: %w", err)
	}

	occupiedRooms := make(map[string]bool)
	counts := make(map[models.RoomCategory]int)
	for _, o := range occupants {
		occupiedRooms[o.RoomNumber.String] = true
		counts[o.RoomType]++
	}

	totalRooms := s.layout.TotalRooms()
	result := &models.Availability{
		OccupancyStats: occupancyStats(len(occupiedRooms), totalRooms),
		RoomTypes:      make(map[models.RoomCategory]models.CategoryAvailability, len(models.RoomCategories)),
	}
	for _, c := range models.RoomCategories {
		available := s.roomsPerCategory - counts[c]
		if available < 0 {
			available = 0
		}
		result.RoomTypes[c] = models.CategoryAvailability{
			Total:     s.roomsPerCategory,
			Occupied:  counts[c],
			Available: available,
		}
	}
	return result, nil
}

// ProjectRooms groups active, assigned occupants into the given rooms.
// Occupants of rooms outside the list are ignored.
func ProjectRooms(occupants []models.Occupant, rooms []string) map[string]models.RoomOccupancy {
	byRoom := make(map[string][]models.Occupant, len(rooms))
	wanted := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		wanted[r] = true
	}
	for _, o := range occupants {
		if o.Status != models.OccupantStatusActive || !o.RoomNumber.Valid || o.RoomNumber.String == "" {
			continue
		}
		if wanted[o.RoomNumber.String] {
			byRoom[o.RoomNumber.String] = append(byRoom[o.RoomNumber.String], o)
		}
	}

	result := make(map[string]models.RoomOccupancy, len(rooms))
	for _, r := range rooms {
		result[r] = roomOccupancy(byRoom[r])
	}
	return result
}

func roomOccupancy(occupants []models.Occupant) models.RoomOccupancy {
	if len(occupants) == 0 {
		return models.RoomOccupancy{
			Status:    models.RoomStatusAvailable,
			Category:  models.RoomCategoryNone,
			Occupants: []models.OccupantSummary{},
		}
	}

	category := occupants[0].RoomType
	status := models.RoomStatusOccupied
	if category.IsDouble() && len(occupants) == 1 {
		status = models.RoomStatusPartial
	}

	summaries := make([]models.OccupantSummary, len(occupants))
	for i := range occupants {
		summaries[i] = occupants[i].Summary()
	}

	return models.RoomOccupancy{
		Status:    status,
		Category:  category,
		Occupants: summaries,
	}
}

// BuildingStats aggregates a room map against the building capacity
func BuildingStats(rooms map[string]models.RoomOccupancy, totalRooms int) models.OccupancyStats {
	occupied := 0
	for _, r := range rooms {
		if len(r.Occupants) > 0 {
			occupied++
		}
	}
	return occupancyStats(occupied, totalRooms)
}

func occupancyStats(occupied, totalRooms int) models.OccupancyStats {
	rate := 0
	if totalRooms > 0 {
		rate = int(math.Round(float64(occupied) / float64(totalRooms) * 100))
	}
	return models.OccupancyStats{
		TotalRooms:     totalRooms,
		OccupiedRooms:  occupied,
		AvailableRooms: totalRooms - occupied,
		OccupancyRate:  rate,
	}
}
