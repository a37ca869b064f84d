package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SettingsKey is the key of the singleton settings document
const SettingsKey = "main"

// Image list limits per gallery
const (
	MaxRoomImages      = 4
	MaxCarouselImages  = 5
	MaxAmenitiesImages = 6
	MaxCampusImages    = 4
)

// WeekDays lists menu days in display order
var WeekDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// TrialStaySettings configures the paid trial-night offer
type TrialStaySettings struct {
	Enabled     bool    `json:"enabled"`
	Price       float64 `json:"price"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

// RoomSettings is the marketing card for one room category
type RoomSettings struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Available   bool     `json:"available"`
	Enabled     bool     `json:"enabled"`
}

// DayMenu is one day of the mess menu
type DayMenu struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Special   bool   `json:"special"`
}

// SiteSettings is the singleton site content document
type SiteSettings struct {
	SettingsKey     string                         `json:"settingsKey"`
	TrialStay       TrialStaySettings              `json:"trialStay"`
	Rooms           map[RoomCategory]*RoomSettings `json:"rooms"`
	CarouselImages  []string                       `json:"carouselImages"`
	AboutImage      string                         `json:"aboutImage"`
	AmenitiesImages []string                       `json:"amenitiesImages"`
	CampusImages    []string                       `json:"campusImages"`
	WeeklyMenu      map[string]*DayMenu            `json:"weeklyMenu"`
	UpdatedAt       time.Time                      `json:"updatedAt"`
}

// Value implements driver.Valuer so the document is stored as JSONB
func (s SiteSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *SiteSettings) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported settings source type %T", src)
	}
	return json.Unmarshal(data, s)
}

// DefaultSiteSettings returns the document created on first read
func DefaultSiteSettings() SiteSettings {
	room := func(name string, price float64, description string) *RoomSettings {
		return &RoomSettings{
			Name:        name,
			Price:       price,
			Description: description,
			Images:      []string{"assets/room-1.png"},
			Available:   true,
			Enabled:     true,
		}
	}
	return SiteSettings{
		SettingsKey: SettingsKey,
		TrialStay: TrialStaySettings{
			Enabled:     false,
			Price:       500,
			Title:       "Try Before You Stay",
			Description: "Book a stay for just ₹500/night! Explore Kota, we will help you with admission. If you don't like our hostel, we will help you find another. Free pickup from station!",
		},
		Rooms: map[RoomCategory]*RoomSettings{
			RoomCategorySingle: room("Single Room", 13000,
				"Your private sanctuary for focused NEET preparation. This comfortable single room comes with all essentials for a productive study environment."),
			RoomCategorySingleBalcony: room("Single Room + Balcony", 14000,
				"Enjoy fresh air breaks between study sessions with your own private balcony. This premium single room includes all standard amenities plus a personal outdoor space."),
			RoomCategoryDouble: room("Double Room", 10000,
				"Share your journey with a like-minded future doctor. This spacious double room offers two comfortable beds, individual study desks, and all essential amenities."),
			RoomCategoryDoubleBalcony: room("Double Room + Balcony", 11000,
				"Premium shared accommodation with a private balcony. Perfect for aspiring medical partners who want the best of both worlds."),
		},
		CarouselImages:  []string{},
		AmenitiesImages: []string{},
		CampusImages:    []string{},
		WeeklyMenu: map[string]*DayMenu{
			"monday":    {Breakfast: "Poha, Chai", Lunch: "Paneer Masala, Roti, Rice, Dal", Dinner: "Mix Veg, Roti, Rice"},
			"tuesday":   {Breakfast: "Aloo Paratha, Curd", Lunch: "Chole Bhature", Dinner: "Dal Fry, Roti, Rice"},
			"wednesday": {Breakfast: "Idli Sambar", Lunch: "Mix Veg, Rajma, Rice", Dinner: "Aloo Gobi, Dal, Roti"},
			"thursday":  {Breakfast: "Upma, Chai", Lunch: "Aloo Jeera, Dal Tadka, Rice", Dinner: "Paneer Butter, Roti, Rice"},
			"friday":    {Breakfast: "Puri Bhaji", Lunch: "Special Thali", Dinner: "Kadhi Pakora, Rice, Roti", Special: true},
			"saturday":  {Breakfast: "Dosa, Chutney", Lunch: "South Indian Thali", Dinner: "Dal Makhani, Jeera Rice"},
			"sunday":    {Breakfast: "Chole Bhature", Lunch: "Feast Day Special", Dinner: "Shahi Paneer, Biryani", Special: true},
		},
	}
}

// FillDefaults restores any section missing from a stored document
func (s *SiteSettings) FillDefaults() {
	def := DefaultSiteSettings()
	if s.SettingsKey == "" {
		s.SettingsKey = SettingsKey
	}
	if s.Rooms == nil {
		s.Rooms = map[RoomCategory]*RoomSettings{}
	}
	for _, c := range RoomCategories {
		if s.Rooms[c] == nil {
			s.Rooms[c] = def.Rooms[c]
		}
	}
	if s.WeeklyMenu == nil {
		s.WeeklyMenu = map[string]*DayMenu{}
	}
	for _, d := range WeekDays {
		if s.WeeklyMenu[d] == nil {
			s.WeeklyMenu[d] = def.WeeklyMenu[d]
		}
	}
	if s.CarouselImages == nil {
		s.CarouselImages = []string{}
	}
	if s.AmenitiesImages == nil {
		s.AmenitiesImages = []string{}
	}
	if s.CampusImages == nil {
		s.CampusImages = []string{}
	}
}

// TrialStayUpdate is a partial trial-stay edit
type TrialStayUpdate struct {
	Enabled     *bool    `json:"enabled"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
}

// RoomSettingsUpdate is a partial room card edit
type RoomSettingsUpdate struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price" binding:"omitempty,gte=0"`
	Description *string   `json:"description"`
	Images      *[]string `json:"images"`
	Available   *bool     `json:"available"`
	Enabled     *bool     `json:"enabled"`
}

// DayMenuUpdate is a partial menu edit
type DayMenuUpdate struct {
	Breakfast *string `json:"breakfast"`
	Lunch     *string `json:"lunch"`
	Dinner    *string `json:"dinner"`
	Special   *bool   `json:"special"`
}

// UpdateSettingsRequest is the partial-merge payload for site settings
type UpdateSettingsRequest struct {
	TrialStay  *TrialStayUpdate                     `json:"trialStay"`
	Rooms      map[RoomCategory]*RoomSettingsUpdate `json:"rooms"`
	WeeklyMenu map[string]*DayMenuUpdate            `json:"weeklyMenu"`
}

// Apply merges the set fields of req into s. Unknown categories and days are rejected.
func (s *SiteSettings) Apply(req UpdateSettingsRequest) error {
	if t := req.TrialStay; t != nil {
		if t.Enabled != nil {
			s.TrialStay.Enabled = *t.Enabled
		}
		if t.Price != nil {
			s.TrialStay.Price = *t.Price
		}
		if t.Title != nil {
			s.TrialStay.Title = *t.Title
		}
		if t.Description != nil {
			s.TrialStay.Description = *t.Description
		}
	}

	for category, r := range req.Rooms {
		room, ok := s.Rooms[category]
		if !ok || category == RoomCategoryNone {
			return fmt.Errorf("unknown room category: %q", category)
		}
		if r == nil {
			continue
		}
		if r.Name != nil {
			room.Name = *r.Name
		}
		if r.Price != nil {
			room.Price = *r.Price
		}
		if r.Description != nil {
			room.Description = *r.Description
		}
		if r.Images != nil {
			if len(*r.Images) > MaxRoomImages {
				return fmt.Errorf("maximum %d images allowed per room type", MaxRoomImages)
			}
			room.Images = append([]string{}, *r.Images...)
		}
		if r.Available != nil {
			room.Available = *r.Available
		}
		if r.Enabled != nil {
			room.Enabled = *r.Enabled
		}
	}

	for day, m := range req.WeeklyMenu {
		menu, ok := s.WeeklyMenu[day]
		if !ok {
			return fmt.Errorf("unknown menu day: %q", day)
		}
		if m == nil {
			continue
		}
		if m.Breakfast != nil {
			menu.Breakfast = *m.Breakfast
		}
		if m.Lunch != nil {
			menu.Lunch = *m.Lunch
		}
		if m.Dinner != nil {
			menu.Dinner = *m.Dinner
		}
		if m.Special != nil {
			menu.Special = *m.Special
		}
	}

	return nil
}

// ImageGallery names a settings image list that accepts uploads
type ImageGallery string

const (
	GalleryCarousel  ImageGallery = "carousel"
	GalleryAmenities ImageGallery = "amenities"
	GalleryCampus    ImageGallery = "campus"
)

// Limit returns the maximum number of images the gallery holds
func (g ImageGallery) Limit() int {
	switch g {
	case GalleryCarousel:
		return MaxCarouselImages
	case GalleryAmenities:
		return MaxAmenitiesImages
	case GalleryCampus:
		return MaxCampusImages
	}
	return 0
}

// Images returns a pointer to the gallery's image list in s
func (s *SiteSettings) Images(g ImageGallery) *[]string {
	switch g {
	case GalleryCarousel:
		return &s.CarouselImages
	case GalleryAmenities:
		return &s.AmenitiesImages
	case GalleryCampus:
		return &s.CampusImages
	}
	return nil
}
