package request

import (
	"encoding/xml"
	"fmt"

	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/services/publish"
)

// Slot is the slot document the game sends to startPublish and publish
type Slot struct {
	XMLName     xml.Name  `xml:"slot"`
	Type        string    `xml:"type,attr"`
	ID          int       `xml:"id"`
	Name        string    `xml:"name"`
	Description string    `xml:"description"`
	Icon        string    `xml:"icon"`
	RootLevel   string    `xml:"rootLevel"`
	Resources   []string  `xml:"resource"`
	Location    *Location `xml:"location"`
	MinPlayers  int       `xml:"minPlayers"`
	MaxPlayers  int       `xml:"maxPlayers"`
}

// Location is a position on the earth map
type Location struct {
	X int `xml:"x"`
	Y int `xml:"y"`
}

// ParseSlot decodes a slot document into a publish draft
func ParseSlot(body []byte) (*publish.Draft, error) {
	var s Slot
	if err := xml.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("parse slot: %w", err)
	}

	draft := &publish.Draft{
		Slot: model.Slot{
			ID:          model.SlotID(s.ID),
			Name:        s.Name,
			Description: s.Description,
			IconHash:    s.Icon,
			RootLevel:   s.RootLevel,
			Resources:   s.Resources,
			MinPlayers:  s.MinPlayers,
			MaxPlayers:  s.MaxPlayers,
		},
	}
	if s.Location != nil {
		draft.HasLocation = true
		draft.Slot.Location = model.Location{X: s.Location.X, Y: s.Location.Y}
	}
	return draft, nil
}

// ResourceList is a list of resource hashes
type ResourceList struct {
	XMLName   xml.Name `xml:"resources"`
	Resources []string `xml:"resource"`
}

// ParseResourceList decodes a resource list document
func ParseResourceList(body []byte) ([]string, error) {
	var list ResourceList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parse resource list: %w", err)
	}
	return list.Resources, nil
}
