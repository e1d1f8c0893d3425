package response

import (
	"encoding/xml"

	"github.com/mcoot/lighthouse/internal/model"
)

// LoginResult answers a successful game login
type LoginResult struct {
	XMLName    xml.Name `xml:"loginResult"`
	AuthTicket string   `xml:"authTicket"`
	LbpEnvVer  string   `xml:"lbpEnvVer"`
}

// NewLoginResult builds the login result carrying the MM_AUTH ticket
func NewLoginResult(secret, serverName string) LoginResult {
	return LoginResult{
		AuthTicket: "MM_AUTH=" + secret,
		LbpEnvVer:  serverName,
	}
}

// Slot is a published slot as the game reads it
type Slot struct {
	XMLName        xml.Name `xml:"slot"`
	Type           string   `xml:"type,attr"`
	ID             int      `xml:"id"`
	Creator        string   `xml:"npHandle,omitempty"`
	Name           string   `xml:"name"`
	Description    string   `xml:"description"`
	Icon           string   `xml:"icon"`
	RootLevel      string   `xml:"rootLevel"`
	Resources      []string `xml:"resource"`
	Location       Location `xml:"location"`
	MinPlayers     int      `xml:"minPlayers"`
	MaxPlayers     int      `xml:"maxPlayers"`
	FirstPublished int64    `xml:"firstPublished"`
	LastUpdated    int64    `xml:"lastUpdated"`
}

// Location is a position on the earth map
type Location struct {
	X int `xml:"x"`
	Y int `xml:"y"`
}

// SlotFromModel converts a model.Slot
func SlotFromModel(s *model.Slot, creator string) Slot {
	return Slot{
		Type:           "user",
		ID:             int(s.ID),
		Creator:        creator,
		Name:           s.Name,
		Description:    s.Description,
		Icon:           s.IconHash,
		RootLevel:      s.RootLevel,
		Resources:      s.Resources,
		Location:       Location{X: s.Location.X, Y: s.Location.Y},
		MinPlayers:     s.MinPlayers,
		MaxPlayers:     s.MaxPlayers,
		FirstPublished: s.FirstUpload.UnixMilli(),
		LastUpdated:    s.LastUpdated.UnixMilli(),
	}
}

// MissingResources tells the game which resources to upload before
// publishing
type MissingResources struct {
	XMLName   xml.Name `xml:"slot"`
	Type      string   `xml:"type,attr"`
	Resources []string `xml:"resource"`
}

// NewMissingResources wraps hashes for startPublish
func NewMissingResources(hashes []string) MissingResources {
	return MissingResources{Type: "user", Resources: hashes}
}

// ResourceList is a list of resource hashes
type ResourceList struct {
	XMLName   xml.Name `xml:"resources"`
	Resources []string `xml:"resource"`
}
