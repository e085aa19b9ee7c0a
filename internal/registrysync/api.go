package registrysync

// facilityPage models one page of GET {base}/facilities.
type facilityPage struct {
	Total int            `json:"total"`
	Items []facilityItem `json:"items"`
}

type facilityItem struct {
	ID       string `json:"id"`
	SiteID   string `json:"siteId"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
	Hours    struct {
		Opens  string `json:"opens"`
		Closes string `json:"closes"`
	} `json:"operatingHours"`
}

// buildingPayload models GET {base}/buildings/{id}.
type buildingPayload struct {
	ID     string     `json:"id"`
	SiteID string     `json:"siteId"`
	Name   string     `json:"name"`
	Spots  []spotItem `json:"spots"`
}

type spotItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// Floor is optional upstream; labels such as "B2-017" carry it.
	Floor string `json:"floor"`
}
