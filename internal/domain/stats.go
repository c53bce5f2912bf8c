package domain

// SearchResult is one memory hit returned by the gateway's search endpoint.
type SearchResult struct {
	Date     string `json:"Date"`
	Time     string `json:"Time"`
	Feedback string `json:"Feedback"`
}

// SearchResponse is the tagged union the search endpoint returns. Exactly
// one branch is meaningful; precedence is Error > Results > Message.
type SearchResponse struct {
	Error   bool           `json:"error"`
	Message string         `json:"message"`
	Results []SearchResult `json:"results"`
}

// OverallStats summarizes capture activity for the dashboard view.
type OverallStats struct {
	TotalCaptures int    `json:"totalCaptures"`
	TotalDays     int    `json:"totalDays"`
	LastCapture   string `json:"lastCapture"`
}

// ObjectStat counts sightings of one detected object class.
type ObjectStat struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FaceRecord describes one registered face and its sighting history.
type FaceRecord struct {
	Name      string `json:"name"`
	SeenCount int    `json:"seenCount"`
	LastSeen  string `json:"lastSeen"`
}

// LocationEntry is one point on the user's movement timeline.
type LocationEntry struct {
	Date     string          `json:"id_date"`
	Time     string          `json:"id_time"`
	Location LocationDetails `json:"location"`
}

type LocationDetails struct {
	Area             string `json:"area"`
	FormattedAddress string `json:"formatted_address"`
}
