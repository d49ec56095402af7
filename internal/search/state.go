package search

// State is a step of the submission lifecycle:
// Idle -> Querying -> Selecting -> Presenting -> Idle.
// A failed submission goes straight back to Idle.
type State string

const (
	StateIdle       State = "idle"
	StateQuerying   State = "querying"
	StateSelecting  State = "selecting"
	StatePresenting State = "presenting"
)

// Form is what the frontend submits. Latitude and Longitude are nil when
// the field was left empty.
type Form struct {
	LocationName      string   `json:"locationName"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	StartDate         string   `json:"startDate"` // YYYY-MM-DD
	EndDate           string   `json:"endDate"`   // YYYY-MM-DD
	CloudCoverCeiling float64  `json:"cloudCoverCeiling,omitempty"` // 0 uses the configured ceiling
}
