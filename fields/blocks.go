package fields

// Feature is one "why join" selling point.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// QAItem is one entry in the questions section.
type QAItem struct {
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

// EarningsRow is one row of the income opportunities table, keyed by the
// weekly task-volume bands the public page renders.
type EarningsRow struct {
	JobType   string `json:"jobType"`
	Band1To2  string `json:"1-2"`
	Band3To5  string `json:"3-5"`
	Band5Plus string `json:"5+"`
}

// Step is one entry in the "how to earn" walkthrough.
type Step struct {
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// EarningsMatrix holds the earning potential figures per period and
// task-volume band ("1-2", "3-5", "5+").
type EarningsMatrix struct {
	Weekly  map[string]string `json:"weekly"`
	Monthly map[string]string `json:"monthly"`
	Yearly  map[string]string `json:"yearly"`
}
