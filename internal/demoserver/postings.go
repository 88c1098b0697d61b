package demoserver

// Posting is one fixture job page.
type Posting struct {
	Path        string
	Title       string
	Company     string
	Location    string
	Description string

	// AgeDays sets Last-Modified to now minus this many days. Nil sends no
	// Last-Modified header.
	AgeDays *int

	// Status overrides the 200 response when non-zero.
	Status int

	// RedirectTo answers with a 302 to this path instead of a page.
	RedirectTo string
}

func days(n int) *int { return &n }

// DefaultPostings covers every freshness bucket and both inactivity cases.
func DefaultPostings() []Posting {
	return []Posting{
		{
			Path:        "/jobs/fresh",
			Title:       "Senior Go Engineer",
			Company:     "Northwind Logistics",
			Location:    "Remote (EU)",
			Description: "Own the routing service that plans thousands of deliveries a day.",
			AgeDays:     days(10),
		},
		{
			Path:        "/jobs/aging",
			Title:       "Site Reliability Engineer",
			Company:     "Contoso Health",
			Location:    "Berlin",
			Description: "Keep the patient portal fast and available across three regions.",
			AgeDays:     days(60),
		},
		{
			Path:        "/jobs/stale",
			Title:       "Data Platform Lead",
			Company:     "Fabrikam Retail",
			Location:    "London",
			Description: "Build the next warehouse. This listing has not changed in months.",
			AgeDays:     days(120),
		},
		{
			Path:        "/jobs/undated",
			Title:       "Frontend Developer",
			Company:     "Tailspin Toys",
			Location:    "Lisbon",
			Description: "Served without a Last-Modified header.",
		},
		{
			Path:        "/jobs/closed",
			Title:       "Product Designer",
			Company:     "Litware",
			Location:    "Remote",
			Description: "This position is no longer accepting applications.",
			AgeDays:     days(5),
			Status:      404,
		},
		{
			Path:        "/jobs/moved",
			Title:       "Backend Engineer (moved)",
			Company:     "Northwind Logistics",
			Description: "Redirects to the fresh posting.",
			RedirectTo:  "/jobs/fresh",
		},
	}
}
