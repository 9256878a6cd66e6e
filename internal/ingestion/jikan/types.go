package jikan

// ============================================
// API RESPONSE STRUCTURES
// ============================================

// SeasonPage is one page of /seasons/now.
type SeasonPage struct {
	Pagination Pagination `json:"pagination"`
	Data       []Anime    `json:"data"`
}

// Pagination contains paging metadata
type Pagination struct {
	CurrentPage     int        `json:"current_page"`
	LastVisiblePage int        `json:"last_visible_page"`
	HasNextPage     bool       `json:"has_next_page"`
	Items           PageCounts `json:"items"`
}

type PageCounts struct {
	Count   int `json:"count"`
	Total   int `json:"total"`
	PerPage int `json:"per_page"`
}

// Anime is a raw catalog record. Optional upstream fields are pointers so
// absence and zero values stay distinguishable.
type Anime struct {
	MalID     int       `json:"mal_id"`
	Titles    []Title   `json:"titles"`
	Images    Images    `json:"images"`
	Episodes  *int      `json:"episodes"`
	Status    string    `json:"status"`
	Airing    bool      `json:"airing"`
	Aired     Aired     `json:"aired"`
	Broadcast Broadcast `json:"broadcast"`
}

// Title is one localized title; Type is "Default", "English", "Japanese", ...
type Title struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

type Images struct {
	JPG  ImageSet `json:"jpg"`
	WebP ImageSet `json:"webp"`
}

type ImageSet struct {
	ImageURL      string `json:"image_url"`
	SmallImageURL string `json:"small_image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type Aired struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// Broadcast fields are free text; Day is e.g. "Saturdays".
type Broadcast struct {
	Day      *string `json:"day"`
	Time     *string `json:"time"`
	Timezone *string `json:"timezone"`
	String   *string `json:"string"`
}
