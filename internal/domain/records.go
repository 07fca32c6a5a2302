package domain

import "time"

// Weather is one day of forecast for a location.
type Weather struct {
	ID         int64  `json:"id,omitempty"`
	Forecast   string `json:"forecast"`
	Time       string `json:"time"`
	CreatedAt  int64  `json:"created_at"`
	LocationID int64  `json:"location_id,omitempty"`
}

func (w Weather) FetchedAt() time.Time { return time.UnixMilli(w.CreatedAt) }

func (w Weather) Values() []any {
	return []any{w.Forecast, w.Time, w.CreatedAt, w.LocationID}
}

func (w Weather) WithOwner(locationID int64, fetchedAt time.Time) Weather {
	w.LocationID = locationID
	w.CreatedAt = fetchedAt.UnixMilli()
	return w
}

func (w Weather) WithID(id int64) Weather {
	w.ID = id
	return w
}

func ScanWeather(s RowScanner) (Weather, error) {
	var w Weather
	err := s.Scan(&w.ID, &w.Forecast, &w.Time, &w.CreatedAt, &w.LocationID)
	return w, err
}

// Event is an upcoming event near a location.
type Event struct {
	ID         int64  `json:"id,omitempty"`
	Link       string `json:"link"`
	Name       string `json:"name"`
	EventDate  string `json:"event_date"`
	Summary    string `json:"summary"`
	CreatedAt  int64  `json:"created_at"`
	LocationID int64  `json:"location_id,omitempty"`
}

func (e Event) FetchedAt() time.Time { return time.UnixMilli(e.CreatedAt) }

func (e Event) Values() []any {
	return []any{e.Link, e.Name, e.EventDate, e.Summary, e.CreatedAt, e.LocationID}
}

func (e Event) WithOwner(locationID int64, fetchedAt time.Time) Event {
	e.LocationID = locationID
	e.CreatedAt = fetchedAt.UnixMilli()
	return e
}

func (e Event) WithID(id int64) Event {
	e.ID = id
	return e
}

func ScanEvent(s RowScanner) (Event, error) {
	var e Event
	err := s.Scan(&e.ID, &e.Link, &e.Name, &e.EventDate, &e.Summary, &e.CreatedAt, &e.LocationID)
	return e, err
}

// Movie is a title currently in theaters.
type Movie struct {
	ID           int64   `json:"id,omitempty"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ImageURL     string  `json:"image_url"`
	ReleasedOn   string  `json:"released_on"`
	TotalVotes   int64   `json:"total_votes"`
	AverageVotes float64 `json:"average_votes"`
	Popularity   float64 `json:"popularity"`
	CreatedAt    int64   `json:"created_at"`
	LocationID   int64   `json:"location_id,omitempty"`
}

func (m Movie) FetchedAt() time.Time { return time.UnixMilli(m.CreatedAt) }

func (m Movie) Values() []any {
	return []any{m.Title, m.Overview, m.ImageURL, m.ReleasedOn, m.TotalVotes, m.AverageVotes, m.Popularity, m.CreatedAt, m.LocationID}
}

func (m Movie) WithOwner(locationID int64, fetchedAt time.Time) Movie {
	m.LocationID = locationID
	m.CreatedAt = fetchedAt.UnixMilli()
	return m
}

func (m Movie) WithID(id int64) Movie {
	m.ID = id
	return m
}

func ScanMovie(s RowScanner) (Movie, error) {
	var m Movie
	err := s.Scan(&m.ID, &m.Title, &m.Overview, &m.ImageURL, &m.ReleasedOn, &m.TotalVotes, &m.AverageVotes, &m.Popularity, &m.CreatedAt, &m.LocationID)
	return m, err
}

// BusinessReview is a rated business near a location.
type BusinessReview struct {
	ID         int64   `json:"id,omitempty"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	Price      string  `json:"price"`
	URL        string  `json:"url"`
	ImageURL   string  `json:"image_url"`
	CreatedAt  int64   `json:"created_at"`
	LocationID int64   `json:"location_id,omitempty"`
}

func (b BusinessReview) FetchedAt() time.Time { return time.UnixMilli(b.CreatedAt) }

func (b BusinessReview) Values() []any {
	return []any{b.Name, b.Rating, b.Price, b.URL, b.ImageURL, b.CreatedAt, b.LocationID}
}

func (b BusinessReview) WithOwner(locationID int64, fetchedAt time.Time) BusinessReview {
	b.LocationID = locationID
	b.CreatedAt = fetchedAt.UnixMilli()
	return b
}

func (b BusinessReview) WithID(id int64) BusinessReview {
	b.ID = id
	return b
}

func ScanBusinessReview(s RowScanner) (BusinessReview, error) {
	var b BusinessReview
	err := s.Scan(&b.ID, &b.Name, &b.Rating, &b.Price, &b.URL, &b.ImageURL, &b.CreatedAt, &b.LocationID)
	return b, err
}
