// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

// Movie represents TMDB movie metadata.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"` // "2024-03-01"
	PosterPath  string  `json:"poster_path"`  // "/abc123.jpg"
	Adult       bool    `json:"adult"`
	Genres      []Genre `json:"genres"`
	Credits     Credits `json:"credits"`
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Credits holds the crew list returned by append_to_response=credits.
type Credits struct {
	Crew []CrewMember `json:"crew"`
}

// CrewMember is one entry of a movie's crew.
type CrewMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Director returns the first crew member credited as director.
func (m *Movie) Director() (name string, id int64, ok bool) {
	for _, c := range m.Credits.Crew {
		if c.Job == "Director" {
			return c.Name, c.ID, true
		}
	}
	return "", 0, false
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original
func (m *Movie) PosterURL(size string) string {
	if m.PosterPath == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + m.PosterPath
}
