package domain

import "github.com/google/uuid"

// IndexDocument is the write unit for the search index. Every document
// type carries its own identity so the loader can issue keyed upserts.
type IndexDocument interface {
	// DocumentID returns the index document identifier.
	DocumentID() string
}

// FilmDocument is the denormalized film work projection stored in the
// movies index. Alongside the structured sub-objects it carries
// flattened name-only arrays because the search layer matches on both.
type FilmDocument struct {
	ID          uuid.UUID `json:"id"`
	IMDBRating  float64   `json:"imdb_rating"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`

	Genres    []NameRef `json:"genres"`
	Directors []NameRef `json:"directors"`
	Actors    []NameRef `json:"actors"`
	Writers   []NameRef `json:"writers"`

	GenresNames    []string `json:"genres_names"`
	DirectorsNames []string `json:"directors_names"`
	ActorsNames    []string `json:"actors_names"`
	WritersNames   []string `json:"writers_names"`

	// Legacy flattened aliases. The read API still queries these
	// field names, so they are kept in step with the *_names arrays.
	Genre    []string `json:"genre"`
	Director []string `json:"director"`
}

// DocumentID implements IndexDocument.
func (d FilmDocument) DocumentID() string { return d.ID.String() }

// GenreDocument is the genre projection stored in the genres index.
type GenreDocument struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DocumentID implements IndexDocument.
func (d GenreDocument) DocumentID() string { return d.ID.String() }

// PersonDocument is the person projection stored in the persons index:
// the person's name plus every film they are credited on with the
// roles held on that film.
type PersonDocument struct {
	ID       uuid.UUID    `json:"id"`
	FullName string       `json:"fullname"`
	Films    []PersonFilm `json:"films"`
}

// DocumentID implements IndexDocument.
func (d PersonDocument) DocumentID() string { return d.ID.String() }
