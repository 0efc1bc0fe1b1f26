// Package domain contains the core business entities for cinesync:
// the relational content model (film works, genres, persons), the
// denormalized index documents derived from it, and the sync state
// that tracks how far each entity kind has been synchronized.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind identifies one of the synchronized entity kinds.
// The kind doubles as the relational table name in the content schema
// and as the watermark key in the sync state store.
type EntityKind string

const (
	// KindFilmWork is the primary (aggregate root) kind.
	KindFilmWork EntityKind = "film_work"

	// KindGenre is a secondary kind linked to film works via genre_film_work.
	KindGenre EntityKind = "genre"

	// KindPerson is a secondary kind linked to film works via person_film_work.
	KindPerson EntityKind = "person"
)

// Kinds returns all entity kinds in sync order: the primary kind
// first, then the dependent kinds. Each kind owns an independent
// watermark, so the order is a convention rather than a correctness
// requirement.
func Kinds() []EntityKind {
	return []EntityKind{KindFilmWork, KindGenre, KindPerson}
}

// Primary reports whether changes to this kind are applied directly,
// as opposed to cascading through a link table to film works.
func (k EntityKind) Primary() bool {
	return k == KindFilmWork
}

// Role tags a person's involvement in a film work.
type Role string

const (
	RoleDirector Role = "director"
	RoleActor    Role = "actor"
	RoleWriter   Role = "writer"
)

// NameRef is an {id, name} pair embedded in enriched rows and index
// documents for genres and credited persons.
type NameRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// FilmWork is a fully enriched film row: the scalar columns joined
// with its genre links and its role-tagged person links.
type FilmWork struct {
	ID          uuid.UUID
	Title       string
	Description string
	Rating      float64
	Type        string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Genres    []NameRef
	Directors []NameRef
	Actors    []NameRef
	Writers   []NameRef
}

// Genre is a secondary entity: a genre row from the content schema.
type Genre struct {
	ID        uuid.UUID
	Name      string
	UpdatedAt time.Time
}

// PersonFilm records one film a person worked on together with every
// role they held on that specific film.
type PersonFilm struct {
	FilmID uuid.UUID `json:"id"`
	Roles  []Role    `json:"roles"`
}

// Person is a secondary entity enriched with its filmography.
type Person struct {
	ID        uuid.UUID
	FullName  string
	UpdatedAt time.Time
	Films     []PersonFilm
}
