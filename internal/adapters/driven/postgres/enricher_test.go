package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinevault/cinesync/internal/core/domain"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", placeholders(1, 1))
	assert.Equal(t, "$1, $2, $3", placeholders(3, 1))
	assert.Equal(t, "$3, $4", placeholders(2, 3))
}

func TestIDArgs(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	args := idArgs(ids)
	require.Len(t, args, 2)
	assert.Equal(t, ids[0], args[0])
	assert.Equal(t, ids[1], args[1])
}

func TestMergeFilmRelations_GroupsByRole(t *testing.T) {
	filmID := uuid.New()
	films := []domain.FilmWork{{ID: filmID, Title: "The Departure"}}

	director := uuid.New()
	actor := uuid.New()
	writer := uuid.New()
	persons := []personLink{
		{FilmID: filmID, Role: domain.RoleDirector, PersonID: director, Name: "Ada Doyle"},
		{FilmID: filmID, Role: domain.RoleActor, PersonID: actor, Name: "Ben Ito"},
		{FilmID: filmID, Role: domain.RoleWriter, PersonID: writer, Name: "Cleo Marsh"},
	}
	horror := domain.NameRef{ID: uuid.New(), Name: "Horror"}
	genres := []genreLink{{FilmID: filmID, Genre: horror}}

	mergeFilmRelations(films, persons, genres)

	film := films[0]
	assert.Equal(t, []domain.NameRef{{ID: director, Name: "Ada Doyle"}}, film.Directors)
	assert.Equal(t, []domain.NameRef{{ID: actor, Name: "Ben Ito"}}, film.Actors)
	assert.Equal(t, []domain.NameRef{{ID: writer, Name: "Cleo Marsh"}}, film.Writers)
	assert.Equal(t, []domain.NameRef{horror}, film.Genres)
}

func TestMergeFilmRelations_DeduplicatesCredits(t *testing.T) {
	filmID := uuid.New()
	films := []domain.FilmWork{{ID: filmID}}

	actor := uuid.New()
	persons := []personLink{
		{FilmID: filmID, Role: domain.RoleActor, PersonID: actor, Name: "Ben Ito"},
		{FilmID: filmID, Role: domain.RoleActor, PersonID: actor, Name: "Ben Ito"},
	}
	genre := domain.NameRef{ID: uuid.New(), Name: "Drama"}
	genres := []genreLink{
		{FilmID: filmID, Genre: genre},
		{FilmID: filmID, Genre: genre},
	}

	mergeFilmRelations(films, persons, genres)

	assert.Len(t, films[0].Actors, 1)
	assert.Len(t, films[0].Genres, 1)
}

func TestMergeFilmRelations_SamePersonTwoRoles(t *testing.T) {
	filmID := uuid.New()
	films := []domain.FilmWork{{ID: filmID}}

	person := uuid.New()
	persons := []personLink{
		{FilmID: filmID, Role: domain.RoleDirector, PersonID: person, Name: "Ada Doyle"},
		{FilmID: filmID, Role: domain.RoleWriter, PersonID: person, Name: "Ada Doyle"},
	}

	mergeFilmRelations(films, persons, nil)

	assert.Len(t, films[0].Directors, 1)
	assert.Len(t, films[0].Writers, 1)
	assert.Empty(t, films[0].Actors)
}

func TestMergeFilmRelations_SortsByName(t *testing.T) {
	filmID := uuid.New()
	films := []domain.FilmWork{{ID: filmID}}

	persons := []personLink{
		{FilmID: filmID, Role: domain.RoleActor, PersonID: uuid.New(), Name: "Zoe Park"},
		{FilmID: filmID, Role: domain.RoleActor, PersonID: uuid.New(), Name: "Al Reyes"},
		{FilmID: filmID, Role: domain.RoleActor, PersonID: uuid.New(), Name: "Mia Chen"},
	}

	mergeFilmRelations(films, persons, nil)

	got := make([]string, 0, 3)
	for _, a := range films[0].Actors {
		got = append(got, a.Name)
	}
	assert.Equal(t, []string{"Al Reyes", "Mia Chen", "Zoe Park"}, got)
}

func TestMergeFilmRelations_IgnoresUnknownFilm(t *testing.T) {
	films := []domain.FilmWork{{ID: uuid.New()}}

	persons := []personLink{
		{FilmID: uuid.New(), Role: domain.RoleActor, PersonID: uuid.New(), Name: "Stray"},
	}
	genres := []genreLink{
		{FilmID: uuid.New(), Genre: domain.NameRef{ID: uuid.New(), Name: "Stray"}},
	}

	mergeFilmRelations(films, persons, genres)

	assert.Empty(t, films[0].Actors)
	assert.Empty(t, films[0].Genres)
}

func TestMergeFilmographies_CollapsesRoles(t *testing.T) {
	personID := uuid.New()
	persons := []domain.Person{{ID: personID, FullName: "Ada Doyle"}}

	filmA := uuid.New()
	filmB := uuid.New()
	credits := []personCredit{
		{PersonID: personID, FilmID: filmA, Role: domain.RoleWriter},
		{PersonID: personID, FilmID: filmA, Role: domain.RoleDirector},
		{PersonID: personID, FilmID: filmB, Role: domain.RoleActor},
	}

	mergeFilmographies(persons, credits)

	require.Len(t, persons[0].Films, 2)
	byFilm := map[uuid.UUID][]domain.Role{}
	for _, f := range persons[0].Films {
		byFilm[f.FilmID] = f.Roles
	}
	// Roles on the same film collapse into one sorted set.
	assert.Equal(t, []domain.Role{domain.RoleDirector, domain.RoleWriter}, byFilm[filmA])
	assert.Equal(t, []domain.Role{domain.RoleActor}, byFilm[filmB])
}

func TestMergeFilmographies_NoCredits(t *testing.T) {
	persons := []domain.Person{{ID: uuid.New(), FullName: "Uncredited"}}

	mergeFilmographies(persons, nil)

	require.NotNil(t, persons[0].Films)
	assert.Empty(t, persons[0].Films)
}

func TestMergeFilmographies_Deterministic(t *testing.T) {
	personID := uuid.New()
	filmIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	var credits []personCredit
	for _, id := range filmIDs {
		credits = append(credits, personCredit{PersonID: personID, FilmID: id, Role: domain.RoleActor})
	}

	first := []domain.Person{{ID: personID}}
	second := []domain.Person{{ID: personID}}
	mergeFilmographies(first, credits)
	// Reversed input order must not change the output.
	reversed := []personCredit{credits[2], credits[1], credits[0]}
	mergeFilmographies(second, reversed)

	assert.Equal(t, first[0].Films, second[0].Films)
}
