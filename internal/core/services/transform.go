package services

import (
	"github.com/cinevault/cinesync/internal/core/domain"
)

// Document transformers reshape enriched rows into the index document
// schema. They are pure functions: deterministic, no I/O, safe to call
// from tests with literal fixtures.

// TransformFilms produces movies-index documents from enriched film
// works, deriving the flattened name arrays from the structured lists.
func TransformFilms(films []domain.FilmWork) []domain.IndexDocument {
	docs := make([]domain.IndexDocument, 0, len(films))
	for _, f := range films {
		doc := domain.FilmDocument{
			ID:          f.ID,
			IMDBRating:  f.Rating,
			Title:       f.Title,
			Description: f.Description,
			Type:        f.Type,

			Genres:    refs(f.Genres),
			Directors: refs(f.Directors),
			Actors:    refs(f.Actors),
			Writers:   refs(f.Writers),

			GenresNames:    names(f.Genres),
			DirectorsNames: names(f.Directors),
			ActorsNames:    names(f.Actors),
			WritersNames:   names(f.Writers),
		}
		doc.Genre = doc.GenresNames
		doc.Director = doc.DirectorsNames
		docs = append(docs, doc)
	}
	return docs
}

// TransformGenres produces genres-index documents.
func TransformGenres(genres []domain.Genre) []domain.IndexDocument {
	docs := make([]domain.IndexDocument, 0, len(genres))
	for _, g := range genres {
		docs = append(docs, domain.GenreDocument{
			ID:   g.ID,
			Name: g.Name,
		})
	}
	return docs
}

// TransformPersons produces persons-index documents, carrying each
// person's filmography with per-film role sets.
func TransformPersons(persons []domain.Person) []domain.IndexDocument {
	docs := make([]domain.IndexDocument, 0, len(persons))
	for _, p := range persons {
		films := p.Films
		if films == nil {
			films = []domain.PersonFilm{}
		}
		docs = append(docs, domain.PersonDocument{
			ID:       p.ID,
			FullName: p.FullName,
			Films:    films,
		})
	}
	return docs
}

// refs returns a non-nil copy of rs so empty relations serialize as
// [] rather than null.
func refs(rs []domain.NameRef) []domain.NameRef {
	out := make([]domain.NameRef, len(rs))
	copy(out, rs)
	return out
}

// names flattens {id, name} pairs into a name-only array.
func names(rs []domain.NameRef) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}
