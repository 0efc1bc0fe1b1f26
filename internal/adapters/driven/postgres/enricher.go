package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driven"
)

// Ensure enricher implements the interface.
var _ driven.Enricher = (*enricher)(nil)

// enricher fetches fully joined rows for sets of entity IDs. The
// grouping and deduplication happen in memory: the queries stay plain
// selects, one per table, merged keyed by ID.
type enricher struct {
	db *sql.DB
}

// personLink is one role-tagged person credit on a film work.
type personLink struct {
	FilmID   uuid.UUID
	Role     domain.Role
	PersonID uuid.UUID
	Name     string
}

// genreLink is one genre tag on a film work.
type genreLink struct {
	FilmID uuid.UUID
	Genre  domain.NameRef
}

// Films returns the denormalized film works for ids, ordered by the
// film's own updated_at ascending.
func (e *enricher) Films(ctx context.Context, ids []uuid.UUID) ([]domain.FilmWork, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	films, err := e.filmRows(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("querying film works: %w", err)
	}
	if len(films) == 0 {
		return nil, nil
	}

	persons, err := e.personLinks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("querying person credits: %w", err)
	}
	genres, err := e.genreLinks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("querying genre links: %w", err)
	}

	mergeFilmRelations(films, persons, genres)
	return films, nil
}

// Genres returns the genre rows for ids, ordered by updated_at.
func (e *enricher) Genres(ctx context.Context, ids []uuid.UUID) ([]domain.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT id, name, updated_at FROM %s.genre WHERE id IN (%s) ORDER BY updated_at`,
		schema, placeholders(len(ids), 1))
	rows, err := e.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("querying genres: %w", err)
	}
	defer rows.Close()

	var out []domain.Genre
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning genre: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Persons returns the person rows for ids, each aggregated with every
// film they are credited on and the roles held there. Ordered by the
// person's updated_at.
func (e *enricher) Persons(ctx context.Context, ids []uuid.UUID) ([]domain.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT id, full_name, updated_at FROM %s.person WHERE id IN (%s) ORDER BY updated_at`,
		schema, placeholders(len(ids), 1))
	rows, err := e.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("querying persons: %w", err)
	}
	defer rows.Close()

	var persons []domain.Person
	for rows.Next() {
		var p domain.Person
		if err := rows.Scan(&p.ID, &p.FullName, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(persons) == 0 {
		return nil, nil
	}

	credits, err := e.personCredits(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("querying filmography: %w", err)
	}
	mergeFilmographies(persons, credits)
	return persons, nil
}

// filmRows fetches the scalar film columns, oldest updated_at first.
func (e *enricher) filmRows(ctx context.Context, ids []uuid.UUID) ([]domain.FilmWork, error) {
	query := fmt.Sprintf(`
		SELECT id, title, COALESCE(description, ''), COALESCE(rating, 0),
		       COALESCE(type, ''), created_at, updated_at
		FROM %s.film_work
		WHERE id IN (%s)
		ORDER BY updated_at`,
		schema, placeholders(len(ids), 1))

	rows, err := e.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var films []domain.FilmWork
	for rows.Next() {
		var f domain.FilmWork
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.Rating,
			&f.Type, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		films = append(films, f)
	}
	return films, rows.Err()
}

// personLinks fetches every role-tagged person credit for the films.
func (e *enricher) personLinks(ctx context.Context, filmIDs []uuid.UUID) ([]personLink, error) {
	query := fmt.Sprintf(`
		SELECT pfw.film_work_id, pfw.role, p.id, p.full_name
		FROM %[1]s.person_film_work pfw
		JOIN %[1]s.person p ON p.id = pfw.person_id
		WHERE pfw.film_work_id IN (%[2]s)`,
		schema, placeholders(len(filmIDs), 1))

	rows, err := e.db.QueryContext(ctx, query, idArgs(filmIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []personLink
	for rows.Next() {
		var l personLink
		if err := rows.Scan(&l.FilmID, &l.Role, &l.PersonID, &l.Name); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// genreLinks fetches every genre tag for the films.
func (e *enricher) genreLinks(ctx context.Context, filmIDs []uuid.UUID) ([]genreLink, error) {
	query := fmt.Sprintf(`
		SELECT gfw.film_work_id, g.id, g.name
		FROM %[1]s.genre_film_work gfw
		JOIN %[1]s.genre g ON g.id = gfw.genre_id
		WHERE gfw.film_work_id IN (%[2]s)`,
		schema, placeholders(len(filmIDs), 1))

	rows, err := e.db.QueryContext(ctx, query, idArgs(filmIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []genreLink
	for rows.Next() {
		var l genreLink
		if err := rows.Scan(&l.FilmID, &l.Genre.ID, &l.Genre.Name); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// personCredits fetches (person, film, role) triples for the persons.
func (e *enricher) personCredits(ctx context.Context, personIDs []uuid.UUID) ([]personCredit, error) {
	query := fmt.Sprintf(`
		SELECT person_id, film_work_id, role
		FROM %s.person_film_work
		WHERE person_id IN (%s)`,
		schema, placeholders(len(personIDs), 1))

	rows, err := e.db.QueryContext(ctx, query, idArgs(personIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []personCredit
	for rows.Next() {
		var c personCredit
		if err := rows.Scan(&c.PersonID, &c.FilmID, &c.Role); err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

// personCredit is one (person, film, role) row from the link table.
type personCredit struct {
	PersonID uuid.UUID
	FilmID   uuid.UUID
	Role     domain.Role
}

// mergeFilmRelations groups the link rows into their films, role by
// role, deduplicating repeated credits. Relation lists come out sorted
// by name (then ID) so the same inputs always produce the same
// document.
func mergeFilmRelations(films []domain.FilmWork, persons []personLink, genres []genreLink) {
	byID := make(map[uuid.UUID]*domain.FilmWork, len(films))
	for i := range films {
		byID[films[i].ID] = &films[i]
	}

	seen := make(map[string]struct{})
	for _, l := range persons {
		film, ok := byID[l.FilmID]
		if !ok {
			continue
		}
		key := l.FilmID.String() + "/" + string(l.Role) + "/" + l.PersonID.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		ref := domain.NameRef{ID: l.PersonID, Name: l.Name}
		switch l.Role {
		case domain.RoleDirector:
			film.Directors = append(film.Directors, ref)
		case domain.RoleActor:
			film.Actors = append(film.Actors, ref)
		case domain.RoleWriter:
			film.Writers = append(film.Writers, ref)
		}
	}

	genreSeen := make(map[string]struct{})
	for _, l := range genres {
		film, ok := byID[l.FilmID]
		if !ok {
			continue
		}
		key := l.FilmID.String() + "/" + l.Genre.ID.String()
		if _, dup := genreSeen[key]; dup {
			continue
		}
		genreSeen[key] = struct{}{}
		film.Genres = append(film.Genres, l.Genre)
	}

	for i := range films {
		sortRefs(films[i].Genres)
		sortRefs(films[i].Directors)
		sortRefs(films[i].Actors)
		sortRefs(films[i].Writers)
	}
}

// mergeFilmographies groups credits into their persons, collapsing
// multiple roles on the same film into one entry with a sorted role
// set. Films are sorted by ID for deterministic output.
func mergeFilmographies(persons []domain.Person, credits []personCredit) {
	type roleSet map[domain.Role]struct{}
	grouped := make(map[uuid.UUID]map[uuid.UUID]roleSet, len(persons))
	for _, c := range credits {
		films, ok := grouped[c.PersonID]
		if !ok {
			films = make(map[uuid.UUID]roleSet)
			grouped[c.PersonID] = films
		}
		roles, ok := films[c.FilmID]
		if !ok {
			roles = make(roleSet)
			films[c.FilmID] = roles
		}
		roles[c.Role] = struct{}{}
	}

	for i := range persons {
		films := grouped[persons[i].ID]
		out := make([]domain.PersonFilm, 0, len(films))
		for filmID, roles := range films {
			pf := domain.PersonFilm{FilmID: filmID, Roles: make([]domain.Role, 0, len(roles))}
			for role := range roles {
				pf.Roles = append(pf.Roles, role)
			}
			sort.Slice(pf.Roles, func(a, b int) bool { return pf.Roles[a] < pf.Roles[b] })
			out = append(out, pf)
		}
		sort.Slice(out, func(a, b int) bool {
			return out[a].FilmID.String() < out[b].FilmID.String()
		})
		persons[i].Films = out
	}
}

// sortRefs orders refs by name, then ID for stable ties.
func sortRefs(refs []domain.NameRef) {
	sort.Slice(refs, func(a, b int) bool {
		if refs[a].Name != refs[b].Name {
			return refs[a].Name < refs[b].Name
		}
		return refs[a].ID.String() < refs[b].ID.String()
	})
}
