package database

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/arbormap/lineagebackend/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// PersonSearchOptions are the dynamic filters of the person search
// endpoint. Zero values mean "don't filter on this".
type PersonSearchOptions struct {
	NameContains string
	Country      string
	BornAfter    *int // inclusive
	BornBefore   *int // inclusive
	Gender       string
}

// SearchPeople runs a dynamically-built filter query directly against the
// underlying sql.DB. The filter combinations don't map cleanly onto the
// repository's fixed queries, so the statement is assembled with squirrel.
func SearchPeople(db *sql.DB, opts PersonSearchOptions) ([]models.Person, error) {
	queryBuilder := psql.Select(
		"id", "name", "birth_year", "death_year", "gender", "country", "notes",
		"father_id", "mother_id", "photo_path", "photo_thumbnail_path",
		"photo_taken_at", "created_at", "updated_at",
	).From("people").OrderBy("name ASC", "id ASC")

	if opts.NameContains != "" {
		queryBuilder = queryBuilder.Where(sq.Like{"LOWER(name)": "%" + strings.ToLower(opts.NameContains) + "%"})
	}
	if opts.Country != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"country": opts.Country})
	}
	if opts.Gender != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"gender": opts.Gender})
	}
	if opts.BornAfter != nil {
		queryBuilder = queryBuilder.Where(sq.GtOrEq{"birth_year": *opts.BornAfter})
	}
	if opts.BornBefore != nil {
		queryBuilder = queryBuilder.Where(sq.LtOrEq{"birth_year": *opts.BornBefore})
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for SearchPeople: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute SearchPeople query: %w", err)
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating SearchPeople rows: %w", err)
	}
	return people, nil
}

func scanPerson(rows *sql.Rows) (models.Person, error) {
	var (
		p                      models.Person
		birthYear, deathYear   sql.NullInt64
		country, notes         sql.NullString
		fatherID, motherID     sql.NullInt64
		photoPath, thumbPath   sql.NullString
		photoTakenAt           sql.NullInt64
	)
	err := rows.Scan(
		&p.ID, &p.Name, &birthYear, &deathYear, &p.Gender, &country, &notes,
		&fatherID, &motherID, &photoPath, &thumbPath, &photoTakenAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.Person{}, fmt.Errorf("failed to scan person row: %w", err)
	}
	if birthYear.Valid {
		y := int(birthYear.Int64)
		p.BirthYear = &y
	}
	if deathYear.Valid {
		y := int(deathYear.Int64)
		p.DeathYear = &y
	}
	p.Country = country.String
	p.Notes = notes.String
	if fatherID.Valid {
		id := uint(fatherID.Int64)
		p.FatherID = &id
	}
	if motherID.Valid {
		id := uint(motherID.Int64)
		p.MotherID = &id
	}
	if photoPath.Valid {
		s := photoPath.String
		p.PhotoPath = &s
	}
	if thumbPath.Valid {
		s := thumbPath.String
		p.PhotoThumbnailPath = &s
	}
	if photoTakenAt.Valid {
		ts := photoTakenAt.Int64
		p.PhotoTakenAt = &ts
	}
	return p, nil
}
