package store

import "fmt"

// Dialect holds the driver name and the queries for one database engine.
//
// MuseumQuery takes one argument, the row limit, and returns
// (title, wikitext, viewcount, location) ordered by viewcount descending.
// location is the JSON text of the "coordinate location" property or NULL.
//
// PaintingQuery takes no argument and returns (title, wikitext, viewcount).
type Dialect struct {
	Name          string
	Driver        string
	MuseumQuery   string
	PaintingQuery string
}

// Postgres is the dialect of the production store.
var Postgres = Dialect{
	Name:   "postgres",
	Driver: "pgx",
	MuseumQuery: `SELECT wikipedia.title, wikipedia.wikitext, wikistats.viewcount,
		wikidata.properties->>'coordinate location'
	FROM wikipedia
	JOIN wikistats ON wikipedia.title = wikistats.title
	LEFT JOIN wikidata ON wikipedia.title = wikidata.wikipedia_id
	WHERE wikipedia.infobox = 'museum'
	ORDER BY wikistats.viewcount DESC
	LIMIT $1`,
	PaintingQuery: `SELECT wikipedia.title, wikipedia.wikitext, wikistats.viewcount
	FROM wikipedia
	JOIN wikistats ON wikipedia.title = wikistats.title
	WHERE wikipedia.general @> ARRAY['paintings']
		AND NOT wikipedia.infobox = 'artist'
		AND NOT wikipedia.infobox = 'person'`,
}

// MySQL stores general and properties as JSON columns.
var MySQL = Dialect{
	Name:   "mysql",
	Driver: "mysql",
	MuseumQuery: `SELECT wikipedia.title, wikipedia.wikitext, wikistats.viewcount,
		JSON_UNQUOTE(JSON_EXTRACT(wikidata.properties, '$."coordinate location"'))
	FROM wikipedia
	JOIN wikistats ON wikipedia.title = wikistats.title
	LEFT JOIN wikidata ON wikipedia.title = wikidata.wikipedia_id
	WHERE wikipedia.infobox = 'museum'
	ORDER BY wikistats.viewcount DESC
	LIMIT ?`,
	PaintingQuery: `SELECT wikipedia.title, wikipedia.wikitext, wikistats.viewcount
	FROM wikipedia
	JOIN wikistats ON wikipedia.title = wikistats.title
	WHERE JSON_CONTAINS(wikipedia.general, '"paintings"')
		AND NOT wikipedia.infobox = 'artist'
		AND NOT wikipedia.infobox = 'person'`,
}

// SQLite stores general and properties as JSON text.
var SQLite = Dialect{
	Name:   "sqlite",
	Driver: "sqlite",
	MuseumQuery: `SELECT wikipedia.title, wikipedia.wikitext, wikistats.viewcount,
		json_extract(wikidata.properties, '$."coordinate location"')
	FROM wikipedia
	JOIN wikistats ON wikipedia.title = wikistats.title
	LEFT JOIN wikidata ON wikipedia.title = wikidata.wikipedia_id
	WHERE wikipedia.infobox = 'museum'
	ORDER BY wikistats.viewcount DESC
	LIMIT ?`,
	PaintingQuery: `SELECT wikipedia.title, wikipedia.wikitext, wikistats.viewcount
	FROM wikipedia
	JOIN wikistats ON wikipedia.title = wikistats.title
	WHERE EXISTS (SELECT 1 FROM json_each(wikipedia.general) WHERE json_each.value = 'paintings')
		AND NOT wikipedia.infobox = 'artist'
		AND NOT wikipedia.infobox = 'person'`,
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case Postgres.Name, "postgresql", "pgx":
		return Postgres, nil
	case MySQL.Name:
		return MySQL, nil
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}
