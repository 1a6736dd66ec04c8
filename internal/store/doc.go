// Package store reads raw page rows from the upstream wiki database.
//
// The upstream database holds three tables:
//   - wikipedia: title, wikitext, infobox (lowercase infobox type) and
//     general (the list of topical categories of the page)
//   - wikistats: title and viewcount
//   - wikidata: wikipedia_id and properties (structured data keyed by
//     property name, such as "coordinate location")
//
// The same queries are provided for PostgreSQL (through pgx), MySQL and
// SQLite, so a local SQLite dump can stand in for the production server.
package store
