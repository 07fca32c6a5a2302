// Package domain models the location-keyed data served by the city explorer.
//
// # Locations
//
// A [Location] is the identity anchor for every other record. It is created the
// first time a free-text search query is geocoded and is never updated or
// expired afterwards. Exactly one location row exists per distinct search
// query; the query text is matched verbatim.
//
// # Cached categories
//
// Four categories hang off a location id, each stored in its own table and
// each with a fixed staleness window:
//
//	Category  Table     Max age     Provider
//	weather   weathers  15s         Dark Sky daily forecast (coordinates)
//	events    events    24h         Eventbrite search (formatted address)
//	movies    movies    7.2h        TMDB now playing (not location scoped)
//	yelp      yelps     ~30.4 days  Yelp business search (coordinates)
//
// A category may hold many rows per location. All rows for one location are
// written by a single fetch and share one created_at stamp, so the age of the
// first row is the age of the whole set.
//
// Timestamps are stored as Unix milliseconds in created_at.
//
// # Dates
//
// Weather days and event dates are rendered in the "Mon Jan 02 2006" form the
// browser client expects. See [FormatDay].
package domain
