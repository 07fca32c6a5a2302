package sqlite

// Schema creates the location and category tables. created_at is Unix milliseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS locations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_query TEXT NOT NULL UNIQUE,
	formatted_query TEXT NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS weathers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	forecast TEXT NOT NULL,
	"time" TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	location_id INTEGER NOT NULL REFERENCES locations(id)
);
CREATE INDEX IF NOT EXISTS idx_weathers_location ON weathers(location_id);

CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	link TEXT NOT NULL,
	name TEXT NOT NULL,
	event_date TEXT NOT NULL,
	summary TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	location_id INTEGER NOT NULL REFERENCES locations(id)
);
CREATE INDEX IF NOT EXISTS idx_events_location ON events(location_id);

CREATE TABLE IF NOT EXISTS movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	overview TEXT NOT NULL,
	image_url TEXT NOT NULL,
	released_on TEXT NOT NULL,
	total_votes INTEGER NOT NULL,
	average_votes REAL NOT NULL,
	popularity REAL NOT NULL,
	created_at INTEGER NOT NULL,
	location_id INTEGER NOT NULL REFERENCES locations(id)
);
CREATE INDEX IF NOT EXISTS idx_movies_location ON movies(location_id);

CREATE TABLE IF NOT EXISTS yelps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	rating REAL NOT NULL,
	price TEXT NOT NULL,
	url TEXT NOT NULL,
	image_url TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	location_id INTEGER NOT NULL REFERENCES locations(id)
);
CREATE INDEX IF NOT EXISTS idx_yelps_location ON yelps(location_id);
`
