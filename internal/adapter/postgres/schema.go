package postgres

// Schema creates the location and category tables. created_at is Unix milliseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS locations (
	id BIGSERIAL PRIMARY KEY,
	search_query TEXT NOT NULL UNIQUE,
	formatted_query TEXT NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS weathers (
	id BIGSERIAL PRIMARY KEY,
	forecast TEXT NOT NULL,
	"time" TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	location_id BIGINT NOT NULL REFERENCES locations(id)
);
CREATE INDEX IF NOT EXISTS idx_weathers_location ON weathers(location_id);

CREATE TABLE IF NOT EXISTS events (
	id BIGSERIAL PRIMARY KEY,
	link TEXT NOT NULL,
	name TEXT NOT NULL,
	event_date TEXT NOT NULL,
	summary TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	location_id BIGINT NOT NULL REFERENCES locations(id)
);
CREATE INDEX IF NOT EXISTS idx_events_location ON events(location_id);

CREATE TABLE IF NOT EXISTS movies (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	overview TEXT NOT NULL,
	image_url TEXT NOT NULL,
	released_on TEXT NOT NULL,
	total_votes BIGINT NOT NULL,
	average_votes DOUBLE PRECISION NOT NULL,
	popularity DOUBLE PRECISION NOT NULL,
	created_at BIGINT NOT NULL,
	location_id BIGINT NOT NULL REFERENCES locations(id)
);
CREATE INDEX IF NOT EXISTS idx_movies_location ON movies(location_id);

CREATE TABLE IF NOT EXISTS yelps (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	rating DOUBLE PRECISION NOT NULL,
	price TEXT NOT NULL,
	url TEXT NOT NULL,
	image_url TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	location_id BIGINT NOT NULL REFERENCES locations(id)
);
CREATE INDEX IF NOT EXISTS idx_yelps_location ON yelps(location_id);
`
