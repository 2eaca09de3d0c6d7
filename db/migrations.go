package db

import (
	"database/sql"
	"log"
)

const (
	sqlCreateUsersTable = `CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		display_name TEXT DEFAULT '',
		about TEXT DEFAULT '',
		ap_id TEXT DEFAULT '',
		ap_profile_id TEXT DEFAULT '',
		web_public_key TEXT DEFAULT '',
		web_private_key TEXT DEFAULT '',
		avatar_url TEXT DEFAULT '',
		last_active_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateUsersIndices = `
		CREATE INDEX IF NOT EXISTS idx_users_ap_id ON users(ap_id);
	`

	sqlCreateMagazinesTable = `CREATE TABLE IF NOT EXISTS magazines (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		title TEXT DEFAULT '',
		description TEXT DEFAULT '',
		rules TEXT DEFAULT '',
		ap_id TEXT DEFAULT '',
		ap_profile_id TEXT DEFAULT '',
		web_public_key TEXT DEFAULT '',
		web_private_key TEXT DEFAULT '',
		icon_url TEXT DEFAULT '',
		is_adult INTEGER DEFAULT 0,
		restricted_to_mods INTEGER DEFAULT 0,
		last_active_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateModeratorsTable = `CREATE TABLE IF NOT EXISTS magazine_moderators (
		magazine_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (magazine_id, user_id)
	)`

	sqlCreateEntriesTable = `CREATE TABLE IF NOT EXISTS entries (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		magazine_id TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT DEFAULT '',
		body TEXT DEFAULT '',
		lang TEXT DEFAULT 'en',
		ap_id TEXT DEFAULT '',
		is_adult INTEGER DEFAULT 0,
		sticky INTEGER DEFAULT 0,
		tags TEXT DEFAULT '[]',
		mentions TEXT DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		edited_at TIMESTAMP
	)`

	sqlCreateEntriesIndices = `
		CREATE INDEX IF NOT EXISTS idx_entries_magazine_id ON entries(magazine_id);
		CREATE INDEX IF NOT EXISTS idx_entries_user_id ON entries(user_id);
		CREATE INDEX IF NOT EXISTS idx_entries_ap_id ON entries(ap_id);
	`

	sqlCreateEntryCommentsTable = `CREATE TABLE IF NOT EXISTS entry_comments (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		entry_id TEXT NOT NULL,
		parent_id TEXT,
		body TEXT DEFAULT '',
		lang TEXT DEFAULT 'en',
		ap_id TEXT DEFAULT '',
		is_adult INTEGER DEFAULT 0,
		tags TEXT DEFAULT '[]',
		mentions TEXT DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		edited_at TIMESTAMP
	)`

	sqlCreatePostsTable = `CREATE TABLE IF NOT EXISTS posts (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		magazine_id TEXT NOT NULL,
		body TEXT DEFAULT '',
		lang TEXT DEFAULT 'en',
		ap_id TEXT DEFAULT '',
		is_adult INTEGER DEFAULT 0,
		sticky INTEGER DEFAULT 0,
		tags TEXT DEFAULT '[]',
		mentions TEXT DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		edited_at TIMESTAMP
	)`

	sqlCreatePostCommentsTable = `CREATE TABLE IF NOT EXISTS post_comments (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		post_id TEXT NOT NULL,
		parent_id TEXT,
		body TEXT DEFAULT '',
		lang TEXT DEFAULT 'en',
		ap_id TEXT DEFAULT '',
		is_adult INTEGER DEFAULT 0,
		tags TEXT DEFAULT '[]',
		mentions TEXT DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		edited_at TIMESTAMP
	)`

	sqlCreateMessagesTable = `CREATE TABLE IF NOT EXISTS messages (
		id TEXT NOT NULL PRIMARY KEY,
		sender_id TEXT NOT NULL,
		body TEXT DEFAULT '',
		lang TEXT DEFAULT 'en',
		ap_id TEXT DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateMessageParticipantsTable = `CREATE TABLE IF NOT EXISTS message_participants (
		message_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (message_id, user_id)
	)`

	sqlCreateActivitiesTable = `CREATE TABLE IF NOT EXISTS activities (
		id TEXT NOT NULL PRIMARY KEY,
		ap_id TEXT DEFAULT '',
		activity_type TEXT NOT NULL,
		actor_uri TEXT NOT NULL,
		object_uri TEXT DEFAULT '',
		audience_id TEXT,
		raw_json TEXT NOT NULL,
		local INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateActivitiesIndices = `
		CREATE INDEX IF NOT EXISTS idx_activities_actor_uri ON activities(actor_uri);
		CREATE INDEX IF NOT EXISTS idx_activities_created_at ON activities(created_at);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_activities_ap_id ON activities(ap_id) WHERE ap_id != '';
	`

	sqlCreateDeliveryQueueTable = `CREATE TABLE IF NOT EXISTS delivery_queue (
		id TEXT NOT NULL PRIMARY KEY,
		inbox_uri TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		activity_json TEXT NOT NULL,
		attempts INTEGER DEFAULT 0,
		next_retry_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	sqlCreateDeliveryQueueIndices = `
		CREATE INDEX IF NOT EXISTS idx_delivery_queue_next_retry ON delivery_queue(next_retry_at);
	`
)

// CreateDB creates the full schema. Every statement is idempotent, so the
// setup doubles as the migration path for fresh and existing databases.
func (db *DB) CreateDB() error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		statements := []string{
			sqlCreateUsersTable,
			sqlCreateUsersIndices,
			sqlCreateMagazinesTable,
			sqlCreateModeratorsTable,
			sqlCreateEntriesTable,
			sqlCreateEntriesIndices,
			sqlCreateEntryCommentsTable,
			sqlCreatePostsTable,
			sqlCreatePostCommentsTable,
			sqlCreateMessagesTable,
			sqlCreateMessageParticipantsTable,
			sqlCreateActivitiesTable,
			sqlCreateActivitiesIndices,
			sqlCreateDeliveryQueueTable,
			sqlCreateDeliveryQueueIndices,
		}
		for _, statement := range statements {
			if _, err := tx.Exec(statement); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunMigrations applies schema updates on startup
func (db *DB) RunMigrations() error {
	log.Println("Running federation schema migrations...")
	return db.CreateDB()
}
