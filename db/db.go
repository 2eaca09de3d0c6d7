package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/deemkeen/mammut/domain"
	"github.com/deemkeen/mammut/util"
	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB is the database struct.
type DB struct {
	db *sql.DB
}

var (
	dbInstance *DB
	dbOnce     sync.Once
)

func GetDB() *DB {
	dbOnce.Do(func() {
		// Resolve database path (local first, then user config dir)
		dbPath := util.ResolveFilePath("database.db")
		log.Printf("Using database at: %s", dbPath)

		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			panic(err)
		}

		// Configure connection pool for concurrent access
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)

		// Try to enable WAL2 mode, fall back to WAL if not supported
		var journalMode string
		err = db.QueryRow("PRAGMA journal_mode=WAL2").Scan(&journalMode)
		if err != nil || journalMode == "delete" {
			err = db.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode)
			if err != nil {
				log.Printf("Warning: Failed to enable WAL mode: %v", err)
			} else {
				log.Printf("Database journal mode: %s (WAL2 not supported, using WAL)", journalMode)
			}
		} else {
			log.Printf("Database journal mode: %s", journalMode)
		}

		// Optimize PRAGMAs for concurrent federation workload
		db.Exec("PRAGMA synchronous = NORMAL")
		db.Exec("PRAGMA cache_size = -64000")
		db.Exec("PRAGMA temp_store = MEMORY")
		db.Exec("PRAGMA busy_timeout = 5000")
		db.Exec("PRAGMA foreign_keys = ON")
		db.Exec("PRAGMA auto_vacuum = INCREMENTAL")

		dbInstance = &DB{db: db}

		if err2 := dbInstance.CreateDB(); err2 != nil {
			panic(err2)
		}
	})

	return dbInstance
}

// wrapTransaction runs the given function within a transaction.
func (db *DB) wrapTransaction(f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("error starting transaction: %s", err)
		return err
	}
	for {
		err = f(tx)
		if err != nil {
			serr, ok := err.(*sqlite.Error)
			if ok && serr.Code() == sqlitelib.SQLITE_BUSY {
				continue
			}
			log.Printf("error in transaction: %s", err)
			return err
		}
		err = tx.Commit()
		if err != nil {
			log.Printf("error committing transaction: %s", err)
			return err
		}
		break
	}
	return nil
}

// Users

const (
	sqlInsertUser = `INSERT INTO users(id, username, display_name, about, ap_id, ap_profile_id, web_public_key, web_private_key, avatar_url, created_at)
						VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	sqlSelectUser           = `SELECT id, username, display_name, about, ap_id, ap_profile_id, web_public_key, web_private_key, avatar_url, last_active_at, created_at FROM users`
	sqlSelectUserByUsername = sqlSelectUser + ` WHERE username = ?`
	sqlSelectUserById       = sqlSelectUser + ` WHERE id = ?`
	sqlSelectUserByApId     = sqlSelectUser + ` WHERE ap_id = ?`
	sqlTouchUserActivity    = `UPDATE users SET last_active_at = ? WHERE id = ?`

	sqlCountUsers               = `SELECT COUNT(*) FROM users WHERE ap_id = ''`
	sqlCountActiveUsersMonth    = `SELECT COUNT(*) FROM users WHERE ap_id = '' AND last_active_at >= datetime('now', '-30 days')`
	sqlCountActiveUsersHalfYear = `SELECT COUNT(*) FROM users WHERE ap_id = '' AND last_active_at >= datetime('now', '-180 days')`
)

func (db *DB) CreateUser(user *domain.User) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertUser,
			user.Id.String(),
			user.Username,
			user.DisplayName,
			user.About,
			user.ApId,
			user.ApProfileId,
			user.WebPublicKey,
			user.WebPrivateKey,
			imageRef(user.Avatar),
			user.CreatedAt,
		)
		return err
	})
}

func (db *DB) scanUser(row interface{ Scan(...any) error }) (error, *domain.User) {
	var user domain.User
	var idStr, avatarURL string
	var lastActive sql.NullTime
	err := row.Scan(
		&idStr,
		&user.Username,
		&user.DisplayName,
		&user.About,
		&user.ApId,
		&user.ApProfileId,
		&user.WebPublicKey,
		&user.WebPrivateKey,
		&avatarURL,
		&lastActive,
		&user.CreatedAt,
	)
	if err != nil {
		return err, nil
	}
	user.Id, err = uuid.Parse(idStr)
	if err != nil {
		return err, nil
	}
	user.Avatar = imageFromRef(avatarURL)
	if lastActive.Valid {
		user.LastActiveAt = &lastActive.Time
	}
	return nil, &user
}

func (db *DB) ReadUserByUsername(username string) (error, *domain.User) {
	return db.scanUser(db.db.QueryRow(sqlSelectUserByUsername, username))
}

func (db *DB) ReadUserById(id uuid.UUID) (error, *domain.User) {
	return db.scanUser(db.db.QueryRow(sqlSelectUserById, id.String()))
}

func (db *DB) ReadUserByApId(apId string) (error, *domain.User) {
	return db.scanUser(db.db.QueryRow(sqlSelectUserByApId, apId))
}

func (db *DB) TouchUserActivity(id uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlTouchUserActivity, time.Now(), id.String())
		return err
	})
}

func (db *DB) CountUsers() (int, error) {
	return db.count(sqlCountUsers)
}

func (db *DB) CountActiveUsersMonth() (int, error) {
	return db.count(sqlCountActiveUsersMonth)
}

func (db *DB) CountActiveUsersHalfYear() (int, error) {
	return db.count(sqlCountActiveUsersHalfYear)
}

func (db *DB) count(query string, args ...any) (int, error) {
	var n int
	err := db.db.QueryRow(query, args...).Scan(&n)
	return n, err
}

// Magazines

const (
	sqlInsertMagazine = `INSERT INTO magazines(id, name, title, description, rules, ap_id, ap_profile_id, web_public_key, web_private_key, icon_url, is_adult, restricted_to_mods, created_at)
						VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	sqlSelectMagazine       = `SELECT id, name, title, description, rules, ap_id, ap_profile_id, web_public_key, web_private_key, icon_url, is_adult, restricted_to_mods, last_active_at, created_at FROM magazines`
	sqlSelectMagazineByName = sqlSelectMagazine + ` WHERE name = ?`
	sqlSelectMagazineById   = sqlSelectMagazine + ` WHERE id = ?`

	sqlInsertModerator     = `INSERT INTO magazine_moderators(magazine_id, user_id) VALUES (?, ?)`
	sqlDeleteModerator     = `DELETE FROM magazine_moderators WHERE magazine_id = ? AND user_id = ?`
	sqlSelectModeratorsFor = `SELECT u.id, u.username, u.display_name, u.about, u.ap_id, u.ap_profile_id, u.web_public_key, u.web_private_key, u.avatar_url, u.last_active_at, u.created_at
						FROM users u INNER JOIN magazine_moderators m ON m.user_id = u.id
						WHERE m.magazine_id = ? ORDER BY u.username ASC`
)

func (db *DB) CreateMagazine(magazine *domain.Magazine) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertMagazine,
			magazine.Id.String(),
			magazine.Name,
			magazine.Title,
			magazine.Description,
			magazine.Rules,
			magazine.ApId,
			magazine.ApProfileId,
			magazine.WebPublicKey,
			magazine.WebPrivateKey,
			imageRef(magazine.Icon),
			magazine.IsAdult,
			magazine.PostingRestrictedToMods,
			magazine.CreatedAt,
		)
		return err
	})
}

func (db *DB) scanMagazine(row interface{ Scan(...any) error }) (error, *domain.Magazine) {
	var magazine domain.Magazine
	var idStr, iconURL string
	var lastActive sql.NullTime
	err := row.Scan(
		&idStr,
		&magazine.Name,
		&magazine.Title,
		&magazine.Description,
		&magazine.Rules,
		&magazine.ApId,
		&magazine.ApProfileId,
		&magazine.WebPublicKey,
		&magazine.WebPrivateKey,
		&iconURL,
		&magazine.IsAdult,
		&magazine.PostingRestrictedToMods,
		&lastActive,
		&magazine.CreatedAt,
	)
	if err != nil {
		return err, nil
	}
	magazine.Id, err = uuid.Parse(idStr)
	if err != nil {
		return err, nil
	}
	magazine.Icon = imageFromRef(iconURL)
	if lastActive.Valid {
		magazine.LastActiveAt = &lastActive.Time
	}
	return nil, &magazine
}

func (db *DB) ReadMagazineByName(name string) (error, *domain.Magazine) {
	return db.scanMagazine(db.db.QueryRow(sqlSelectMagazineByName, name))
}

func (db *DB) ReadMagazineById(id uuid.UUID) (error, *domain.Magazine) {
	return db.scanMagazine(db.db.QueryRow(sqlSelectMagazineById, id.String()))
}

func (db *DB) AddMagazineModerator(magazineId, userId uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertModerator, magazineId.String(), userId.String())
		return err
	})
}

func (db *DB) RemoveMagazineModerator(magazineId, userId uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteModerator, magazineId.String(), userId.String())
		return err
	})
}

func (db *DB) ReadMagazineModerators(magazineId uuid.UUID) (error, *[]domain.User) {
	rows, err := db.db.Query(sqlSelectModeratorsFor, magazineId.String())
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var moderators []domain.User
	for rows.Next() {
		err, user := db.scanUser(rows)
		if err != nil {
			return err, nil
		}
		moderators = append(moderators, *user)
	}
	if err = rows.Err(); err != nil {
		return err, &moderators
	}
	return nil, &moderators
}

// Entries

const (
	sqlInsertEntry = `INSERT INTO entries(id, user_id, magazine_id, title, url, body, lang, ap_id, is_adult, sticky, tags, mentions, created_at)
						VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	sqlSelectEntry = `SELECT id, user_id, magazine_id, title, url, body, lang, ap_id, is_adult, sticky, tags, mentions, created_at, edited_at FROM entries`
	sqlSelectEntryById            = sqlSelectEntry + ` WHERE id = ?`
	sqlSelectPinnedEntries        = sqlSelectEntry + ` WHERE magazine_id = ? AND sticky = 1 ORDER BY created_at DESC`
	sqlSelectLatestEntries        = sqlSelectEntry + ` WHERE ap_id = '' ORDER BY created_at DESC LIMIT ?`
	sqlSelectEntriesByMagazineId  = sqlSelectEntry + ` WHERE magazine_id = ? ORDER BY created_at DESC LIMIT ?`
	sqlCountLocalEntries          = `SELECT COUNT(*) FROM entries WHERE ap_id = ''`
	sqlCountLocalEntryComments    = `SELECT COUNT(*) FROM entry_comments WHERE ap_id = ''`
	sqlCountLocalPostComments     = `SELECT COUNT(*) FROM post_comments WHERE ap_id = ''`
)

func (db *DB) CreateEntry(entry *domain.Entry) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlInsertEntry,
			entry.Id.String(),
			entry.User.Id.String(),
			entry.Magazine.Id.String(),
			entry.Title,
			entry.URL,
			entry.Body,
			entry.Lang,
			entry.ApId,
			entry.IsAdult,
			entry.Sticky,
			mustMarshalJSON(entry.Tags),
			mustMarshalJSON(entry.Mentions),
			entry.CreatedAt,
		)
		return err
	})
}

func (db *DB) scanEntry(row interface{ Scan(...any) error }) (error, *domain.Entry) {
	var entry domain.Entry
	var idStr, userIdStr, magazineIdStr, tagsJSON, mentionsJSON string
	var editedAt sql.NullTime
	err := row.Scan(
		&idStr,
		&userIdStr,
		&magazineIdStr,
		&entry.Title,
		&entry.URL,
		&entry.Body,
		&entry.Lang,
		&entry.ApId,
		&entry.IsAdult,
		&entry.Sticky,
		&tagsJSON,
		&mentionsJSON,
		&entry.CreatedAt,
		&editedAt,
	)
	if err != nil {
		return err, nil
	}
	entry.Id, err = uuid.Parse(idStr)
	if err != nil {
		return err, nil
	}
	if editedAt.Valid {
		entry.EditedAt = &editedAt.Time
	}
	json.Unmarshal([]byte(tagsJSON), &entry.Tags)
	json.Unmarshal([]byte(mentionsJSON), &entry.Mentions)

	// Hydrate the owning actors; entries are always served with both.
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return err, nil
	}
	err, entry.User = db.ReadUserById(userId)
	if err != nil {
		return err, nil
	}
	magazineId, err := uuid.Parse(magazineIdStr)
	if err != nil {
		return err, nil
	}
	err, entry.Magazine = db.ReadMagazineById(magazineId)
	if err != nil {
		return err, nil
	}
	return nil, &entry
}

func (db *DB) ReadEntryById(id uuid.UUID) (error, *domain.Entry) {
	return db.scanEntry(db.db.QueryRow(sqlSelectEntryById, id.String()))
}

func (db *DB) readEntries(query string, args ...any) (error, *[]domain.Entry) {
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		err, entry := db.scanEntry(rows)
		if err != nil {
			return err, nil
		}
		entries = append(entries, *entry)
	}
	if err = rows.Err(); err != nil {
		return err, &entries
	}
	return nil, &entries
}

func (db *DB) ReadPinnedEntries(magazineId uuid.UUID) (error, *[]domain.Entry) {
	return db.readEntries(sqlSelectPinnedEntries, magazineId.String())
}

func (db *DB) ReadLatestEntries(limit int) (error, *[]domain.Entry) {
	return db.readEntries(sqlSelectLatestEntries, limit)
}

func (db *DB) ReadEntriesByMagazineId(magazineId uuid.UUID, limit int) (error, *[]domain.Entry) {
	return db.readEntries(sqlSelectEntriesByMagazineId, magazineId.String(), limit)
}

func (db *DB) CountLocalEntries() (int, error) {
	return db.count(sqlCountLocalEntries)
}

func (db *DB) CountLocalComments() (int, error) {
	entryComments, err := db.count(sqlCountLocalEntryComments)
	if err != nil {
		return 0, err
	}
	postComments, err := db.count(sqlCountLocalPostComments)
	if err != nil {
		return 0, err
	}
	return entryComments + postComments, nil
}

// Activities

const (
	sqlInsertActivity = `INSERT INTO activities(id, ap_id, activity_type, actor_uri, object_uri, audience_id, raw_json, local, created_at)
						VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	sqlSelectActivitiesByActor = `SELECT id, ap_id, activity_type, actor_uri, object_uri, audience_id, raw_json, local, created_at
						FROM activities WHERE actor_uri = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	sqlCountActivitiesByActor = `SELECT COUNT(*) FROM activities WHERE actor_uri = ?`
)

func (db *DB) CreateActivity(activity *domain.Activity) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		var audienceId any
		if activity.AudienceId != nil {
			audienceId = activity.AudienceId.String()
		}
		_, err := tx.Exec(sqlInsertActivity,
			activity.Id.String(),
			activity.ApId,
			activity.Type,
			activity.ActorURI,
			activity.ObjectURI,
			audienceId,
			activity.RawJSON,
			activity.Local,
			activity.CreatedAt,
		)
		return err
	})
}

func (db *DB) ReadActivitiesByActorURI(actorURI string, offset, limit int) (error, *[]domain.Activity) {
	rows, err := db.db.Query(sqlSelectActivitiesByActor, actorURI, limit, offset)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		var idStr string
		var audienceIdStr sql.NullString
		err := rows.Scan(
			&idStr,
			&activity.ApId,
			&activity.Type,
			&activity.ActorURI,
			&activity.ObjectURI,
			&audienceIdStr,
			&activity.RawJSON,
			&activity.Local,
			&activity.CreatedAt,
		)
		if err != nil {
			return err, nil
		}
		activity.Id, err = uuid.Parse(idStr)
		if err != nil {
			return err, nil
		}
		if audienceIdStr.Valid {
			audienceId, err := uuid.Parse(audienceIdStr.String)
			if err == nil {
				activity.AudienceId = &audienceId
			}
		}
		activities = append(activities, activity)
	}
	if err = rows.Err(); err != nil {
		return err, &activities
	}
	return nil, &activities
}

func (db *DB) CountActivitiesByActorURI(actorURI string) (int, error) {
	return db.count(sqlCountActivitiesByActor, actorURI)
}

// Delivery queue

const (
	sqlEnqueueDelivery = `INSERT INTO delivery_queue(id, inbox_uri, actor_id, activity_json, attempts, next_retry_at, created_at)
						VALUES (?, ?, ?, ?, ?, ?, ?)`
	sqlSelectPendingDeliveries = `SELECT id, inbox_uri, actor_id, activity_json, attempts, next_retry_at, created_at
						FROM delivery_queue WHERE next_retry_at <= ? ORDER BY next_retry_at ASC LIMIT ?`
	sqlUpdateDeliveryAttempt = `UPDATE delivery_queue SET attempts = ?, next_retry_at = ? WHERE id = ?`
	sqlDeleteDelivery        = `DELETE FROM delivery_queue WHERE id = ?`
)

func (db *DB) EnqueueDelivery(item *domain.DeliveryQueueItem) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlEnqueueDelivery,
			item.Id.String(),
			item.InboxURI,
			item.ActorId.String(),
			item.ActivityJSON,
			item.Attempts,
			item.NextRetryAt,
			item.CreatedAt,
		)
		return err
	})
}

func (db *DB) ReadPendingDeliveries(limit int) (error, *[]domain.DeliveryQueueItem) {
	rows, err := db.db.Query(sqlSelectPendingDeliveries, time.Now(), limit)
	if err != nil {
		return err, nil
	}
	defer rows.Close()

	var items []domain.DeliveryQueueItem
	for rows.Next() {
		var item domain.DeliveryQueueItem
		var idStr, actorIdStr string
		err := rows.Scan(
			&idStr,
			&item.InboxURI,
			&actorIdStr,
			&item.ActivityJSON,
			&item.Attempts,
			&item.NextRetryAt,
			&item.CreatedAt,
		)
		if err != nil {
			return err, nil
		}
		item.Id, err = uuid.Parse(idStr)
		if err != nil {
			return err, nil
		}
		item.ActorId, err = uuid.Parse(actorIdStr)
		if err != nil {
			return err, nil
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return err, &items
	}
	return nil, &items
}

func (db *DB) UpdateDeliveryAttempt(id uuid.UUID, attempts int, nextRetry time.Time) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlUpdateDeliveryAttempt, attempts, nextRetry, id.String())
		return err
	})
}

func (db *DB) DeleteDelivery(id uuid.UUID) error {
	return db.wrapTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(sqlDeleteDelivery, id.String())
		return err
	})
}

// helpers

// imageRef flattens an image to one column: remote images store their
// absolute source URL, local uploads store the bare file path.
func imageRef(img *domain.Image) string {
	if img == nil {
		return ""
	}
	if img.SourceURL != "" {
		return img.SourceURL
	}
	return img.FilePath
}

// imageFromRef is the inverse of imageRef: absolute URLs come back as
// remote images, everything else as a local file path.
func imageFromRef(ref string) *domain.Image {
	if ref == "" {
		return nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return &domain.Image{SourceURL: ref}
	}
	return &domain.Image{FilePath: ref}
}

func mustMarshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
