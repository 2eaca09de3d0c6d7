package web

import (
	"encoding/json"
	"fmt"

	"github.com/deemkeen/mammut/activitypub"
	"github.com/deemkeen/mammut/db"
	"github.com/deemkeen/mammut/domain"
	"github.com/google/uuid"
)

// GetUserActor returns the Person document for a local user as
// ActivityPub JSON
func GetUserActor(username string, f *activitypub.Factories) (error, string) {
	err, user := db.GetDB().ReadUserByUsername(username)
	if err != nil {
		return err, "{}"
	}
	if user.IsRemote() {
		return fmt.Errorf("user %s is not local", username), "{}"
	}
	return marshalDocument(f.Persons.Create(user, true))
}

// GetMagazineActor returns the Group document for a local magazine as
// ActivityPub JSON
func GetMagazineActor(name string, f *activitypub.Factories) (error, string) {
	err, magazine := db.GetDB().ReadMagazineByName(name)
	if err != nil {
		return err, "{}"
	}
	if magazine.IsRemote() {
		return fmt.Errorf("magazine %s is not local", name), "{}"
	}
	return marshalDocument(f.Groups.Create(magazine, true))
}

// GetEntryObject returns an entry as an ActivityPub Page object
func GetEntryObject(entryId uuid.UUID, f *activitypub.Factories) (error, string) {
	err, entry := db.GetDB().ReadEntryById(entryId)
	if err != nil {
		return err, "{}"
	}
	return marshalDocument(f.Objects.CreateObject(entry, true))
}

// GetOutbox returns the outbox collection for a user or magazine. Page 0
// is the collection summary, pages from 1 hold the activities.
func GetOutbox(owner string, isMagazine bool, page int, f *activitypub.Factories) (error, string) {
	database := db.GetDB()

	var subject domain.Actor
	if isMagazine {
		err, magazine := database.ReadMagazineByName(owner)
		if err != nil {
			return err, "{}"
		}
		if magazine.IsRemote() {
			return fmt.Errorf("outbox owner %s is not local", owner), "{}"
		}
		subject = magazine
	} else {
		err, user := database.ReadUserByUsername(owner)
		if err != nil {
			return err, "{}"
		}
		if user.IsRemote() {
			return fmt.Errorf("outbox owner %s is not local", owner), "{}"
		}
		subject = user
	}

	var doc map[string]any
	var err error
	if page == 0 {
		doc, err = f.Collections.OutboxCollection(subject, true)
	} else {
		doc, err = f.Collections.OutboxCollectionItems(subject, page, true)
	}
	if err != nil {
		return err, "{}"
	}
	return marshalDocument(doc)
}

// GetModerators returns the moderators collection for a magazine
func GetModerators(name string, f *activitypub.Factories) (error, string) {
	err, magazine := db.GetDB().ReadMagazineByName(name)
	if err != nil {
		return err, "{}"
	}
	doc, err := f.Collections.ModeratorsCollection(magazine, true)
	if err != nil {
		return err, "{}"
	}
	return marshalDocument(doc)
}

// GetFeatured returns the pinned entries collection for a magazine
func GetFeatured(name string, f *activitypub.Factories) (error, string) {
	err, magazine := db.GetDB().ReadMagazineByName(name)
	if err != nil {
		return err, "{}"
	}
	doc, err := f.Collections.PinnedCollection(magazine, true)
	if err != nil {
		return err, "{}"
	}
	return marshalDocument(doc)
}

func marshalDocument(doc map[string]any) (error, string) {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return err, "{}"
	}
	return nil, string(jsonBytes)
}
