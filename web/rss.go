package web

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/deemkeen/mammut/db"
	"github.com/deemkeen/mammut/domain"
	"github.com/deemkeen/mammut/util"
	"github.com/google/uuid"
	"github.com/gorilla/feeds"
)

const rssFeedLimit = 50

// buildURL creates proper URLs based on whether SSL domain is configured
func buildURL(conf *util.AppConfig, path string) string {
	if conf.Conf.WithAp && conf.Conf.SslDomain != "" {
		return fmt.Sprintf("https://%s%s", conf.Conf.SslDomain, path)
	}
	return fmt.Sprintf("http://%s:%d%s", conf.Conf.Host, conf.Conf.HttpPort, path)
}

// GetRSS renders the latest entries as an RSS feed. With a magazine name
// the feed is scoped to that magazine, otherwise it spans the instance.
func GetRSS(conf *util.AppConfig, magazineName string) (string, error) {
	database := db.GetDB()

	var err error
	var entries *[]domain.Entry
	var title string
	link := buildURL(conf, "/feed")

	if magazineName != "" {
		errRead, magazine := database.ReadMagazineByName(magazineName)
		if errRead != nil {
			log.Println(fmt.Sprintf("Could not find magazine %s!", magazineName), errRead)
			return "", errors.New("error retrieving magazine")
		}
		err, entries = database.ReadEntriesByMagazineId(magazine.Id, rssFeedLimit)
		if err != nil {
			log.Println(fmt.Sprintf("Could not get entries for %s!", magazineName), err)
			return "", errors.New("error retrieving entries by magazine")
		}
		title = fmt.Sprintf("%s - %s", util.Name, magazineName)
		link = fmt.Sprintf("%s?magazine=%s", link, magazineName)
	} else {
		err, entries = database.ReadLatestEntries(rssFeedLimit)
		if err != nil {
			log.Println("Could not get entries!", err)
			return "", errors.New("error retrieving entries")
		}
		title = fmt.Sprintf("%s - all threads", util.Name)
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: fmt.Sprintf("latest threads on %s", conf.Conf.SslDomain),
		Created:     time.Now(),
	}

	var feedItems []*feeds.Item
	if entries != nil {
		for _, entry := range *entries {
			feedItems = append(feedItems, entryFeedItem(conf, &entry))
		}
	}

	feed.Items = feedItems
	return feed.ToRss()
}

// GetRSSItem renders a single entry as a one-item RSS feed
func GetRSSItem(conf *util.AppConfig, id uuid.UUID) (string, error) {
	err, entry := db.GetDB().ReadEntryById(id)
	if err != nil || entry == nil {
		log.Println("Could not get entry!", err)
		return "", errors.New("error retrieving entry by id")
	}

	feed := &feeds.Feed{
		Title:       entry.Title,
		Link:        &feeds.Link{Href: buildURL(conf, fmt.Sprintf("/feed/%s", entry.Id))},
		Description: fmt.Sprintf("single thread on %s", conf.Conf.SslDomain),
		Created:     time.Now(),
	}

	feed.Items = []*feeds.Item{entryFeedItem(conf, entry)}
	return feed.ToRss()
}

func entryFeedItem(conf *util.AppConfig, entry *domain.Entry) *feeds.Item {
	author := ""
	email := ""
	if entry.User != nil {
		author = entry.User.Username
		email = fmt.Sprintf("%s@%s", entry.User.Username, util.Name)
	}

	// External link entries point at their target, text entries at our page
	href := entry.URL
	if href == "" {
		href = buildURL(conf, fmt.Sprintf("/feed/%s", entry.Id))
	}

	return &feeds.Item{
		Id:      entry.Id.String(),
		Title:   entry.Title,
		Link:    &feeds.Link{Href: href},
		Content: util.MarkdownLinksToHTML(entry.Body),
		Author:  &feeds.Author{Name: author, Email: email},
		Created: entry.CreatedAt,
	}
}
