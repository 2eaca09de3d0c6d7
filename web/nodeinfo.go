package web

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/deemkeen/mammut/db"
	"github.com/deemkeen/mammut/util"
)

// repositoryURL is advertised in the NodeInfo 2.1 software block
const repositoryURL = "https://github.com/deemkeen/mammut"

// WellKnownNodeInfo represents the /.well-known/nodeinfo response
type WellKnownNodeInfo struct {
	Links []NodeInfoLink `json:"links"`
}

type NodeInfoLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type nodeStats struct {
	totalUsers     int
	activeMonth    int
	activeHalfyear int
	localPosts     int
	localComments  int
}

func collectNodeStats() nodeStats {
	database := db.GetDB()
	stats := nodeStats{}
	var err error

	stats.totalUsers, err = database.CountUsers()
	if err != nil {
		log.Printf("Failed to count users: %v", err)
	}
	stats.activeMonth, err = database.CountActiveUsersMonth()
	if err != nil {
		log.Printf("Failed to count active users (month): %v", err)
	}
	stats.activeHalfyear, err = database.CountActiveUsersHalfYear()
	if err != nil {
		log.Printf("Failed to count active users (half year): %v", err)
	}
	stats.localPosts, err = database.CountLocalEntries()
	if err != nil {
		log.Printf("Failed to count local entries: %v", err)
	}
	stats.localComments, err = database.CountLocalComments()
	if err != nil {
		log.Printf("Failed to count local comments: %v", err)
	}

	return stats
}

// GetNodeInfo returns a NodeInfo JSON response for schema version "2.0"
// or "2.1". Any other version falls back to 2.0. The response is rendered
// by hand to preserve field order for picky consumers.
func GetNodeInfo(version string, conf *util.AppConfig) string {
	stats := collectNodeStats()

	openRegistrations := !conf.Conf.Closed

	nodeName := conf.Conf.NodeName
	if nodeName == "" {
		nodeName = util.Name
	}
	nodeDescription := conf.Conf.NodeDescription
	if nodeDescription == "" {
		nodeDescription = "A federated link aggregator"
	}

	if version != "2.1" {
		version = "2.0"
	}

	software := fmt.Sprintf(`{
    "name": "%s",
    "version": "%s"
  }`, util.Name, util.GetVersion())
	if version == "2.1" {
		software = fmt.Sprintf(`{
    "name": "%s",
    "version": "%s",
    "repository": "%s"
  }`, util.Name, util.GetVersion(), repositoryURL)
	}

	return fmt.Sprintf(`{
  "version": "%s",
  "software": %s,
  "protocols": ["activitypub"],
  "services": {
    "outbound": [],
    "inbound": []
  },
  "usage": {
    "users": {
      "total": %d,
      "activeMonth": %d,
      "activeHalfyear": %d
    },
    "localPosts": %d,
    "localComments": %d
  },
  "openRegistrations": %t,
  "metadata": {
    "nodeName": "%s",
    "nodeDescription": "%s"
  }
}`,
		version,
		software,
		stats.totalUsers,
		stats.activeMonth,
		stats.activeHalfyear,
		stats.localPosts,
		stats.localComments,
		openRegistrations,
		nodeName,
		nodeDescription,
	)
}

// GetWellKnownNodeInfo returns the /.well-known/nodeinfo discovery document
func GetWellKnownNodeInfo(conf *util.AppConfig) string {
	wellKnown := WellKnownNodeInfo{
		Links: []NodeInfoLink{
			{
				Rel:  "http://nodeinfo.diaspora.software/ns/schema/2.0",
				Href: "https://" + conf.Conf.SslDomain + "/nodeinfo/2.0",
			},
			{
				Rel:  "http://nodeinfo.diaspora.software/ns/schema/2.1",
				Href: "https://" + conf.Conf.SslDomain + "/nodeinfo/2.1",
			},
		},
	}

	jsonBytes, err := json.Marshal(wellKnown)
	if err != nil {
		log.Printf("Failed to marshal well-known nodeinfo: %v", err)
		return "{}"
	}

	return string(jsonBytes)
}
