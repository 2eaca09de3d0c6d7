package web

import (
	"fmt"

	"github.com/deemkeen/mammut/db"
	"github.com/deemkeen/mammut/util"
)

// GetWebfinger resolves an account name to its actor URI. Users and
// magazines share one namespace on the wire; users win a tie.
func GetWebfinger(name string, conf *util.AppConfig) (error, string) {
	if valid, reason := util.IsValidWebFingerUsername(name); !valid {
		return fmt.Errorf("invalid webfinger name %q: %s", name, reason), GetWebFingerNotFound()
	}

	database := db.GetDB()

	href := ""
	if err, user := database.ReadUserByUsername(name); err == nil && !user.IsRemote() {
		href = fmt.Sprintf("https://%s/u/%s", conf.Conf.SslDomain, user.Username)
	} else if err, magazine := database.ReadMagazineByName(name); err == nil && !magazine.IsRemote() {
		href = fmt.Sprintf("https://%s/m/%s", conf.Conf.SslDomain, magazine.Name)
	} else {
		return fmt.Errorf("no local account %q", name), GetWebFingerNotFound()
	}

	return nil, fmt.Sprintf(
		`{
					"subject": "acct:%s@%s",

					"links": [
						{
							"rel": "self",
							"type": "application/activity+json",
							"href": "%s"
						}
					]
				}`, name, conf.Conf.SslDomain, href)
}

func GetWebFingerNotFound() string {
	return `{"detail":"Not Found"}`
}
