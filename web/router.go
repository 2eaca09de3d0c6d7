package web

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/deemkeen/mammut/activitypub"
	"github.com/deemkeen/mammut/db"
	"github.com/deemkeen/mammut/util"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Router builds the HTTP handler serving feeds and, when federation is
// enabled, the ActivityPub surface. The caller owns the http.Server.
func Router(conf *util.AppConfig) (http.Handler, error) {
	// Set Gin to use the same log writer as the rest of the application
	gin.DefaultWriter = util.GetLogWriter()
	gin.DefaultErrorWriter = util.GetLogWriter()

	g := gin.Default()
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	g.Static("/static", "./web/static")

	// Global rate limiter: 10 requests per second per IP, burst of 20
	globalLimiter := NewRateLimiter(rate.Limit(10), 20)
	g.Use(RateLimitMiddleware(globalLimiter))

	// RSS Feed
	g.GET("/feed", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")

		magazine := c.Query("magazine")
		rss, err := GetRSS(conf, magazine)
		if err != nil {
			c.Render(404, render.String{Format: ""})
		} else {
			c.Render(200, render.String{Format: rss})
		}
	})

	g.GET("/feed/:id", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")
		feedId, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.Render(404, render.String{Format: ""})
			return
		}

		rssItem, err := GetRSSItem(conf, feedId)
		if err != nil {
			c.Render(404, render.String{Format: ""})
		} else {
			c.Render(200, render.String{Format: rssItem})
		}
	})

	// Endpoints for the ActivityPub functionality
	if conf.Conf.WithAp {
		factories := activitypub.NewFactories(conf.Conf.SslDomain, conf.Conf.DefaultMagazine, db.GetDB())
		inbox := activitypub.NewInboxHandler(db.GetDB(), activitypub.NewDefaultHTTPClient(30*time.Second))

		// Stricter rate limit for ActivityPub endpoints: 5 req/sec per IP
		apLimiter := NewRateLimiter(rate.Limit(5), 10)

		// Max 1MB request body size for ActivityPub activities
		maxBodySize := MaxBytesMiddleware(1 * 1024 * 1024)

		renderDocument := func(c *gin.Context, err error, doc string) {
			c.Header("Content-Type", "application/activity+json; charset=utf-8")
			if err != nil {
				c.Render(404, render.String{Format: "{}"})
			} else {
				c.Render(200, render.String{Format: doc})
			}
		}

		g.GET("/u/:username", func(c *gin.Context) {
			err, doc := GetUserActor(c.Param("username"), factories)
			renderDocument(c, err, doc)
		})

		g.GET("/u/:username/outbox", func(c *gin.Context) {
			username := c.Param("username")
			page := ParsePageParam(c.Query("page"))
			log.Printf("GET /u/%s/outbox (page=%d)", username, page)

			err, doc := GetOutbox(username, false, page, factories)
			renderDocument(c, err, doc)
		})

		g.POST("/u/:username/inbox", RateLimitMiddleware(apLimiter), maxBodySize, func(c *gin.Context) {
			log.Printf("POST /u/%s/inbox", c.Param("username"))
			inbox.Receive(c.Writer, c.Request)
		})

		g.GET("/m/:name", func(c *gin.Context) {
			err, doc := GetMagazineActor(c.Param("name"), factories)
			renderDocument(c, err, doc)
		})

		g.GET("/m/:name/outbox", func(c *gin.Context) {
			name := c.Param("name")
			page := ParsePageParam(c.Query("page"))
			log.Printf("GET /m/%s/outbox (page=%d)", name, page)

			err, doc := GetOutbox(name, true, page, factories)
			renderDocument(c, err, doc)
		})

		g.GET("/m/:name/moderators", func(c *gin.Context) {
			err, doc := GetModerators(c.Param("name"), factories)
			renderDocument(c, err, doc)
		})

		g.GET("/m/:name/featured", func(c *gin.Context) {
			err, doc := GetFeatured(c.Param("name"), factories)
			renderDocument(c, err, doc)
		})

		g.POST("/m/:name/inbox", RateLimitMiddleware(apLimiter), maxBodySize, func(c *gin.Context) {
			log.Printf("POST /m/%s/inbox", c.Param("name"))
			inbox.Receive(c.Writer, c.Request)
		})

		// Serve individual entries as ActivityPub Page objects
		g.GET("/m/:name/t/:id", func(c *gin.Context) {
			entryId, err := uuid.Parse(c.Param("id"))
			if err != nil {
				c.JSON(404, gin.H{"error": "Invalid entry ID"})
				return
			}

			err, doc := GetEntryObject(entryId, factories)
			renderDocument(c, err, doc)
		})

		g.POST("/inbox", RateLimitMiddleware(apLimiter), maxBodySize, func(c *gin.Context) {
			log.Println("POST /inbox (shared inbox)")
			inbox.Receive(c.Writer, c.Request)
		})

		g.GET("/.well-known/webfinger", func(c *gin.Context) {
			c.Header("Content-Type", "application/json; charset=utf-8")

			resource := c.Query("resource")
			if resource == "" || !strings.HasPrefix(resource, "acct:") {
				c.Render(404, render.String{Format: GetWebFingerNotFound()})
				return
			}
			resource = strings.TrimPrefix(resource, "acct:")
			resource = strings.TrimSuffix(resource, fmt.Sprintf("@%s", conf.Conf.SslDomain))
			err, resp := GetWebfinger(resource, conf)
			if err != nil {
				c.Render(404, render.String{Format: GetWebFingerNotFound()})
			} else {
				c.Render(200, render.String{Format: resp})
			}
		})

		// NodeInfo endpoints for server discovery and statistics
		g.GET("/.well-known/nodeinfo", func(c *gin.Context) {
			c.Header("Content-Type", "application/json; charset=utf-8")
			c.Render(200, render.String{Format: GetWellKnownNodeInfo(conf)})
		})

		g.GET("/nodeinfo/2.0", func(c *gin.Context) {
			c.Header("Content-Type", "application/json; charset=utf-8")
			c.Render(200, render.String{Format: GetNodeInfo("2.0", conf)})
		})

		g.GET("/nodeinfo/2.1", func(c *gin.Context) {
			c.Header("Content-Type", "application/json; charset=utf-8")
			c.Render(200, render.String{Format: GetNodeInfo("2.1", conf)})
		})
	}

	return g, nil
}
