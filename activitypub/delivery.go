package activitypub

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/deemkeen/mammut/domain"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	deliveryBatchSize  = 50
	deliveryMaxRetries = 8
	deliveryInterval   = 10 * time.Second
)

// Deliverer signs and posts fully constructed documents to remote inboxes,
// and records local activities so outbox collections can be rebuilt.
// Construction never blocks on the network; everything here runs after a
// document is complete.
type Deliverer struct {
	Resolver *IdentityResolver
	Db       Database
	Http     HTTPClient
	Limiter  *rate.Limiter
}

// NewDeliverer creates a Deliverer with sane pacing defaults
func NewDeliverer(resolver *IdentityResolver, db Database, client HTTPClient) *Deliverer {
	return &Deliverer{
		Resolver: resolver,
		Db:       db,
		Http:     client,
		Limiter:  rate.NewLimiter(rate.Limit(5), 10),
	}
}

// signingKey extracts the private key PEM of a local actor
func signingKey(actor domain.Actor) (string, error) {
	switch a := actor.(type) {
	case *domain.User:
		if a.IsRemote() {
			return "", fmt.Errorf("cannot sign as remote user %s", a.Username)
		}
		return a.WebPrivateKey, nil
	case *domain.Magazine:
		if a.IsRemote() {
			return "", fmt.Errorf("cannot sign as remote magazine %s", a.Name)
		}
		return a.WebPrivateKey, nil
	default:
		panic(fmt.Sprintf("activitypub: unknown actor type %T", actor))
	}
}

// Post signs the document with the acting identity's key and delivers it
// to a single remote inbox
func (d *Deliverer) Post(inboxURI string, actingIdentity domain.Actor, doc map[string]any) error {
	activityJSON := []byte(mustMarshal(doc))

	hash := sha256.Sum256(activityJSON)
	digest := "SHA-256=" + base64.StdEncoding.EncodeToString(hash[:])

	req, err := http.NewRequest("POST", inboxURI, bytes.NewReader(activityJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/activity+json")
	req.Header.Set("Accept", "application/activity+json")
	req.Header.Set("User-Agent", "mammut/1.0 ActivityPub")
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	req.Header.Set("Host", req.URL.Host)
	req.Header.Set("Digest", digest)

	keyPem, err := signingKey(actingIdentity)
	if err != nil {
		return err
	}
	privateKey, err := ParsePrivateKey(keyPem)
	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}

	keyId := d.Resolver.ActorId(actingIdentity) + "#main-key"
	if err := SignRequest(req, privateKey, keyId); err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}

	resp, err := d.Http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote server returned status: %d", resp.StatusCode)
	}

	log.Printf("Delivery: Sent %v to %s (status: %d)", doc["type"], inboxURI, resp.StatusCode)
	return nil
}

// Record persists a local activity row for later outbox rebuilds
func (d *Deliverer) Record(doc map[string]any, audienceId *uuid.UUID) error {
	objectURI := ""
	switch obj := doc["object"].(type) {
	case string:
		objectURI = obj
	case map[string]any:
		if id, ok := obj["id"].(string); ok {
			objectURI = id
		}
	}

	apId, _ := doc["id"].(string)

	return d.Db.CreateActivity(&domain.Activity{
		Id:         uuid.New(),
		ApId:       apId,
		Type:       fmt.Sprintf("%v", doc["type"]),
		ActorURI:   fmt.Sprintf("%v", doc["actor"]),
		ObjectURI:  objectURI,
		AudienceId: audienceId,
		RawJSON:    mustMarshal(doc),
		Local:      true,
		CreatedAt:  time.Now(),
	})
}

// Queue schedules delivery of a document to a set of inboxes. Duplicate
// inboxes are collapsed so each server receives the activity once.
func (d *Deliverer) Queue(actingIdentity domain.Actor, doc map[string]any, inboxes []string) error {
	activityJSON := mustMarshal(doc)

	actorId := actorLocalId(actingIdentity)
	for _, inbox := range dedupe(inboxes) {
		item := &domain.DeliveryQueueItem{
			Id:           uuid.New(),
			InboxURI:     inbox,
			ActorId:      actorId,
			ActivityJSON: activityJSON,
			Attempts:     0,
			NextRetryAt:  time.Now(),
			CreatedAt:    time.Now(),
		}
		if err := d.Db.EnqueueDelivery(item); err != nil {
			log.Printf("Delivery: Failed to queue delivery to %s: %v", inbox, err)
		}
	}
	return nil
}

// signerForId resolves a queued item's acting identity. Users and
// magazines both queue deliveries, so the id is checked against both
// actor tables.
func (d *Deliverer) signerForId(id uuid.UUID) domain.Actor {
	if err, user := d.Db.ReadUserById(id); err == nil && user != nil {
		return user
	}
	if err, magazine := d.Db.ReadMagazineById(id); err == nil && magazine != nil {
		return magazine
	}
	return nil
}

func actorLocalId(actor domain.Actor) uuid.UUID {
	switch a := actor.(type) {
	case *domain.User:
		return a.Id
	case *domain.Magazine:
		return a.Id
	default:
		panic(fmt.Sprintf("activitypub: unknown actor type %T", actor))
	}
}

// StartWorker runs the delivery loop until ctx is cancelled. Failed
// deliveries are retried with exponential backoff and dropped after
// deliveryMaxRetries attempts. Retry policy lives entirely here; document
// construction knows nothing about it.
func (d *Deliverer) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(deliveryInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.drainQueue(ctx)
			}
		}
	}()
}

func (d *Deliverer) drainQueue(ctx context.Context) {
	err, pending := d.Db.ReadPendingDeliveries(deliveryBatchSize)
	if err != nil {
		log.Printf("Delivery: Failed to read pending deliveries: %v", err)
		return
	}
	if pending == nil || len(*pending) == 0 {
		return
	}

	for _, item := range *pending {
		if err := d.Limiter.Wait(ctx); err != nil {
			return
		}

		signer := d.signerForId(item.ActorId)
		if signer == nil {
			log.Printf("Delivery: Dropping item %s, signing actor %s not found", item.Id, item.ActorId)
			_ = d.Db.DeleteDelivery(item.Id)
			continue
		}

		var doc map[string]any
		if err := json.Unmarshal([]byte(item.ActivityJSON), &doc); err != nil {
			log.Printf("Delivery: Dropping malformed item %s: %v", item.Id, err)
			_ = d.Db.DeleteDelivery(item.Id)
			continue
		}

		if err := d.Post(item.InboxURI, signer, doc); err != nil {
			attempts := item.Attempts + 1
			if attempts >= deliveryMaxRetries {
				log.Printf("Delivery: Giving up on %s after %d attempts: %v", item.InboxURI, attempts, err)
				_ = d.Db.DeleteDelivery(item.Id)
				continue
			}
			backoff := time.Duration(1<<uint(attempts)) * time.Minute
			log.Printf("Delivery: Attempt %d to %s failed, retrying in %v: %v", attempts, item.InboxURI, backoff, err)
			_ = d.Db.UpdateDeliveryAttempt(item.Id, attempts, time.Now().Add(backoff))
			continue
		}

		_ = d.Db.DeleteDelivery(item.Id)
	}
}
