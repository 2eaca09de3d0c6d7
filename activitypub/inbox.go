package activitypub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/deemkeen/mammut/domain"
	"github.com/google/uuid"
)

// incomingActivity is the generic shape shared by every inbound activity
type incomingActivity struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Actor  string `json:"actor"`
	Object any    `json:"object"`
}

// InboxHandler receives federated activities, verifies their HTTP
// signature against the sender's cached key and records them for
// processing.
type InboxHandler struct {
	Db   Database
	Http HTTPClient
}

func NewInboxHandler(db Database, client HTTPClient) *InboxHandler {
	return &InboxHandler{Db: db, Http: client}
}

// Receive processes one incoming ActivityPub activity
func (h *InboxHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Signature") == "" {
		log.Printf("Inbox: Missing HTTP signature")
		http.Error(w, "Missing signature", http.StatusUnauthorized)
		return
	}

	// 1MB max to prevent DoS
	const maxBodySize = 1 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Printf("Inbox: Failed to read body: %v", err)
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body) == maxBodySize {
		log.Printf("Inbox: Request body too large")
		http.Error(w, "Request too large", http.StatusRequestEntityTooLarge)
		return
	}

	var activity incomingActivity
	if err := json.Unmarshal(body, &activity); err != nil {
		log.Printf("Inbox: Failed to parse activity: %v", err)
		http.Error(w, "Invalid activity", http.StatusBadRequest)
		return
	}

	log.Printf("Inbox: Received %s from %s", activity.Type, activity.Actor)

	sender, err := h.actorForURI(activity.Actor)
	if err != nil {
		log.Printf("Inbox: Failed to resolve actor %s: %v", activity.Actor, err)
		http.Error(w, "Failed to verify actor", http.StatusBadRequest)
		return
	}

	// Body was consumed during read, restore it for signature verification
	r.Body = io.NopCloser(bytes.NewReader(body))
	if _, err := VerifyRequest(r, sender.WebPublicKey); err != nil {
		log.Printf("Inbox: Signature verification failed: %v", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	objectURI := ""
	switch obj := activity.Object.(type) {
	case string:
		objectURI = obj
	case map[string]any:
		if id, ok := obj["id"].(string); ok {
			objectURI = id
		}
	}

	record := &domain.Activity{
		Id:        uuid.New(),
		ApId:      activity.ID,
		Type:      activity.Type,
		ActorURI:  activity.Actor,
		ObjectURI: objectURI,
		RawJSON:   string(body),
		Local:     false,
		CreatedAt: time.Now(),
	}

	if err := h.Db.CreateActivity(record); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			log.Printf("Inbox: Activity %s already recorded", activity.ID)
			w.WriteHeader(http.StatusAccepted)
			return
		}
		log.Printf("Inbox: Failed to store activity: %v", err)
		http.Error(w, "Failed to store activity", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// actorForURI returns the cached sender for an actor URI, fetching and
// caching it on first contact.
func (h *InboxHandler) actorForURI(uri string) (*domain.User, error) {
	if err, user := h.Db.ReadUserByApId(uri); err == nil {
		return user, nil
	}

	req, err := http.NewRequest(http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build actor request: %w", err)
	}
	req.Header.Set("Accept", "application/activity+json")

	resp, err := h.Http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch actor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("actor fetch returned status %d", resp.StatusCode)
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse actor document: %w", err)
	}

	username, _ := doc["preferredUsername"].(string)
	if username == "" {
		return nil, fmt.Errorf("actor %s has no preferredUsername", uri)
	}

	publicKeyPem := ""
	if key, ok := doc["publicKey"].(map[string]any); ok {
		publicKeyPem, _ = key["publicKeyPem"].(string)
	}
	if publicKeyPem == "" {
		return nil, fmt.Errorf("actor %s has no public key", uri)
	}

	profileId, _ := doc["url"].(string)
	displayName, _ := doc["name"].(string)

	user := &domain.User{
		Id:           uuid.New(),
		Username:     username,
		DisplayName:  displayName,
		ApId:         uri,
		ApProfileId:  profileId,
		WebPublicKey: publicKeyPem,
		CreatedAt:    time.Now(),
	}
	if err := h.Db.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to cache actor: %w", err)
	}

	log.Printf("Inbox: Cached remote actor %s (%s)", username, uri)
	return user, nil
}
