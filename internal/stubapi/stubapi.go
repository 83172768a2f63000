// Package stubapi is an in-process fake of the Wishly backend used by
// tests: the REST contract plus per-wishlist push channels. It implements
// just enough behavior for the client to exercise full flows (reserve,
// contribute, create) end to end, including the resulting push broadcasts.
// It is a test double, not a reference backend.
package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/wishly-app/wishly/internal/api"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is a fake backend bound to an httptest listener.
type Server struct {
	httpServer *httptest.Server

	mu        sync.Mutex
	wishlists map[int64]api.Wishlist
	gifts     map[int64][]api.Gift // keyed by wishlist id
	stats     api.Stats
	links     map[string]api.LinkMetadata
	nextID    int64

	subscribers map[string]map[*wsClient]bool // keyed by channel name
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// New starts a fake backend. Callers must Close it.
func New() *Server {
	s := &Server{
		wishlists:   make(map[int64]api.Wishlist),
		gifts:       make(map[int64][]api.Gift),
		links:       make(map[string]api.LinkMetadata),
		subscribers: make(map[string]map[*wsClient]bool),
		nextID:      1000,
	}
	s.httpServer = httptest.NewServer(s.routes())
	return s
}

// URL returns the backend's http base URL.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the backend down.
func (s *Server) Close() {
	s.mu.Lock()
	for _, clients := range s.subscribers {
		for client := range clients {
			_ = client.conn.Close()
		}
	}
	s.mu.Unlock()
	s.httpServer.Close()
}

// AddWishlist seeds a wishlist and its gift snapshot.
func (s *Server) AddWishlist(w api.Wishlist, gifts []api.Gift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wishlists[w.ID] = w
	s.gifts[w.ID] = append([]api.Gift(nil), gifts...)
}

// SetStats seeds the aggregate stats payload.
func (s *Server) SetStats(stats api.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
}

// SetLinkMetadata seeds a parse-url response for a product URL.
func (s *Server) SetLinkMetadata(url string, meta api.LinkMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[url] = meta
}

// Push broadcasts a raw payload on one wishlist's push channel.
func (s *Server) Push(wishlistID int64, payload any) {
	s.broadcast(wishlistChannel(wishlistID), payload)
}

// PushLanding broadcasts on the aggregate landing channel.
func (s *Server) PushLanding(payload any) {
	s.broadcast("landing", payload)
}

// SubscriberCount reports how many clients are attached to a wishlist
// channel, so tests can wait for a (re)connect deterministically.
func (s *Server) SubscriberCount(wishlistID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers[wishlistChannel(wishlistID)])
}

// LandingSubscriberCount reports how many clients are attached to the
// aggregate landing channel.
func (s *Server) LandingSubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers["landing"])
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/wishlist/{slug}", s.handleWishlistBySlug).Methods("GET")
	router.HandleFunc("/wishlists/", s.handleListWishlists).Methods("GET")
	router.HandleFunc("/wishlists/", s.handleCreateWishlist).Methods("POST")
	router.HandleFunc("/wishlists/{id}", s.handleUpdateWishlist).Methods("PUT")
	router.HandleFunc("/wishlists/{id}", s.handleDeleteWishlist).Methods("DELETE")
	router.HandleFunc("/wishlists/{id}/gifts", s.handleGifts).Methods("GET")
	router.HandleFunc("/gifts/", s.handleCreateGift).Methods("POST")
	router.HandleFunc("/gifts/{id}", s.handleUpdateGift).Methods("PUT")
	router.HandleFunc("/gifts/{id}", s.handleDeleteGift).Methods("DELETE")
	router.HandleFunc("/gifts/{id}/reserve", s.handleReserve).Methods("POST")
	router.HandleFunc("/gifts/{id}/contribute", s.handleContribute).Methods("POST")
	router.HandleFunc("/stats", s.handleStats).Methods("GET")
	router.HandleFunc("/api/parse-url", s.handleParseLink).Methods("GET")
	router.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	router.HandleFunc("/auth/register", s.handleLogin).Methods("POST")
	router.HandleFunc("/users/{id}", s.handleUser).Methods("GET")

	router.HandleFunc("/ws/wishlists/{id}", s.handleSocket)
	router.HandleFunc("/ws/landing", s.handleLandingSocket)

	return router
}

func (s *Server) handleWishlistBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, wl := range s.wishlists {
		if wl.Slug == slug {
			respondJSON(w, http.StatusOK, wl)
			return
		}
	}
	respondError(w, http.StatusNotFound, "wishlist not found")
}

func (s *Server) handleListWishlists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lists := make([]api.Wishlist, 0, len(s.wishlists))
	for _, wl := range s.wishlists {
		lists = append(lists, wl)
	}
	respondJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateWishlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	wl := api.Wishlist{
		ID:          s.nextID,
		Slug:        slugify(body.Title),
		Title:       body.Title,
		Description: body.Description,
		OwnerID:     7,
	}
	s.wishlists[wl.ID] = wl
	respondJSON(w, http.StatusCreated, wl)
}

func (s *Server) handleUpdateWishlist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid wishlist id")
		return
	}
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.wishlists[id]
	if !ok {
		respondError(w, http.StatusNotFound, "wishlist not found")
		return
	}
	wl.Title = body.Title
	wl.Description = body.Description
	s.wishlists[id] = wl
	respondJSON(w, http.StatusOK, wl)
}

func (s *Server) handleDeleteWishlist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid wishlist id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wishlists[id]; !ok {
		respondError(w, http.StatusNotFound, "wishlist not found")
		return
	}
	delete(s.wishlists, id)
	delete(s.gifts, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGifts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid wishlist id")
		return
	}

	authed := strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	defer s.mu.Unlock()
	gifts := append([]api.Gift(nil), s.gifts[id]...)
	if !authed {
		// Unauthenticated requests get the restricted projection.
		for i := range gifts {
			gifts[i].ReservedBy = nil
			gifts[i].Contributors = nil
		}
	}
	respondJSON(w, http.StatusOK, gifts)
}

func (s *Server) handleCreateGift(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	wishlistID, err := strconv.ParseInt(query.Get("wishlist_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "wishlist_id is required")
		return
	}
	title := query.Get("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	price, _ := strconv.ParseFloat(query.Get("price"), 64)

	s.mu.Lock()
	s.nextID++
	gift := api.Gift{
		ID:       s.nextID,
		Title:    title,
		Price:    price,
		URL:      query.Get("url"),
		ImageURL: query.Get("image_url"),
	}
	s.gifts[wishlistID] = append(s.gifts[wishlistID], gift)
	s.mu.Unlock()

	s.Push(wishlistID, map[string]any{
		"type":    "gift_added",
		"gift_id": gift.ID,
		"gift":    gift,
	})
	respondJSON(w, http.StatusCreated, gift)
}

func (s *Server) handleUpdateGift(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid gift id")
		return
	}
	query := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()
	wishlistID, index, ok := s.findGift(id)
	if !ok {
		respondError(w, http.StatusNotFound, "gift not found")
		return
	}
	gift := s.gifts[wishlistID][index]
	gift.Title = query.Get("title")
	if price, err := strconv.ParseFloat(query.Get("price"), 64); err == nil {
		gift.Price = price
	}
	gift.URL = query.Get("url")
	gift.ImageURL = query.Get("image_url")
	s.gifts[wishlistID][index] = gift
	respondJSON(w, http.StatusOK, gift)
}

func (s *Server) handleDeleteGift(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid gift id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wishlistID, index, ok := s.findGift(id)
	if !ok {
		respondError(w, http.StatusNotFound, "gift not found")
		return
	}
	s.gifts[wishlistID] = append(s.gifts[wishlistID][:index], s.gifts[wishlistID][index+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid gift id")
		return
	}

	s.mu.Lock()
	wishlistID, index, ok := s.findGift(id)
	if !ok {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "gift not found")
		return
	}
	if s.gifts[wishlistID][index].IsReserved {
		s.mu.Unlock()
		respondError(w, http.StatusConflict, "gift is already reserved")
		return
	}
	s.gifts[wishlistID][index].IsReserved = true
	s.mu.Unlock()

	s.Push(wishlistID, map[string]any{
		"type":    "item_reserved",
		"gift_id": id,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "reserved"})
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid gift id")
		return
	}
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	s.mu.Lock()
	wishlistID, index, ok := s.findGift(id)
	if !ok {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "gift not found")
		return
	}
	gift := s.gifts[wishlistID][index]
	if amount > gift.Price-gift.Collected {
		s.mu.Unlock()
		respondError(w, http.StatusBadRequest, "amount exceeds remaining balance")
		return
	}
	gift.Collected += amount
	if gift.Collected >= gift.Price {
		gift.IsReserved = true
	}
	s.gifts[wishlistID][index] = gift
	total := gift.Collected
	s.mu.Unlock()

	s.Push(wishlistID, map[string]any{
		"type":    "contribution_added",
		"gift_id": id,
		"amount":  amount,
		"total":   total,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	respondJSON(w, http.StatusOK, s.stats)
}

func (s *Server) handleParseLink(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")

	s.mu.Lock()
	defer s.mu.Unlock()
	if meta, ok := s.links[target]; ok {
		respondJSON(w, http.StatusOK, meta)
		return
	}
	respondError(w, http.StatusBadGateway, "could not parse url")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid credentials"})
		return
	}
	name := body.Name
	if name == "" {
		name = strings.Split(body.Email, "@")[0]
	}
	respondJSON(w, http.StatusOK, api.AuthResponse{
		AccessToken: "test-token-" + uuid.NewString(),
		User:        api.User{ID: 7, Email: body.Email, Name: name},
	})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	respondJSON(w, http.StatusOK, api.User{ID: id, Email: "user@test", Name: "Test User"})
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "wishlist id is required", http.StatusBadRequest)
		return
	}
	s.serveSocket(w, r, wishlistChannel(id))
}

func (s *Server) handleLandingSocket(w http.ResponseWriter, r *http.Request) {
	s.serveSocket(w, r, "landing")
}

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 64),
	}

	s.mu.Lock()
	if s.subscribers[channel] == nil {
		s.subscribers[channel] = make(map[*wsClient]bool)
	}
	s.subscribers[channel][client] = true
	s.mu.Unlock()

	go client.writePump()
	go s.readPump(client, channel)
}

// readPump drains the client until it disconnects, then unregisters it.
func (s *Server) readPump(client *wsClient, channel string) {
	defer func() {
		s.mu.Lock()
		delete(s.subscribers[channel], client)
		s.mu.Unlock()
		close(client.send)
		_ = client.conn.Close()
	}()
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (s *Server) broadcast(channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.subscribers[channel] {
		select {
		case client.send <- data:
		default:
			// Slow client; drop the message rather than block the test.
		}
	}
}

func (s *Server) findGift(id int64) (wishlistID int64, index int, ok bool) {
	for wid, gifts := range s.gifts {
		for i, g := range gifts {
			if g.ID == id {
				return wid, i, true
			}
		}
	}
	return 0, 0, false
}

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}

func wishlistChannel(id int64) string {
	return fmt.Sprintf("wishlist:%d", id)
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"error": message})
}
