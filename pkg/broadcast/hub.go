package broadcast

import (
	"Go-Shopping-Sync/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var ErrHubClosed = errors.New("broadcast hub is closed")

const (
	defaultBuffer       = 64
	defaultRelayBuffer  = 256
	defaultPingInterval = 30 * time.Second
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = 10 * time.Second

	snapshotTimeout = 5 * time.Second
)

type (
	// Conn is the part of a websocket connection the hub drives.
	Conn interface {
		ReadMessage() (messageType int, p []byte, err error)
		WriteMessage(messageType int, data []byte) error
		SetReadDeadline(t time.Time) error
		SetWriteDeadline(t time.Time) error
		SetPongHandler(h func(appData string) error)
		Close() error
	}

	// SnapshotSource loads the current items of a store's list. It rebuilds
	// list_updated events that arrive from the relay without their items.
	SnapshotSource interface {
		ListItems(ctx context.Context, storeID string) ([]domain.ListItem, error)
	}

	Config struct {
		// Buffer is the per-viewer outbound queue length.
		Buffer       int
		RelayBuffer  int
		PingInterval time.Duration
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		Relay        Relay
		Snapshots    SnapshotSource
		Metrics      *Metrics
	}

	Viewer struct {
		ID      string
		StoreID string
		UserID  string
		User    domain.ActiveUser

		joined uint64
		send   chan []byte
		closed bool
	}

	// Hub keeps one topic per store and fans events out to the viewers
	// subscribed to it. It is safe for concurrent use.
	Hub struct {
		mu     sync.Mutex
		topics map[string]map[string]*Viewer
		seq    uint64
		closed bool

		cfg      Config
		metrics  *Metrics
		relayOut chan Envelope
		cancel   context.CancelFunc
		wg       sync.WaitGroup
	}
)

func NewHub(cfg Config) *Hub {
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultBuffer
	}
	if cfg.RelayBuffer <= 0 {
		cfg.RelayBuffer = defaultRelayBuffer
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		topics:  make(map[string]map[string]*Viewer),
		cfg:     cfg,
		metrics: metrics,
		cancel:  cancel,
	}

	if cfg.Relay != nil {
		h.relayOut = make(chan Envelope, cfg.RelayBuffer)
		h.wg.Add(2)
		go h.relayPump(ctx)
		go h.relayListen(ctx)
	}
	return h
}

// Messages is the viewer's outbound queue. It is closed when the viewer is
// dropped from its topic.
func (v *Viewer) Messages() <-chan []byte {
	return v.send
}

// Subscribe registers a viewer on the store topic and announces presence to
// everyone on it. An empty viewerID gets a generated one. A live viewer with
// the same id is replaced when it belongs to the same user; an id held by
// another user is not reused and a fresh one is generated instead.
func (h *Hub) Subscribe(storeID, viewerID string, principal domain.Principal) (*Viewer, error) {
	if viewerID == "" {
		viewerID = uuid.NewString()
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	if previous, ok := h.topics[storeID][viewerID]; ok {
		if previous.UserID == principal.UserID {
			h.detachLocked(previous)
		} else {
			viewerID = uuid.NewString()
		}
	}
	topic, ok := h.topics[storeID]
	if !ok {
		topic = make(map[string]*Viewer)
		h.topics[storeID] = topic
	}
	h.seq++
	viewer := &Viewer{
		ID:      viewerID,
		StoreID: storeID,
		UserID:  principal.UserID,
		User:    domain.ActiveUser{Email: principal.Email, Name: principal.Name},
		joined:  h.seq,
		send:    make(chan []byte, h.cfg.Buffer),
	}
	topic[viewerID] = viewer
	h.metrics.LiveViewers.Inc()
	h.mu.Unlock()

	log.Infow("viewer subscribed", "store_id", storeID, "viewer_id", viewerID, "user_id", principal.UserID)
	h.announcePresence(storeID)
	return viewer, nil
}

// Unsubscribe drops the viewer and announces the new presence. Dropping a
// viewer twice is a no-op.
func (h *Hub) Unsubscribe(viewer *Viewer) {
	h.mu.Lock()
	removed := h.detachLocked(viewer)
	h.mu.Unlock()

	if removed {
		log.Infow("viewer unsubscribed", "store_id", viewer.StoreID, "viewer_id", viewer.ID)
		h.announcePresence(viewer.StoreID)
	}
}

func (h *Hub) detachLocked(viewer *Viewer) bool {
	topic, ok := h.topics[viewer.StoreID]
	if !ok || topic[viewer.ID] != viewer {
		return false
	}
	delete(topic, viewer.ID)
	if len(topic) == 0 {
		delete(h.topics, viewer.StoreID)
	}
	if !viewer.closed {
		viewer.closed = true
		close(viewer.send)
	}
	h.metrics.LiveViewers.Dec()
	return true
}

// Publish delivers the event to the local topic and hands it to the relay,
// if any. It never blocks on a slow viewer.
func (h *Hub) Publish(storeID, excludeViewer string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorw("failed to encode event", "store_id", storeID, "type", event.EventType(), "error", err)
		return
	}
	h.metrics.EventsPublished.WithLabelValues(event.EventType()).Inc()
	h.deliver(storeID, excludeViewer, payload)

	if h.relayOut == nil {
		return
	}
	env := Envelope{StoreID: storeID, ExcludeViewer: excludeViewer, Type: event.EventType(), Payload: payload}
	select {
	case h.relayOut <- env:
	default:
		log.Warnw("relay queue full, event not relayed", "store_id", storeID, "type", env.Type)
	}
}

func (h *Hub) deliver(storeID, excludeViewer string, payload []byte) {
	var dropped []*Viewer

	h.mu.Lock()
	for id, viewer := range h.topics[storeID] {
		if id == excludeViewer {
			continue
		}
		select {
		case viewer.send <- payload:
		default:
			dropped = append(dropped, viewer)
		}
	}
	h.mu.Unlock()

	for _, viewer := range dropped {
		h.metrics.DeliveryFailures.Inc()
		log.Warnw("viewer queue full, dropping viewer", "store_id", storeID, "viewer_id", viewer.ID)
		h.Unsubscribe(viewer)
	}
}

func (h *Hub) deliverRemote(env Envelope) {
	if env.Reference == nil {
		h.deliver(env.StoreID, env.ExcludeViewer, env.Payload)
		return
	}
	if h.ViewerCount(env.StoreID) == 0 {
		return
	}

	payload, err := h.rebuild(env)
	if err != nil {
		h.metrics.DeliveryFailures.Inc()
		log.Warnw("failed to rebuild relayed event", "store_id", env.StoreID, "type", env.Type, "error", err)
		return
	}
	h.deliver(env.StoreID, env.ExcludeViewer, payload)
}

func (h *Hub) rebuild(env Envelope) ([]byte, error) {
	if env.Type != domain.EventListUpdated {
		return nil, fmt.Errorf("cannot rebuild %s events", env.Type)
	}
	if h.cfg.Snapshots == nil {
		return nil, errors.New("no snapshot source configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	items, err := h.cfg.Snapshots.ListItems(ctx, env.StoreID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ListUpdated(items, env.Reference.UpdatedBy, time.UnixMilli(env.Reference.Timestamp)))
}

// Presence is local to this process and is never relayed.
func (h *Hub) announcePresence(storeID string) {
	payload, err := json.Marshal(Presence(h.ActiveUsers(storeID), time.Now()))
	if err != nil {
		log.Errorw("failed to encode presence", "store_id", storeID, "error", err)
		return
	}
	h.metrics.EventsPublished.WithLabelValues(domain.EventPresence).Inc()
	h.deliver(storeID, "", payload)
}

// ActiveUsers lists the distinct users viewing the store, in join order.
func (h *Hub) ActiveUsers(storeID string) []domain.ActiveUser {
	h.mu.Lock()
	viewers := make([]*Viewer, 0, len(h.topics[storeID]))
	for _, viewer := range h.topics[storeID] {
		viewers = append(viewers, viewer)
	}
	h.mu.Unlock()

	sort.Slice(viewers, func(i, j int) bool { return viewers[i].joined < viewers[j].joined })

	seen := make(map[string]struct{}, len(viewers))
	users := make([]domain.ActiveUser, 0, len(viewers))
	for _, viewer := range viewers {
		key := viewer.UserID
		if key == "" {
			key = viewer.User.Email
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		users = append(users, viewer.User)
	}
	return users
}

func (h *Hub) ViewerCount(storeID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[storeID])
}

// Close drops every viewer and stops the relay. Subscribe fails afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for storeID, topic := range h.topics {
		for _, viewer := range topic {
			if !viewer.closed {
				viewer.closed = true
				close(viewer.send)
			}
			h.metrics.LiveViewers.Dec()
		}
		delete(h.topics, storeID)
	}
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()
}

// enqueue queues a direct reply to one viewer.
func (h *Hub) enqueue(viewer *Viewer, payload []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if viewer.closed {
		return false
	}
	select {
	case viewer.send <- payload:
		return true
	default:
		return false
	}
}

// Serve pumps the viewer's queue to conn and reads from conn until either
// side gives up. It blocks until the connection is finished and always
// unsubscribes the viewer.
func (h *Hub) Serve(conn Conn, viewer *Viewer) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(conn, viewer)
	}()

	h.readPump(conn, viewer)
	h.Unsubscribe(viewer)
	<-done
}

func (h *Hub) readPump(conn Conn, viewer *Viewer) {
	defer conn.Close()

	extend := func() {
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	}
	extend()
	conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	pong, _ := json.Marshal(domain.LiveAction{Action: domain.ActionPong})
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw("live connection read failed", "store_id", viewer.StoreID, "viewer_id", viewer.ID, "error", err)
			}
			return
		}
		extend()

		var action domain.LiveAction
		if err := json.Unmarshal(message, &action); err != nil {
			continue
		}
		if action.Action == domain.ActionPing {
			h.enqueue(viewer, pong)
		}
	}
}

func (h *Hub) writePump(conn Conn, viewer *Viewer) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-viewer.send:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warnw("live connection write failed", "store_id", viewer.StoreID, "viewer_id", viewer.ID, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) relayPump(ctx context.Context) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-h.relayOut:
			if err := h.cfg.Relay.Publish(ctx, env); err != nil {
				log.Warnw("failed to relay event", "store_id", env.StoreID, "type", env.Type, "error", err)
			}
		}
	}
}

func (h *Hub) relayListen(ctx context.Context) {
	defer h.wg.Done()
	if err := h.cfg.Relay.Listen(ctx, h.deliverRemote); err != nil && ctx.Err() == nil {
		log.Errorw("relay listener stopped", "error", err)
	}
}
