package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/cleaning-service-app/models"
)

// Event types
const (
	EventBookingUpdate   = "booking_update"
	EventBookingAssigned = "booking_assigned"
	EventDashboardUpdate = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung koneksi dashboard admin untuk broadcast event booking
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastBookingUpdate menyiarkan perubahan booking (create/status)
func BroadcastBookingUpdate(booking models.Booking) {
	broadcast(Message{
		Event: EventBookingUpdate,
		Data:  booking,
	})
}

// BroadcastBookingAssigned menyiarkan penugasan cleaner ke booking
func BroadcastBookingAssigned(booking models.Booking) {
	broadcast(Message{
		Event: EventBookingAssigned,
		Data:  booking,
	})
}

func BroadcastDashboardUpdate(data interface{}) {
	broadcast(Message{
		Event: EventDashboardUpdate,
		Data:  data,
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
