package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers an agent console and blocks until it disconnects.
func ServeWs(hub *Hub, c *websocket.Conn, agentID string) {
	client := &Client{Hub: hub, Conn: c, AgentID: agentID, Send: make(chan []byte, 256), logger: hub.logger}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
