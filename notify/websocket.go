package notify

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/websocket"
)

// Handler upgrades the request to a WebSocket and streams hub events to it
// as JSON frames until either side goes away. Any origin is accepted.
func (h *Hub) Handler(c echo.Context) error {
	events, cancel, err := h.Subscribe()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "real-time channel unavailable")
	}
	defer cancel()

	stream := func(ws *websocket.Conn) {
		defer ws.Close()

		// Clients never send anything meaningful; reading only detects hangups.
		done := make(chan struct{})
		go func() {
			defer close(done)
			io.Copy(io.Discard, ws)
		}()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := websocket.JSON.Send(ws, ev); err != nil {
					c.Logger().Debugf("socket send: %v", err)
					return
				}
			case <-done:
				return
			}
		}
	}
	websocket.Server{Handler: stream}.ServeHTTP(c.Response(), c.Request())
	return nil
}
