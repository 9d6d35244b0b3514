package websocket

import (
	"net/http"
	"strconv"
	"strings"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/choreledger/internal/model"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as Hub clients.
//
// Query parameters: after=<seq> replays logged events with a greater seq
// before streaming; names=A,B limits delivery to those event names.
func HandleWebSocket(hub *Hub, src EventSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		after := int64(-1)
		if v := q.Get("after"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				http.Error(w, "after must be a non-negative integer", http.StatusBadRequest)
				return
			}
			after = n
		}

		var names []model.EventName
		if v := q.Get("names"); v != "" {
			for _, n := range strings.Split(v, ",") {
				if n = strings.TrimSpace(n); n != "" {
					names = append(names, model.EventName(n))
				}
			}
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // event stream is public
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn, names)
		client.Run(r.Context(), src, after)
		conn.Close(ws.StatusNormalClosure, "")
	}
}
