package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

const feedWriteTimeout = 15 * time.Second
const feedReadTimeout = 60 * time.Second
const feedPingTimeout = 15 * time.Second
const feedMinReconnectTimeout = 1 * time.Second
const feedMaxReconnectTimeout = 30 * time.Second

// one backend push frame, republished verbatim on the bus
type FeedEvent struct {
	Topic   string         `json:"topic"`
	Payload map[string]any `json:"payload"`
}

// EventFeed bridges the backend's websocket push channel onto the
// notification bus. The bus stays history-free; the feed is strictly an
// incremental channel and consumers still baseline-load from the store.
type EventFeed struct {
	ctx    context.Context
	cancel context.CancelFunc

	feedUrl string
	bus     *NotificationBus
}

func NewEventFeed(ctx context.Context, feedUrl string, bus *NotificationBus) *EventFeed {
	cancelCtx, cancel := context.WithCancel(ctx)
	return &EventFeed{
		ctx:     cancelCtx,
		cancel:  cancel,
		feedUrl: feedUrl,
		bus:     bus,
	}
}

// Run blocks, reconnecting with capped backoff, until the context is done
func (self *EventFeed) Run() {
	reconnectTimeout := feedMinReconnectTimeout
	for {
		select {
		case <-self.ctx.Done():
			return
		default:
		}

		if self.runOne() {
			// a connection that delivered frames resets the backoff
			reconnectTimeout = feedMinReconnectTimeout
		}

		select {
		case <-self.ctx.Done():
			return
		case <-time.After(reconnectTimeout):
		}
		reconnectTimeout = min(2*reconnectTimeout, feedMaxReconnectTimeout)
	}
}

func (self *EventFeed) runOne() bool {
	ws, _, err := websocket.DefaultDialer.DialContext(self.ctx, self.feedUrl, nil)
	if err != nil {
		glog.Infof("[feed]connect error = %s\n", err)
		return false
	}
	defer ws.Close()

	handleCtx, handleCancel := context.WithCancel(self.ctx)
	defer handleCancel()

	go func() {
		defer handleCancel()

		for {
			select {
			case <-handleCtx.Done():
				return
			case <-time.After(feedPingTimeout):
				ws.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
				if err := ws.WriteMessage(websocket.TextMessage, make([]byte, 0)); err != nil {
					// a websocket deadline timeout cannot be recovered
					return
				}
			}
		}
	}()

	delivered := false
	for {
		select {
		case <-handleCtx.Done():
			return delivered
		default:
		}

		ws.SetReadDeadline(time.Now().Add(feedReadTimeout))
		messageType, message, err := ws.ReadMessage()
		if err != nil {
			glog.Infof("[feed]<- error = %s\n", err)
			return delivered
		}

		switch messageType {
		case websocket.TextMessage, websocket.BinaryMessage:
			if 0 == len(message) {
				// ping
				glog.V(2).Infof("[feed]ping <-\n")
				continue
			}

			event := &FeedEvent{}
			if err := json.Unmarshal(message, event); err != nil {
				glog.V(2).Infof("[feed]drop frame = %s\n", err)
				continue
			}
			if event.Topic == "" {
				glog.V(2).Infof("[feed]drop frame without topic\n")
				continue
			}
			glog.V(2).Infof("[feed]<- %s\n", event.Topic)
			self.bus.Publish(event.Topic, event.Payload)
			delivered = true
		}
	}
}

func (self *EventFeed) Close() {
	self.cancel()
}
