package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terryso/proxycast/internal/channel"
	"github.com/terryso/proxycast/internal/types"
	"github.com/terryso/proxycast/pkg/agent"
)

var upgrader = websocket.Upgrader{}

// fakeAgent answers requests and, on send_message, streams a canned
// generation onto the requested channel before acknowledging.
func fakeAgent(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			var req frame
			if err := conn.ReadJSON(&req); err != nil {
				return
			}

			switch req.Type {
			case TypeCreateSession:
				conn.WriteJSON(frame{Type: TypeResponse, RequestID: req.RequestID, OK: true, SessionID: "s1"})
			case TypeAgentStatus:
				conn.WriteJSON(frame{Type: TypeResponse, RequestID: req.RequestID, OK: true, Running: true})
			case TypeSendMessage:
				for _, ev := range []types.StreamEvent{
					{Type: types.EventTextDelta, Text: "Hi"},
					{Type: types.EventTextDelta, Text: " there"},
					{Type: types.EventFinalDone},
				} {
					ev := ev
					conn.WriteJSON(frame{Type: TypeEvent, Channel: req.Channel, Event: &ev})
				}
				conn.WriteJSON(frame{Type: TypeResponse, RequestID: req.RequestID, OK: true})
			case TypeDeleteSession:
				conn.WriteJSON(frame{Type: TypeResponse, RequestID: req.RequestID, Error: "session not found"})
			case TypeListSessions:
				conn.WriteJSON(frame{Type: TypeResponse, RequestID: req.RequestID, OK: true, Sessions: []types.Session{
					{ID: "s1", Title: "first topic"},
				}})
			default:
				conn.WriteJSON(frame{Type: TypeResponse, RequestID: req.RequestID, OK: true})
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestCreateSessionRoundTrip(t *testing.T) {
	server := fakeAgent(t)
	defer server.Close()

	broker := channel.NewBroker()
	client, err := Dial(context.Background(), wsURL(server), broker)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	id, err := client.CreateSession(context.Background(), agent.CreateSessionRequest{Provider: "openai"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "s1" {
		t.Errorf("expected session id s1, got %s", id)
	}
}

func TestStatusAndList(t *testing.T) {
	server := fakeAgent(t)
	defer server.Close()

	broker := channel.NewBroker()
	client, err := Dial(context.Background(), wsURL(server), broker)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !status.Running {
		t.Error("expected running status")
	}

	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Title != "first topic" {
		t.Errorf("unexpected sessions: %+v", sessions)
	}
}

func TestStreamEventsReachBroker(t *testing.T) {
	server := fakeAgent(t)
	defer server.Close()

	broker := channel.NewBroker()
	client, err := Dial(context.Background(), wsURL(server), broker)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	events := make(chan types.StreamEvent, 10)
	name := types.NewChannelName(types.NewMessageID())
	sub, err := broker.Subscribe(name, func(ev types.StreamEvent) { events <- ev })
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	err = client.SendMessage(context.Background(), agent.SendRequest{
		Text:      "hello",
		SessionID: "s1",
		Channel:   name,
	})
	if err != nil {
		t.Fatal(err)
	}

	var got []types.StreamEvent
	for len(got) < 3 {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d events", len(got))
		}
	}

	if got[0].Text != "Hi" || got[1].Text != " there" {
		t.Errorf("unexpected deltas: %+v", got)
	}
	if got[2].Type != types.EventFinalDone {
		t.Errorf("expected final_done, got %s", got[2].Type)
	}
}

func TestErrorResponse(t *testing.T) {
	server := fakeAgent(t)
	defer server.Close()

	broker := channel.NewBroker()
	client, err := Dial(context.Background(), wsURL(server), broker)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	err = client.DeleteSession(context.Background(), "ghost")
	if err == nil || !strings.Contains(err.Error(), "session not found") {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestFrameDecode(t *testing.T) {
	raw := `{"type":"event","channel":"chat-events:m1","event":{"type":"tool_start","tool_id":"T1","tool_name":"search","arguments":{"q":"go"}}}`
	var f frame
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatal(err)
	}
	if f.Type != TypeEvent || f.Channel != "chat-events:m1" {
		t.Errorf("unexpected envelope: %+v", f)
	}
	if f.Event == nil || f.Event.Type != types.EventToolStart || f.Event.ToolID != "T1" {
		t.Errorf("unexpected event: %+v", f.Event)
	}
}
