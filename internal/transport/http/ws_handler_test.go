package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hindi-drill-service/internal/app"
	"hindi-drill-service/internal/domain"
	"hindi-drill-service/internal/infra/memory"
	"hindi-drill-service/internal/xp"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewSessionStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewDrillService(store, quizRepo, xp.NewRuleAwarder(), nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service, nil).ServeWS)
	mux.Handle("/api/feedback", NewFeedbackHandler(service, nil))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dialWS(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketDrillFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server, "quizId=drill-1&userId=u1&explain=1")

	msgType, payload := readNext(conn, t, "started")
	if msgType != "started" {
		t.Fatalf("expected started, got %s", msgType)
	}
	if payload["totalQuestions"].(float64) != 2 {
		t.Fatalf("expected 2 questions, got %v", payload["totalQuestions"])
	}

	// Question 1: correct answer, then advance.
	writeMsg(conn, t, map[string]any{"type": "select", "payload": map[string]any{"index": 1}})
	readNext(conn, t, "state")
	writeMsg(conn, t, map[string]any{"type": "submit"})
	_, result := readNext(conn, t, "answerResult")
	if result["correct"] != true || result["attemptNumber"].(float64) != 1 {
		t.Fatalf("expected correct first attempt, got %v", result)
	}
	writeMsg(conn, t, map[string]any{"type": "next"})
	readNext(conn, t, "state")

	// Question 2: wrong answer, then advance to completion.
	writeMsg(conn, t, map[string]any{"type": "select", "payload": map[string]any{"index": 0}})
	readNext(conn, t, "state")
	writeMsg(conn, t, map[string]any{"type": "submit"})
	_, result = readNext(conn, t, "answerResult")
	if result["correct"] != false {
		t.Fatalf("expected wrong answer, got %v", result)
	}
	writeMsg(conn, t, map[string]any{"type": "next"})
	_, completed := readNext(conn, t, "completed")

	finalResult, ok := completed["result"].(map[string]any)
	if !ok {
		t.Fatalf("expected result in completion payload, got %v", completed)
	}
	if finalResult["score"].(float64) != 50 {
		t.Fatalf("expected score 50, got %v", finalResult["score"])
	}
	if _, ok := completed["feedback"].(map[string]any); !ok {
		t.Fatalf("expected feedback bundle in completion payload")
	}
}

func TestWebSocketOutOfOrderEventsAreHarmless(t *testing.T) {
	server := newTestServer(t)
	conn := dialWS(t, server, "quizId=drill-1&userId=u1&explain=1")
	readNext(conn, t, "started")

	// submit with no selection: the drill must keep going
	writeMsg(conn, t, map[string]any{"type": "submit"})
	typ, payload := readNext(conn, t, "error")
	if typ != "error" || !strings.Contains(payload["message"].(string), "no answer selected") {
		t.Fatalf("expected missing-selection error frame, got %s %v", typ, payload)
	}

	writeMsg(conn, t, map[string]any{"type": "select", "payload": map[string]any{"index": 1}})
	readNext(conn, t, "state")
	writeMsg(conn, t, map[string]any{"type": "submit"})
	readNext(conn, t, "answerResult")

	// double submit is rejected without breaking the session
	writeMsg(conn, t, map[string]any{"type": "submit"})
	readNext(conn, t, "error")
	writeMsg(conn, t, map[string]any{"type": "next"})
	readNext(conn, t, "state")
}

func TestWebSocketRejectsMissingParams(t *testing.T) {
	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/ws?quizId=drill-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func writeMsg(conn *websocket.Conn, t *testing.T, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"drill-1": {
			ID:    "drill-1",
			Title: "Everyday Greetings",
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       "नमस्ते, आप कैसे हैं?",
					Translation:  "Hello, how are you?",
					Options:      []string{"Good night", "Hello, how are you?", "What is your name?"},
					CorrectIndex: 1,
					Difficulty:   domain.DifficultyBeginner,
					Explanation:  "नमस्ते is the standard greeting.",
				},
				{
					ID:           "q2",
					Prompt:       "धन्यवाद",
					Translation:  "Thank you",
					Options:      []string{"Please", "Sorry", "Thank you"},
					CorrectIndex: 2,
					Difficulty:   domain.DifficultyBeginner,
					Explanation:  "धन्यवाद expresses gratitude.",
				},
			},
		},
	}
}
