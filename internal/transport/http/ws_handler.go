package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hindi-drill-service/internal/app"
	"hindi-drill-service/internal/domain"
)

// WSHandler drives one drill session per websocket connection.
type WSHandler struct {
	service  *app.DrillService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.DrillService, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, starts a drill session, and pumps session
// events until the client disconnects or the drill completes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}
	opts := optionsFromQuery(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	view, err := h.service.Start(r.Context(), quizID, userID, opts)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	sessionID := view.SessionID
	defer h.service.Abandon(r.Context(), sessionID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var closeOnce sync.Once
	shutdown := func() { closeOnce.Do(func() { close(closeSignals) }) }
	var background sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	trySend := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}

	// completion fires exactly once regardless of which path finishes the
	// drill (last question, countdown, retry flow), and stops the ticker.
	var completeOnce sync.Once
	completedCh := make(chan struct{})
	deliverCompletion := func(c *app.Completion) {
		if c == nil {
			return
		}
		completeOnce.Do(func() {
			close(completedCh)
			trySend(outboundMessage[any]{Type: "completed", Payload: c})
		})
	}

	if opts.TimeLimitSeconds > 0 {
		background.Add(1)
		go func() {
			defer background.Done()
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					tickView, completion, err := h.service.Tick(r.Context(), sessionID)
					if err != nil {
						return
					}
					if completion != nil {
						deliverCompletion(completion)
						return
					}
					trySend(outboundMessage[any]{Type: "state", Payload: tickView})
				case <-completedCh:
					return
				case <-closeSignals:
					return
				}
			}
		}()
	}

	advanceLater := func(after time.Duration) {
		background.Add(1)
		go func() {
			defer background.Done()
			timer := time.NewTimer(after)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-completedCh:
				return
			case <-closeSignals:
				return
			}
			nextView, completion, err := h.service.Next(r.Context(), sessionID)
			if err != nil {
				return
			}
			if completion != nil {
				deliverCompletion(completion)
				return
			}
			trySend(outboundMessage[any]{Type: "state", Payload: nextView})
		}()
	}

	trySend(outboundMessage[any]{Type: "started", Payload: view})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				trySend(errorMessage("invalid select payload"))
				continue
			}
			stateView, err := h.service.Select(r.Context(), sessionID, payload.Index)
			if h.reportError(trySend, err) {
				continue
			}
			trySend(outboundMessage[any]{Type: "state", Payload: stateView})
		case "submit":
			outcome, err := h.service.Submit(r.Context(), sessionID)
			if h.reportError(trySend, err) {
				continue
			}
			trySend(outboundMessage[any]{Type: "answerResult", Payload: outcome})
			if outcome.AutoAdvanceAfter > 0 {
				advanceLater(outcome.AutoAdvanceAfter)
			}
		case "retry":
			stateView, err := h.service.Retry(r.Context(), sessionID)
			if h.reportError(trySend, err) {
				continue
			}
			trySend(outboundMessage[any]{Type: "state", Payload: stateView})
		case "next":
			nextView, completion, err := h.service.Next(r.Context(), sessionID)
			if h.reportError(trySend, err) {
				continue
			}
			if completion != nil {
				deliverCompletion(completion)
				continue
			}
			trySend(outboundMessage[any]{Type: "state", Payload: nextView})
		default:
			trySend(errorMessage("unsupported message type"))
		}
	}

	shutdown()
	background.Wait()
	close(send)
	<-writerDone
}

// reportError surfaces non-fatal errors to the client and reports whether the
// current message should be skipped. Out-of-order UI events (early submit,
// double next) come back as transition errors and are harmless.
func (h *WSHandler) reportError(trySend func(outboundMessage[any]), err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrMissingInput) {
		trySend(errorMessage(err.Error()))
		return true
	}
	h.log.Warn("session operation failed", zap.Error(err))
	trySend(errorMessage(err.Error()))
	return true
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

func optionsFromQuery(r *http.Request) domain.SessionOptions {
	opts := domain.SessionOptions{
		AllowRetry:       r.URL.Query().Get("retry") == "1",
		ShowExplanations: r.URL.Query().Get("explain") == "1",
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		opts.TimeLimitSeconds = limit
	}
	return opts
}
