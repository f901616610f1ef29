package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"hindi-drill-service/internal/app"
	"hindi-drill-service/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := app.NewSession("s1", "u1", sampleQuiz(), domain.SessionOptions{})
	store.Put(session)
	if !mr.Exists("drill:session:s1") {
		t.Fatalf("expected redis liveness key to be set")
	}
	if got, _ := mr.Get("drill:session:s1"); got != "greetings-1" {
		t.Fatalf("expected quiz ID as routing hint, got %q", got)
	}

	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present locally")
	}

	store.Delete("s1")
	if mr.Exists("drill:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed locally")
	}
}
