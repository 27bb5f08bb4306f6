package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryStatsStore_Record(t *testing.T) {
	s := NewMemoryStatsStore()
	ctx := context.Background()

	events := []StatsEvent{
		{Key: "a", Allowed: true, Method: "POST", Path: "/api/auth/signin"},
		{Key: "a", Allowed: false, Method: "POST", Path: "/api/auth/signin"},
		{Key: "b", Allowed: true, Method: "POST", Path: "/api/auth/signup"},
	}
	for _, ev := range events {
		if err := s.Record(ctx, ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if diff := cmp.Diff(Counters{Allowed: 2, Denied: 1}, s.Total()); diff != "" {
		t.Errorf("total mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Counters{Allowed: 1, Denied: 1}, s.Route("POST", "/api/auth/signin")); diff != "" {
		t.Errorf("signin route mismatch (-want +got):\n%s", diff)
	}
}

func TestRedisStatsStore_Increments(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name string
		ev   StatsEvent
		want []hashIncr
	}{
		{
			name: "allowed with route",
			ev:   StatsEvent{Key: "k", Allowed: true, Method: "POST", Path: "/api/auth/signin", At: at},
			want: []hashIncr{
				{key: "rl:total", field: "allowed"},
				{key: "rl:minute:202503040506", field: "allowed", expire: true},
				{key: "rl:route", field: "POST /api/auth/signin:allowed"},
			},
		},
		{
			name: "denied without route",
			ev:   StatsEvent{Key: "k", At: at},
			want: []hashIncr{
				{key: "rl:total", field: "denied"},
				{key: "rl:minute:202503040506", field: "denied", expire: true},
			},
		},
	}

	s := NewRedisStatsStore(nil, WithStatsPrefix("rl:"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.increments(tt.ev)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(hashIncr{})); diff != "" {
				t.Errorf("increments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRedisStatsStore_NilClientIsNoop(t *testing.T) {
	var nilStore *RedisStatsStore
	if err := nilStore.Record(context.Background(), StatsEvent{}); err != nil {
		t.Errorf("expected nil error from nil store, got %v", err)
	}

	s := NewRedisStatsStore(nil)
	if err := s.Record(context.Background(), StatsEvent{Allowed: true}); err != nil {
		t.Errorf("expected nil error without client, got %v", err)
	}
}
