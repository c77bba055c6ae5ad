package infra

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RoomNotifier fans state changes out to a room's live subscribers over a
// redis pub/sub channel. Delivery is best effort: there is no persistence
// or replay, and a publish failure must never fail the state change that
// triggered it — callers log the error and move on.
type RoomNotifier struct {
	rdb *redis.Client
}

func NewRoomNotifier(rdb *redis.Client) *RoomNotifier {
	return &RoomNotifier{rdb: rdb}
}

func RoomChannel(roomID string) string {
	return "room:" + roomID
}

func (n *RoomNotifier) NotifyRoom(ctx context.Context, roomID string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal room event: %v", err)
	}
	return n.rdb.Publish(ctx, RoomChannel(roomID), body).Err()
}
