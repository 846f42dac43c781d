package service

import (
	"encoding/json"
	"log/slog"

	"github.com/totegamma/liveboard"
)

// BroadcastRelay turns committed mutations into room events. Delivery is
// best-effort: failures are logged and never surfaced to the mutating
// caller.
type BroadcastRelay struct {
	rooms *RoomRegistry
}

func NewBroadcastRelay(rooms *RoomRegistry) *BroadcastRelay {
	return &BroadcastRelay{rooms: rooms}
}

func (s *BroadcastRelay) emit(postID, eventType string, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		slog.Error(
			"Failed to marshal room event",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
			slog.String("module", "broadcast"),
		)
		return
	}
	s.rooms.Broadcast(postID, liveboard.Event{
		Type:   eventType,
		PostID: postID,
		Body:   payload,
	})
}

func (s *BroadcastRelay) CommentAdded(postID string, comment liveboard.Comment) {
	s.emit(postID, liveboard.EventCommentAdded, comment)
}

func (s *BroadcastRelay) CommentUpdated(postID, commentID, text string) {
	s.emit(postID, liveboard.EventCommentUpdated, liveboard.CommentUpdatedBody{
		CommentID: commentID,
		Text:      text,
	})
}

// LikeUpdated carries the full like membership, not a delta, so receivers
// that missed an intermediate event still converge.
func (s *BroadcastRelay) LikeUpdated(postID string, likes []string) {
	if likes == nil {
		likes = []string{}
	}
	s.emit(postID, liveboard.EventLikeUpdated, likes)
}
