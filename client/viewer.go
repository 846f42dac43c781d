package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/totegamma/liveboard"
)

// Viewer is one client's live view of a post: a snapshot held by the
// Reconciler plus a room subscription feeding events into it. Mutations go
// through the REST client; the direct response is applied immediately and
// the committed change is additionally relayed to the room so other
// members update without refetching.
type Viewer struct {
	api    *Client
	rec    *Reconciler
	postID string

	writeMu sync.Mutex
	ws      *websocket.Conn
	done    chan struct{}
}

// View fetches the post snapshot, joins its room and returns a Viewer in
// the Viewing state. On any failure the reconciler returns to Idle.
func (c *Client) View(ctx context.Context, postID string) (*Viewer, error) {
	rec := NewReconciler()
	rec.BeginLoad(postID)

	post, err := c.GetPost(ctx, postID)
	if err != nil {
		rec.Fail()
		return nil, err
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, realtimeURL(c.baseURL), nil)
	if err != nil {
		rec.Fail()
		return nil, err
	}

	v := &Viewer{
		api:    c,
		rec:    rec,
		postID: postID,
		ws:     ws,
		done:   make(chan struct{}),
	}

	if err := v.send(liveboard.RealtimeRequest{
		Type:   liveboard.RealtimeJoinPost,
		PostID: postID,
	}); err != nil {
		ws.Close()
		rec.Fail()
		return nil, err
	}

	rec.SetSnapshot(post)
	go v.readLoop()
	return v, nil
}

func realtimeURL(baseURL string) string {
	ws := strings.Replace(baseURL, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return ws + "/realtime"
}

func (v *Viewer) send(req liveboard.RealtimeRequest) error {
	v.writeMu.Lock()
	defer v.writeMu.Unlock()
	return v.ws.WriteJSON(req)
}

func (v *Viewer) readLoop() {
	defer close(v.done)
	for {
		var event liveboard.Event
		if err := v.ws.ReadJSON(&event); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug(
					"Realtime connection closed",
					slog.String("error", err.Error()),
					slog.String("module", "client"),
				)
			}
			return
		}
		v.rec.ApplyEvent(event)
	}
}

// Post returns the current local copy of the viewed post.
func (v *Viewer) Post() (liveboard.Post, bool) {
	return v.rec.Post()
}

// Like toggles the viewer's like. The authoritative response replaces the
// local copy; the room is then notified with the full like membership.
func (v *Viewer) Like(ctx context.Context) (string, error) {
	resp, err := v.api.LikePost(ctx, v.postID)
	if err != nil {
		return "", err
	}
	v.rec.ApplyResponse(*resp.Post)

	v.send(liveboard.RealtimeRequest{
		Type:   liveboard.RealtimeNewLike,
		PostID: v.postID,
		Likes:  resp.Post.Likes,
	})
	return resp.Message, nil
}

// Comment adds a comment and relays the new comment to the room.
func (v *Viewer) Comment(ctx context.Context, text string) error {
	resp, err := v.api.AddComment(ctx, v.postID, text)
	if err != nil {
		return err
	}
	v.rec.ApplyResponse(*resp.Post)

	if len(resp.Post.Comments) > 0 {
		comment := resp.Post.Comments[len(resp.Post.Comments)-1]
		v.send(liveboard.RealtimeRequest{
			Type:    liveboard.RealtimeNewComment,
			PostID:  v.postID,
			Comment: &comment,
		})
	}
	return nil
}

// EditComment updates one of the viewer's comments. The server broadcasts
// the commentUpdated event itself.
func (v *Viewer) EditComment(ctx context.Context, commentID, text string) error {
	resp, err := v.api.EditComment(ctx, v.postID, commentID, text)
	if err != nil {
		return err
	}
	v.rec.ApplyResponse(*resp.Post)
	return nil
}

// DeleteComment removes one of the viewer's comments.
func (v *Viewer) DeleteComment(ctx context.Context, commentID string) error {
	resp, err := v.api.DeleteComment(ctx, v.postID, commentID)
	if err != nil {
		return err
	}
	v.rec.ApplyResponse(*resp.Post)
	return nil
}

// Close leaves the room, discards the local copy and returns to Idle.
func (v *Viewer) Close() error {
	err := v.ws.Close()
	<-v.done
	v.rec.Leave()
	return err
}
