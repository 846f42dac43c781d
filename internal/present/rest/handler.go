package rest

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/liveboard"
	"github.com/totegamma/liveboard/internal/domain"
	"github.com/totegamma/liveboard/internal/present/rest/middleware"
	"github.com/totegamma/liveboard/internal/present/rest/presenter"
	"github.com/totegamma/liveboard/internal/service"
	"github.com/totegamma/liveboard/internal/usecase"
)

type Handler struct {
	post  *usecase.PostUsecase
	user  *usecase.UserUsecase
	auth  *service.AuthService
	relay *service.BroadcastRelay
	rooms *service.RoomRegistry
}

func NewHandler(
	post *usecase.PostUsecase,
	user *usecase.UserUsecase,
	auth *service.AuthService,
	relay *service.BroadcastRelay,
	rooms *service.RoomRegistry,
) *Handler {
	return &Handler{
		post:  post,
		user:  user,
		auth:  auth,
		relay: relay,
		rooms: rooms,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, authMW *middleware.AuthMiddleware) {
	e.POST("/auth/register", h.handleRegister)
	e.POST("/auth/login", h.handleLogin)
	e.POST("/auth/logout", h.handleLogout, authMW.RequireAuth)

	e.POST("/posts", h.handleCreatePost, authMW.RequireAuth)
	e.GET("/posts", h.handleListPosts)
	e.GET("/posts/:id", h.handleGetPost)
	e.PUT("/posts/:id", h.handleUpdatePost, authMW.RequireAuth)
	e.DELETE("/posts/:id", h.handleDeletePost, authMW.RequireAuth)
	e.POST("/posts/:id/like", h.handleLikePost, authMW.RequireAuth)
	e.POST("/posts/:id/comment", h.handleAddComment, authMW.RequireAuth)
	e.PUT("/posts/:id/comment/:commentId", h.handleEditComment, authMW.RequireAuth)
	e.DELETE("/posts/:id/comment/:commentId", h.handleDeleteComment, authMW.RequireAuth)

	e.GET("/realtime", h.handleRealtime)
}

func requester(c echo.Context) string {
	id, _ := c.Request().Context().Value(domain.RequesterIdCtxKey).(string)
	return id
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var req liveboard.Credentials
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "Username and password are required")
	}

	user, err := h.user.Register(ctx, req.Username, req.Password)
	if err != nil {
		return presenter.FromError(c, err)
	}

	token, err := h.auth.Issue(user)
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.Created(c, liveboard.AuthResponse{
		Message: "User registered successfully",
		User:    &user,
		Token:   token,
	})
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req liveboard.Credentials
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "Username and password are required")
	}

	user, err := h.user.Login(ctx, req.Username, req.Password)
	if err != nil {
		return presenter.FromError(c, err)
	}

	token, err := h.auth.Issue(user)
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, liveboard.AuthResponse{
		Message: "Login successful",
		User:    &user,
		Token:   token,
	})
}

func (h *Handler) handleLogout(c echo.Context) error {
	ctx := c.Request().Context()

	split := strings.Split(c.Request().Header.Get("Authorization"), " ")
	if len(split) != 2 {
		return presenter.Unauthorized(c, "No token, authorization denied")
	}

	if err := h.auth.Revoke(ctx, split[1]); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, liveboard.AuthResponse{Message: "Logged out"})
}

func (h *Handler) handleCreatePost(c echo.Context) error {
	ctx := c.Request().Context()

	var req liveboard.PostRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "Title and content are required")
	}

	post, err := h.post.Create(ctx, requester(c), req.Title, req.Content)
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.Created(c, liveboard.PostResponse{
		Message: "Post created successfully",
		Post:    &post,
	})
}

func (h *Handler) handleListPosts(c echo.Context) error {
	ctx := c.Request().Context()

	page := 1
	if pageStr := c.QueryParam("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid page parameter")
		}
		page = parsed
	}
	limit := 10
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = parsed
	}

	posts, total, err := h.post.List(ctx, page, limit)
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, liveboard.PostListResponse{
		Posts: posts,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) handleGetPost(c echo.Context) error {
	ctx := c.Request().Context()

	post, err := h.post.Get(ctx, c.Param("id"))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, echo.Map{"post": post})
}

func (h *Handler) handleUpdatePost(c echo.Context) error {
	ctx := c.Request().Context()

	var req liveboard.PostRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "Title and content are required")
	}

	post, err := h.post.Edit(ctx, requester(c), c.Param("id"), req.Title, req.Content)
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, liveboard.PostResponse{
		Message: "Post updated successfully",
		Post:    &post,
	})
}

func (h *Handler) handleDeletePost(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.post.Delete(ctx, requester(c), c.Param("id")); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.OK(c, liveboard.PostResponse{Message: "Post deleted successfully"})
}

func (h *Handler) handleLikePost(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("id")

	post, liked, err := h.post.ToggleLike(ctx, requester(c), postID)
	if err != nil {
		return presenter.FromError(c, err)
	}

	h.relay.LikeUpdated(postID, post.Likes)

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	return presenter.OK(c, liveboard.PostResponse{
		Message: message,
		Post:    &post,
	})
}

func (h *Handler) handleAddComment(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("id")

	var req liveboard.CommentRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "Comment text is required")
	}

	post, comment, err := h.post.AddComment(ctx, requester(c), postID, req.Text)
	if err != nil {
		return presenter.FromError(c, err)
	}

	h.relay.CommentAdded(postID, comment)

	return presenter.OK(c, liveboard.PostResponse{
		Message: "Comment added successfully",
		Post:    &post,
	})
}

func (h *Handler) handleEditComment(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("id")
	commentID := c.Param("commentId")

	var req liveboard.CommentRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequestMessage(c, "Comment text is required")
	}

	post, err := h.post.EditComment(ctx, requester(c), postID, commentID, req.Text)
	if err != nil {
		return presenter.FromError(c, err)
	}

	h.relay.CommentUpdated(postID, commentID, req.Text)

	return presenter.OK(c, liveboard.PostResponse{
		Message: "Comment updated successfully",
		Post:    &post,
	})
}

func (h *Handler) handleDeleteComment(c echo.Context) error {
	ctx := c.Request().Context()

	post, err := h.post.DeleteComment(ctx, requester(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		return presenter.FromError(c, err)
	}

	return presenter.OK(c, liveboard.PostResponse{
		Message: "Comment deleted successfully",
		Post:    &post,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	conn := service.NewRoomConn()
	defer h.rooms.Drop(conn)

	quit := make(chan struct{}, 1)

	go func() {
		for {
			var req liveboard.RealtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case liveboard.RealtimeJoinPost:
				if req.PostID != "" {
					h.rooms.Join(req.PostID, conn)
					slog.DebugContext(
						ctx, "Socket joined post room",
						slog.String("postId", req.PostID),
						slog.String("module", "socket"),
					)
				}
			case liveboard.RealtimeNewComment:
				// client-originated relay of a committed comment
				if req.PostID != "" && req.Comment != nil {
					h.relay.CommentAdded(req.PostID, *req.Comment)
				}
			case liveboard.RealtimeNewLike:
				if req.PostID != "" {
					h.relay.LikeUpdated(req.PostID, req.Likes)
				}
			case liveboard.RealtimeHeartbeat:
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event, ok := <-conn.Events():
			if !ok {
				return nil
			}
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
