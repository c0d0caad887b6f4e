// Package gateway is the outer surface: the fiber HTTP API and the
// websocket transport feeding the realtime core.
package gateway

import (
	stderrors "errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/lo"

	"feedgram/auth"
	"feedgram/directory"
	"feedgram/domain/chat"
	"feedgram/errors"
	"feedgram/observability"
	"feedgram/realtime"
	"feedgram/repositories"
	"feedgram/store"
)

const defaultHistoryLimit = 50

type Gateway struct {
	log           *slog.Logger
	dispatcher    *realtime.Dispatcher
	registry      *realtime.Registry
	convos        *store.ConversationStore
	group         *store.GroupStore
	posts         *store.PostStore
	users         *directory.Directory
	archive       repositories.IGroupArchive
	monitoring    *observability.MonitoringManager
	tokens        *auth.TokenManager
	sessionBuffer int
}

func New(log *slog.Logger, dispatcher *realtime.Dispatcher, registry *realtime.Registry,
	convos *store.ConversationStore, group *store.GroupStore, posts *store.PostStore,
	users *directory.Directory, archive repositories.IGroupArchive,
	monitoring *observability.MonitoringManager, tokens *auth.TokenManager,
	sessionBuffer int) *Gateway {
	return &Gateway{
		log:           log,
		dispatcher:    dispatcher,
		registry:      registry,
		convos:        convos,
		group:         group,
		posts:         posts,
		users:         users,
		archive:       archive,
		monitoring:    monitoring,
		tokens:        tokens,
		sessionBuffer: sessionBuffer,
	}
}

// App assembles the fiber application with every route registered.
func (g *Gateway) App() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          g.errorHandler,
	})
	app.Use(recover.New())

	app.Get("/api/health", g.health)
	app.Post("/api/auth/token", g.issueToken)

	// Everything below requires a bearer token.
	api := app.Group("/api", g.requireToken)
	api.Get("/stats", g.stats)
	api.Get("/users", g.listUsers)
	api.Get("/chat/group", g.groupHistory)
	api.Get("/chat/group/search", g.searchGroup)
	api.Get("/posts", g.feed)
	api.Post("/posts", g.createPost)
	api.Get("/conversations", g.listConversations)
	api.Post("/conversations", g.openConversation)
	api.Get("/conversations/:id", g.getConversation)
	api.Post("/conversations/:id/messages", g.sendMessage)

	// The socket handshake trusts the userId query parameter; realtime
	// identity is presence-scoped, not credential-scoped.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(g.handleWebSocket))

	return app
}

func (g *Gateway) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	var fiberErr *fiber.Error
	if stderrors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	return c.Status(code).JSON(ErrorResponse{Error: "server_error", Message: message})
}

// requireToken validates the Authorization bearer token and stores the
// caller identity for the handlers.
func (g *Gateway) requireToken(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return unauthorized(c, "Missing bearer token")
	}
	claims, err := g.tokens.ValidateToken(token)
	if err != nil {
		return unauthorized(c, "Invalid token")
	}
	c.Locals("user_id", claims.UserID)
	return c.Next()
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "unauthorized", Message: message})
}

func (g *Gateway) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"connections": g.registry.SessionCount(),
	})
}

// issueToken exchanges a known user id for a session JWT. Profiles are
// provisioned out of band; there is no password flow on this surface.
func (g *Gateway) issueToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	snapshot, ok := g.users.Snapshot(req.UserID)
	if !ok {
		return notFound(c, "Unknown user")
	}
	token, err := g.tokens.GenerateToken(snapshot.ID, snapshot.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token, "user": snapshot})
}

func (g *Gateway) stats(c *fiber.Ctx) error {
	return c.JSON(g.monitoring.Snapshot(g.registry.SessionCount(), g.registry.OnlineIDs()))
}

func (g *Gateway) listUsers(c *fiber.Ctx) error {
	return c.JSON(g.users.All())
}

// groupHistory serves the in-memory group log. A fresh process with an
// empty log falls back to the archived tail, so history survives a
// restart without making the archive authoritative.
func (g *Gateway) groupHistory(c *fiber.Ctx) error {
	limit := limitParam(c)
	if g.group.Len() == 0 {
		messages, err := g.archive.Recent(limit)
		if err != nil {
			g.log.Warn("archive history fallback failed", "error", err)
			messages = nil
		}
		if messages == nil {
			messages = []chat.GroupMessage{}
		}
		return c.JSON(messages)
	}
	return c.JSON(g.group.History(limit))
}

func (g *Gateway) searchGroup(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return badRequestMessage(c, "Query parameter q is required")
	}
	messages, err := g.archive.Search(c.UserContext(), query, limitParam(c))
	if err != nil {
		return err
	}
	if messages == nil {
		messages = []chat.GroupMessage{}
	}
	return c.JSON(messages)
}

func (g *Gateway) feed(c *fiber.Ctx) error {
	enriched := lo.FilterMap(g.posts.Feed(), func(p chat.Post, _ int) (chat.EnrichedPost, bool) {
		author, ok := g.users.Snapshot(p.UserID)
		return chat.EnrichedPost{Post: p, User: author}, ok
	})
	return c.JSON(enriched)
}

func (g *Gateway) createPost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	post, err := g.dispatcher.CreatePost(callerID(c), req.Content, req.ImageURL, req.VideoURL)
	if err != nil {
		return g.domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (g *Gateway) listConversations(c *fiber.Ctx) error {
	convos := g.convos.ForUser(callerID(c))
	if convos == nil {
		convos = []chat.Conversation{}
	}
	return c.JSON(convos)
}

func (g *Gateway) openConversation(c *fiber.Ctx) error {
	var req CreateConversationRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	convo, err := g.dispatcher.OpenConversation(callerID(c), req.PeerID)
	if err != nil {
		return g.domainError(c, err)
	}
	return c.JSON(convo)
}

func (g *Gateway) getConversation(c *fiber.Ctx) error {
	convo, ok := g.convos.Get(c.Params("id"))
	if !ok {
		return notFound(c, "Unknown conversation")
	}
	if !convo.HasParticipant(callerID(c)) {
		return forbidden(c, "Not a participant")
	}
	return c.JSON(convo)
}

func (g *Gateway) sendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	msg, err := g.dispatcher.SendDirectMessage(c.Params("id"), callerID(c), req.Text)
	if err != nil {
		return g.domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// domainError maps the error taxonomy onto HTTP statuses.
func (g *Gateway) domainError(c *fiber.Ctx, err error) error {
	switch {
	case stderrors.Is(err, errors.ErrUnknownConversation),
		stderrors.Is(err, errors.ErrUnknownAuthor):
		return notFound(c, err.Error())
	case stderrors.Is(err, errors.ErrNotParticipant):
		return forbidden(c, err.Error())
	case stderrors.Is(err, errors.ErrEmptyMessage):
		return badRequestMessage(c, err.Error())
	case stderrors.Is(err, errors.ErrDuplicateConversation):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "conflict", Message: err.Error()})
	default:
		return err
	}
}

func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return err
	}
	return validate.Struct(req)
}

func badRequest(c *fiber.Ctx, err error) error {
	return badRequestMessage(c, err.Error())
}

func badRequestMessage(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_request", Message: message})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "not_found", Message: message})
}

func forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "forbidden", Message: message})
}

func limitParam(c *fiber.Ctx) int {
	limit := defaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	return limit
}
