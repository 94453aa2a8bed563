package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/serverutils"
	"ai-research-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("/sessions", c.GetAllSessions)
	h.Post("/sessions", c.CreateSession)
	h.Get("/sessions/:id/history", c.GetChatHistory)
	h.Delete("/sessions/:id", c.DeleteSession)
	h.Post("/ask", c.Ask)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateSession(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chat session", res))
}

func (c *chatController) GetAllSessions(ctx *fiber.Ctx) error {
	res, err := c.service.GetAllSessions(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all chat sessions", res))
}

func (c *chatController) GetChatHistory(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session id"))
	}

	res, err := c.service.GetChatHistory(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session id"))
	}

	if err := c.service.DeleteSession(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat session", nil))
}

// Ask streams the pipeline answer back as newline-delimited JSON events.
// Accepts JSON or multipart form bodies; multipart may carry a "document"
// (PDF) or "image" file alongside the text fields.
func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	document, err := readAttachment(ctx, "document")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to read document attachment"))
	}
	image, err := readAttachment(ctx, "image")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to read image attachment"))
	}

	// The stream writer outlives this handler, so the pipeline runs on its
	// own context, cancelled when the client goes away.
	streamCtx, cancel := context.WithCancel(context.Background())

	events, err := c.service.Ask(streamCtx, &req, document, image)
	if err != nil {
		cancel()
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/x-ndjson")
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		enc := json.NewEncoder(w)
		for event := range events {
			if err := enc.Encode(event); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}

func readAttachment(ctx *fiber.Ctx, field string) ([]byte, error) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		// Missing file or a non-multipart body means no attachment.
		return nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
