package http_result

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	http_common "github.com/bmmjam/taptap/internal/delivery/http/common"
	"github.com/bmmjam/taptap/internal/model"
	usecase_session "github.com/bmmjam/taptap/internal/usecase/session"
)

type DatasetLog interface {
	Record(v any) error
}

type Controller struct {
	session *usecase_session.Usecase
	dataset DatasetLog

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(session *usecase_session.Usecase, dataset DatasetLog, opts ...ControllerOption) *Controller {
	c := &Controller{
		session: session,
		dataset: dataset,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/result", c.submit)
	router.GET("/results", c.results)
	router.POST("/dataset", c.appendDataset)
}

type SubmitRequestDTO struct {
	UserID  int64          `json:"user_id" binding:"required"`
	Name    string         `json:"name"`
	Emotion string         `json:"emotion" binding:"required"`
	Room    string         `json:"room" binding:"required"`
	Stats   map[string]any `json:"stats"`
}

type SubmitResponseDTO struct {
	OK      bool `json:"ok"`
	Members int  `json:"members"`
}

func (c *Controller) submit(ctx *gin.Context) {
	var req SubmitRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	members, err := c.session.SubmitResultForRoom(
		ctx,
		model.RoomCode(req.Room),
		model.UserID(req.UserID),
		req.Name,
		model.Emotion(req.Emotion),
		model.Stats(req.Stats),
	)
	if err != nil {
		c.logger.Error("failed to submit result", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, usecase_session.ErrRoomNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found",
			})
		case errors.Is(err, usecase_session.ErrMalformedInput):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "invalid request format",
			})
		default:
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, SubmitResponseDTO{OK: true, Members: members})
}

type DominantDTO struct {
	Emotion string `json:"emotion"`
	Title   string `json:"title"`
	Emoji   string `json:"emoji"`
}

type BarDTO struct {
	Emotion string `json:"emotion"`
	Percent int    `json:"percent"`
	Length  int    `json:"length"`
}

type MemberDTO struct {
	Name    string `json:"name"`
	Emotion string `json:"emotion"`
	Emoji   string `json:"emoji"`
}

type SummaryResponseDTO struct {
	Room     string                              `json:"room"`
	Total    int                                 `json:"total"`
	Counts   map[string]int                      `json:"counts"`
	Dominant *DominantDTO                        `json:"dominant,omitempty"`
	Bars     []BarDTO                            `json:"bars"`
	Members  []MemberDTO                         `json:"members"`
	Emotions map[model.Emotion]model.EmotionMeta `json:"emotions"`
}

func (c *Controller) results(ctx *gin.Context) {
	room := model.RoomCode(ctx.Query("room"))
	if room == model.EmptyRoomCode {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "room query parameter is required",
		})
		return
	}

	sum, err := c.session.GetSummary(ctx, room)
	if err != nil {
		if errors.Is(err, usecase_session.ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found",
			})
			return
		}
		c.logger.Error("failed to get summary", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	members, err := c.session.Members(ctx, room)
	if err != nil {
		c.logger.Error("failed to get members", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	resp := SummaryResponseDTO{
		Room:     string(room),
		Total:    sum.Total,
		Counts:   make(map[string]int, len(sum.Counts)),
		Bars:     make([]BarDTO, 0, len(sum.Bars)),
		Members:  make([]MemberDTO, 0, len(members)),
		Emotions: model.Catalog(),
	}
	for e, n := range sum.Counts {
		resp.Counts[string(e)] = n
	}
	if sum.Total > 0 {
		meta := model.Lookup(sum.Dominant)
		resp.Dominant = &DominantDTO{
			Emotion: string(sum.Dominant),
			Title:   meta.Title,
			Emoji:   meta.Emoji,
		}
	}
	for _, b := range sum.Bars {
		resp.Bars = append(resp.Bars, BarDTO{
			Emotion: string(b.Emotion),
			Percent: b.Percent,
			Length:  b.Length,
		})
	}
	for _, m := range members {
		resp.Members = append(resp.Members, MemberDTO{
			Name:    m.DisplayName,
			Emotion: string(m.Emotion),
			Emoji:   model.Lookup(m.Emotion).Emoji,
		})
	}

	ctx.JSON(http.StatusOK, resp)
}

type DatasetResponseDTO struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// appendDataset appends the submitted record to the analytics log as-is,
// tagged with a server-side receipt timestamp. It works regardless of
// room state.
func (c *Controller) appendDataset(ctx *gin.Context) {
	var payload map[string]any
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	id := uuid.New().String()
	payload["received_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	payload["receipt_id"] = id

	if err := c.dataset.Record(payload); err != nil {
		c.logger.Error("failed to append dataset record", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusAccepted, DatasetResponseDTO{OK: true, ID: id})
}
