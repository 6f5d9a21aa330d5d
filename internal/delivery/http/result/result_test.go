package http_result

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmmjam/taptap/internal/infra/auditlog"
	"github.com/bmmjam/taptap/internal/infra/membership"
	"github.com/bmmjam/taptap/internal/infra/resultmem"
	"github.com/bmmjam/taptap/internal/infra/roomfile"
	"github.com/bmmjam/taptap/internal/model"
	usecase_room "github.com/bmmjam/taptap/internal/usecase/room"
	usecase_session "github.com/bmmjam/taptap/internal/usecase/session"
)

type env struct {
	engine  *gin.Engine
	session *usecase_session.Usecase
	dataset string
	room    model.RoomCode
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	repo, err := roomfile.New(filepath.Join(dir, "rooms.json"))
	require.NoError(t, err)

	session := usecase_session.New(
		usecase_room.New(repo),
		membership.New(),
		resultmem.New(),
		"t.me/taptap_mood_bot",
	)
	code, _, err := session.CreateRoom(context.Background(), "Пятничные посиделки", 42)
	require.NoError(t, err)

	datasetPath := filepath.Join(dir, "dataset.jsonl")
	controller := New(session, auditlog.NewWriter(datasetPath))

	engine := gin.New()
	controller.RegisterRoutes(engine.Group("/api/v1"))

	return &env{engine: engine, session: session, dataset: datasetPath, room: code}
}

func (e *env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func submitBody(room model.RoomCode, userID int64, name, emotion string) map[string]any {
	return map[string]any{
		"user_id": userID,
		"name":    name,
		"emotion": emotion,
		"room":    string(room),
		"stats":   map[string]any{"taps": 17, "frequency": "3.4"},
	}
}

func TestSubmitResult(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/result", submitBody(e.room, 7, "alice", "excited"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SubmitResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, 1, resp.Members)
}

func TestSubmitResultUnknownRoom(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/result", submitBody("zzzzzz", 7, "alice", "excited"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitResultMalformedBody(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/result", map[string]any{"name": "alice"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.session.SubmitResultForRoom(ctx, e.room, 1, "alice", model.EmotionExcited, nil)
	require.NoError(t, err)
	_, err = e.session.SubmitResultForRoom(ctx, e.room, 2, "bob", model.EmotionExcited, nil)
	require.NoError(t, err)
	_, err = e.session.SubmitResultForRoom(ctx, e.room, 3, "carol", model.EmotionCalm, nil)
	require.NoError(t, err)

	rec := e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/results?room=%s", e.room), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SummaryResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 3, resp.Total)
	require.NotNil(t, resp.Dominant)
	assert.Equal(t, "excited", resp.Dominant.Emotion)
	assert.Equal(t, "🤩", resp.Dominant.Emoji)
	assert.Equal(t, 2, resp.Counts["excited"])
	assert.Equal(t, 1, resp.Counts["calm"])

	// Members come back in first-submission order.
	require.Len(t, resp.Members, 3)
	assert.Equal(t, "alice", resp.Members[0].Name)
	assert.Equal(t, "bob", resp.Members[1].Name)
	assert.Equal(t, "carol", resp.Members[2].Name)

	// The static catalog rides along for client-side legends.
	assert.Contains(t, resp.Emotions, model.EmotionSad)
	assert.NotEmpty(t, resp.Emotions[model.EmotionSad].Color)
}

func TestResultsEmptyRoom(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/results?room=%s", e.room), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SummaryResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
	assert.Nil(t, resp.Dominant)
	assert.Empty(t, resp.Bars)
}

func TestResultsUnknownRoom(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/results?room=zzzzzz", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultsRequiresRoomParameter(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/results", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDatasetAppend(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/dataset", map[string]any{
		"taps":   17,
		"source": "webapp",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp DatasetResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.ID)

	raw, err := os.ReadFile(e.dataset)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, float64(17), record["taps"])
	assert.Equal(t, resp.ID, record["receipt_id"])
	assert.NotEmpty(t, record["received_at"])
}

func TestDatasetRejectsNonJSON(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
