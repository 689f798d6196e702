package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/observability"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(timeout time.Duration) *fiber.App {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), timeout)
	app.Get("/slots/slow", func(c *fiber.Ctx) error {
		<-c.UserContext().Done()
		return apperrors.NewInternalError(c.UserContext().Err())
	})
	app.Get("/slots/boom", func(c *fiber.Ctx) error {
		panic("slot index corrupted")
	})
	app.Get("/slots/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("parking slot", map[string]any{"id": "s1"})
	})
	app.Get("/slots/ok", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": fiber.Map{"items": []string{}}})
	})
	return app
}

func TestErrorEnvelope(t *testing.T) {
	app := newTestApp(50 * time.Millisecond)

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/slots/slow", fiber.StatusGatewayTimeout, "TIMEOUT"},
		{"/slots/boom", fiber.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/slots/missing", fiber.StatusNotFound, "NOT_FOUND"},
		{"/nowhere", fiber.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range cases {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil), -1)
		if err != nil {
			t.Fatalf("%s: %v", tt.path, err)
		}
		var body errorBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.status || body.Error.Code != tt.code {
			t.Fatalf("%s: status=%d body=%+v", tt.path, resp.StatusCode, body)
		}
		if resp.Header.Get(fiber.HeaderXRequestID) == "" {
			t.Fatalf("%s: missing request id", tt.path)
		}
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	app := newTestApp(0)
	req := httptest.NewRequest(fiber.MethodGet, "/slots/ok", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-42")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK || resp.Header.Get(fiber.HeaderXRequestID) != "req-42" {
		t.Fatalf("status=%d request id=%q", resp.StatusCode, resp.Header.Get(fiber.HeaderXRequestID))
	}
}
