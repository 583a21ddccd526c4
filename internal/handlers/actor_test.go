package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

func TestRequireActorReadsTypedIdentity(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(c *fiber.Ctx)
		wantID  int64
		wantErr error
	}{
		{"coach", func(c *fiber.Ctx) { c.Locals("user_id", int64(3)); c.Locals("role", models.RoleCoach) }, 3, nil},
		{"client", func(c *fiber.Ctx) { c.Locals("user_id", int64(3)); c.Locals("role", models.RoleClient) }, 0, services.ErrForbidden},
		{"string id", func(c *fiber.Ctx) { c.Locals("user_id", "3"); c.Locals("role", models.RoleCoach) }, 0, errUnauthorized},
		{"missing role", func(c *fiber.Ctx) { c.Locals("user_id", int64(3)) }, 0, errUnauthorized},
		{"anonymous", func(*fiber.Ctx) {}, 0, errUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var gotID int64
			var gotErr error
			app.Get("/", func(c *fiber.Ctx) error {
				tc.setup(c)
				gotID, gotErr = requireActor(c, models.RoleCoach)
				return c.SendStatus(http.StatusNoContent)
			})
			doRequest(t, app, http.MethodGet, "/", "")
			if gotID != tc.wantID || !errors.Is(gotErr, tc.wantErr) {
				t.Fatalf("expected (%d, %v), got (%d, %v)", tc.wantID, tc.wantErr, gotID, gotErr)
			}
		})
	}
}
