//go:build e2e

package authtest

import (
	"net/http"
	"testing"

	reqdto "skillmarket/internal/handler/dto/request"
	"skillmarket/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// LoginUser authenticates through the real login endpoint and returns the
// access token for Authorization headers.
func LoginUser(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	body := reqdto.LoginRequest{Email: email, Password: password}
	rec := httptest.PerformRequest(t, router, http.MethodPost, "/api/auth/login", body, "")
	require.Equal(t, http.StatusOK, rec.Code, "Login failed: %s", rec.Body.String())

	var response struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, httptest.DecodeResponseBody(t, rec.Body, &response))
	require.NotEmpty(t, response.AccessToken, "Login returned an empty access token")
	return response.AccessToken
}
