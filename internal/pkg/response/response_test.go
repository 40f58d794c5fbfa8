package response

import (
	"Touchstone/internal/service"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error) map[string]any {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Error(c, err)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestError_MapsWrappedSentinel(t *testing.T) {
	out := render(t, fmt.Errorf("resolve item 3: %w", service.ErrReviewItemResolved))
	assert.EqualValues(t, Conflict, out["code"])
	assert.Equal(t, service.ErrReviewItemResolved.Error(), out["message"])
}

func TestError_HidesInternalErrors(t *testing.T) {
	out := render(t, errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.EqualValues(t, InternalServerError, out["code"])
	assert.Equal(t, service.UnExpectedError.Error(), out["message"])
}
