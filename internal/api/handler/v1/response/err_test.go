package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrInternalServerError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	RenderErr(ctx, ErrInternalServerError(errors.New("pq: connection reset")))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset", "internals stay out of responses")
	assert.Equal(t, 1, logs.Len(), "the failure is logged exactly once")
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "connection reset")
}

func TestRenderErr_ClientErrorsAreNotLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	RenderErr(ctx, ErrBadRequest(errors.New("name is required")))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, logs.Len())
}
