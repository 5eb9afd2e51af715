package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"civicpulse/config"
)

var testCfg = &config.Config{
	JWTSecret:        "test-secret",
	JWTRefreshSecret: "test-refresh-secret",
}

// A concurrent registration can slip past any pre-insert lookup; the unique
// email index then rejects the insert, which must read as 400, not 500.
func TestRegisterMapsDuplicateEmailToBadRequest(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key on insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: civicpulse.users index: email_1",
		}))

		gin.SetMode(gin.TestMode)
		router := gin.New()
		logger := zap.NewNop()
		router.POST("/auth/register", func(c *gin.Context) {
			Register(c, mt.DB, testCfg, logger)
		})

		body := bytes.NewBufferString(`{"name":"Ana","email":"ana@example.com","password":"secret-pass"}`)
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
		}
		if !bytes.Contains(rr.Body.Bytes(), []byte("already registered")) {
			t.Fatalf("unexpected body: %s", rr.Body.String())
		}
	})
}
