package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mathtree-backend/application/commands"
	"mathtree-backend/application/commands/bus"
	commandhandlers "mathtree-backend/application/commands/handlers"
	"mathtree-backend/application/queries"
	querybus "mathtree-backend/application/queries/bus"
	queryhandlers "mathtree-backend/application/queries/handlers"
	"mathtree-backend/infrastructure/cache"
	"mathtree-backend/infrastructure/messaging/eventbridge"
	"mathtree-backend/infrastructure/persistence/memory"
	"mathtree-backend/interfaces/http/rest"
	"mathtree-backend/interfaces/http/rest/handlers"
	"mathtree-backend/pkg/auth"
	pkgerrors "mathtree-backend/pkg/errors"
)

// newTestServer wires the full HTTP surface against in-memory storage.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	nodeRepo := memory.NewNodeRepository()
	userRepo := memory.NewUserRepository()
	queryCache := cache.NewMemoryCache()
	publisher := eventbridge.NopPublisher{}

	commandBus := bus.NewCommandBus()
	rootHandler := commandhandlers.NewCreateRootNodeHandler(nodeRepo, publisher, queryCache, logger)
	require.NoError(t, commandBus.Register(commands.CreateRootNodeCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return rootHandler.Handle(ctx, cmd.(commands.CreateRootNodeCommand))
		})))
	childHandler := commandhandlers.NewCreateChildNodeHandler(nodeRepo, publisher, queryCache, logger)
	require.NoError(t, commandBus.Register(commands.CreateChildNodeCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return childHandler.Handle(ctx, cmd.(commands.CreateChildNodeCommand))
		})))

	queryBus := querybus.NewQueryBus()
	forestHandler := queryhandlers.NewListForestHandler(nodeRepo, queryCache, time.Minute, logger)
	require.NoError(t, queryBus.Register(queries.ListForestQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			return forestHandler.Handle(ctx, query.(queries.ListForestQuery))
		})))
	getHandler := queryhandlers.NewGetNodeHandler(nodeRepo, logger)
	require.NoError(t, queryBus.Register(queries.GetNodeQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, query querybus.Query) (interface{}, error) {
			return getHandler.Handle(ctx, query.(queries.GetNodeQuery))
		})))

	jwtService, err := auth.NewJWTService("test-secret", "mathtree-test", time.Hour)
	require.NoError(t, err)
	loginLimiter := auth.NewLoginLimiter(nil, "", 10, time.Minute)
	errorHandler := pkgerrors.NewErrorHandler(logger, true)

	nodeHandler := handlers.NewNodeHandler(commandBus, queryBus, errorHandler, logger)
	authHandler := handlers.NewAuthHandler(userRepo, publisher, jwtService, loginLimiter, errorHandler, logger)

	router := rest.NewRouter(nodeHandler, authHandler, jwtService, []string{"http://localhost:3000"}, logger)
	return router.Setup()
}

func doJSON(t *testing.T, srv http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, srv http.Handler, email string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":       email,
		"password":    "correct-horse-battery",
		"displayName": "Test User",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestCreateAndListNodes(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/nodes", token, map[string]string{"value": "10"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var root queries.GetNodeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	assert.Equal(t, "10", root.Value)
	assert.Nil(t, root.Operation)
	assert.Nil(t, root.ParentID)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/nodes/%s/operations", root.ID), token, map[string]string{
		"operation": "multiply",
		"operand":   "3",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var child queries.GetNodeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &child))
	assert.Equal(t, "30", child.Value)
	require.NotNil(t, child.Operation)
	assert.Equal(t, "multiply", *child.Operation)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	// Listing is public, no token needed
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/nodes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var forest queries.ListForestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forest))
	require.Len(t, forest.Roots, 1)
	assert.Equal(t, 2, forest.NodeCount)
	require.Len(t, forest.Roots[0].Children, 1)
	assert.Equal(t, "30", forest.Roots[0].Children[0].Value)
}

func TestCreateNodeRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/nodes", "", map[string]string{"value": "10"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/nodes", "not-a-valid-token", map[string]string{"value": "10"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDivideByZeroRejected(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "bob@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/nodes", token, map[string]string{"value": "10"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var root queries.GetNodeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/nodes/%s/operations", root.ID), token, map[string]string{
		"operation": "divide",
		"operand":   "0",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	// The failed derivation must not leave a node behind
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/nodes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var forest queries.ListForestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forest))
	assert.Equal(t, 1, forest.NodeCount)
}

func TestChildOfMissingParent(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "carol@example.com")

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/nodes/%s/operations", uuid.New().String()), token, map[string]string{
		"operation": "add",
		"operand":   "1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestGetNodeValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/nodes/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/nodes/%s", uuid.New().String()), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "dave@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "dave@example.com",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dave@example.com", resp.User.Email)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Wrong password and unknown email get the same answer
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "dave@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDuplicateRegistration(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "erin@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":       "erin@example.com",
		"password":    "another-password",
		"displayName": "Erin Again",
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		rec := doJSON(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
