package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mathtree-backend/application/commands"
	"mathtree-backend/application/commands/bus"
	"mathtree-backend/application/queries"
	querybus "mathtree-backend/application/queries/bus"
	"mathtree-backend/pkg/auth"
	pkgerrors "mathtree-backend/pkg/errors"
	"mathtree-backend/pkg/utils"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateRootNodeRequest represents the request body for starting a tree
type CreateRootNodeRequest struct {
	Value string `json:"value" validate:"required"`
}

// CreateChildNodeRequest represents the request body for deriving a node
type CreateChildNodeRequest struct {
	Operation string `json:"operation" validate:"required,oneof=add subtract multiply divide"`
	Operand   string `json:"operand" validate:"required"`
}

// CreateRootNode handles POST /nodes
func (h *NodeHandler) CreateRootNode(w http.ResponseWriter, r *http.Request) {
	var req CreateRootNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Value must be a decimal number")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	nodeID := uuid.New().String()
	cmd := commands.CreateRootNodeCommand{
		NodeID:   nodeID,
		AuthorID: userCtx.UserID,
		Value:    value,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondCreated(w, r, nodeID)
}

// CreateChildNode handles POST /nodes/{nodeID}/operations
func (h *NodeHandler) CreateChildNode(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "nodeID")
	if _, err := uuid.Parse(parentID); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid node ID format")
		return
	}

	var req CreateChildNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	operand, err := decimal.NewFromString(req.Operand)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Operand must be a decimal number")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	nodeID := uuid.New().String()
	cmd := commands.CreateChildNodeCommand{
		NodeID:    nodeID,
		AuthorID:  userCtx.UserID,
		ParentID:  parentID,
		Operation: req.Operation,
		Operand:   operand,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondCreated(w, r, nodeID)
}

// GetNode handles GET /nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if _, err := uuid.Parse(nodeID); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid node ID format")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{NodeID: nodeID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ListForest handles GET /nodes
func (h *NodeHandler) ListForest(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListForestQuery{})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// respondCreated reads the node back and returns it with a 201. The write
// already succeeded, so a failed read-back still reports success with just
// the id.
func (h *NodeHandler) respondCreated(w http.ResponseWriter, r *http.Request, nodeID string) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{NodeID: nodeID})
	if err != nil {
		h.logger.Warn("Failed to load node after create",
			zap.String("nodeID", nodeID),
			zap.Error(err),
		)
		h.respondJSON(w, http.StatusCreated, map[string]interface{}{"id": nodeID})
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

func (h *NodeHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *NodeHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
