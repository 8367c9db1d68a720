// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pvolkov/product-store/internal/platform/web"
	"github.com/pvolkov/product-store/internal/product"
	"github.com/pvolkov/product-store/internal/service"
)

const contentTypeJSON = "application/json"

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the product API with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product store.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Delete("/", h.DeleteByID)
			r.Put("/", h.Update)
		})
	})

	r.Get("/health", h.HealthCheck)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %d", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// List retrieves products, optionally filtered by one query parameter.
// The filters are mutually exclusive and checked in a fixed order:
// name, then category, then available. The first match wins.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	query := r.URL.Query()

	var list []service.ProductDto
	var err error
	switch {
	case query.Get("name") != "":
		name := query.Get("name")
		mLogger.DebugContext(r.Context(), "Received request to list products by name", "name", name)
		list, err = h.service.FindByName(r.Context(), name)
	case query.Get("category") != "":
		category := query.Get("category")
		mLogger.DebugContext(r.Context(), "Received request to list products by category", "category", category)
		list, err = h.service.FindByCategory(r.Context(), category)
	case query.Get("available") != "":
		available := strings.EqualFold(query.Get("available"), "true")
		mLogger.DebugContext(r.Context(), "Received request to list products by availability", "available", available)
		list, err = h.service.FindByAvailability(r.Context(), available)
	default:
		mLogger.DebugContext(r.Context(), "Received request to list all products")
		list, err = h.service.FindAll(r.Context())
	}
	if err != nil {
		var validationErr *product.ValidationError
		if errors.As(err, &validationErr) {
			mLogger.WarnContext(r.Context(), "Invalid list filter", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, validationErr.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if !web.RequireContentType(w, r, mLogger, contentTypeJSON) {
		return
	}
	payload, ok := h.decodeAndValidate(w, r, mLogger)
	if !ok {
		return
	}

	newProduct, err := h.service.Create(r.Context(), *payload)
	if err != nil {
		var validationErr *product.ValidationError
		if errors.As(err, &validationErr) {
			mLogger.WarnContext(r.Context(), "Invalid product payload", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, validationErr.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "Name", newProduct.Name)
	w.Header().Set("Location", fmt.Sprintf("/products/%d", newProduct.ID))
	web.RespondJSON(w, mLogger, http.StatusCreated, newProduct)
}

// Update fully replaces an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if !web.RequireContentType(w, r, mLogger, contentTypeJSON) {
		return
	}
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	payload, ok := h.decodeAndValidate(w, r, mLogger)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, *payload)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		var validationErr *product.ValidationError
		if errors.As(err, &validationErr) {
			mLogger.WarnContext(r.Context(), "Invalid product payload", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, validationErr.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID. The operation is idempotent:
// deleting an absent product still returns 204.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{
		"status":  http.StatusOK,
		"message": "OK",
	})
}

// parseID extracts the numeric ID from the request path. A non-numeric ID
// cannot address any product, so it responds 404 rather than 400.
func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	pathValueID := r.PathValue("id")
	id, err := strconv.ParseInt(pathValueID, 10, 64)
	if err != nil {
		web.RespondError(w, logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", pathValueID))
		return 0, false
	}
	return id, true
}

// decodeAndValidate parses the request body into a ProductPayload and runs
// struct validation. On failure it writes the 400 response and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*service.ProductPayload, bool) {
	var payload service.ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			logger.WarnContext(r.Context(), "Type mismatch in request body", "field", typeErr.Field, "error", err)
			web.RespondError(w, logger, http.StatusBadRequest,
				fmt.Sprintf("Invalid field %q: expected %s", typeErr.Field, typeErr.Type))
			return nil, false
		}
		logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	if err := h.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// If the error is a validation error, we can extract field-specific errors.
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "max", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return nil, false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		// If it's not a validation error, we can return a generic error.
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return &payload, true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
