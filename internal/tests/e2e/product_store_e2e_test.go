// Package e2e provides end-to-end tests for the product store application.
// The suite leverages `testcontainers-go` to spin up a real PostgreSQL instance in a Docker container,
// ensuring tests run against a production-like environment. It uses `testify/suite` for better structure
// and lifecycle management (`SetupSuite`, `TearDownSuite`, `SetupTest`).
//
// Key features of the test suite:
//   - A PostgreSQL container is started and database migrations are applied before tests run.
//   - The actual application handler is run in an `httptest.Server`.
//   - Each test case is fully isolated by truncating the products table before it runs.
//   - Test coverage includes happy path CRUD, content-type enforcement, idempotent
//     delete, list filter precedence, and the embedded landing page.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pvolkov/product-store/internal/app"
	"github.com/pvolkov/product-store/internal/platform/bootstrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "PRODUCT_SKIP_E2E_TESTS"

// productURL is the base URL for the product API.
const productURL = "/products"

// productJSON mirrors the wire shape of a serialized product.
type productJSON struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Available   bool   `json:"available"`
	Category    string `json:"category"`
}

// ProductStoreE2ESuite is a test suite for end-to-end tests of the product store.
type ProductStoreE2ESuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	server      *httptest.Server
	httpClient  *http.Client
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite initializes the test suite by setting up the PostgreSQL container, database connection, and application handler.
func (s *ProductStoreE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "products"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. Create the pool through bootstrap so the decimal codec is registered
	s.dbPool, err = bootstrap.NewDbPool(s.ctx, connStr, time.Minute)
	require.NoError(s.T(), err, "Failed to create pgx pool")

	// 4. Apply database migrations
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "..", "..", "..", "migrations")
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for E2E tests")

	// 5. Run the real application handler in an httptest server
	deps := app.SetupDependencies(s.dbPool, s.logger)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
	s.logger.Info("Initialization complete for ProductStoreE2ESuite", "url", s.server.URL)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreE2ESuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.server != nil {
		s.server.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *ProductStoreE2ESuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestProductStoreE2E runs the product store end-to-end tests.
func TestProductStoreE2E(t *testing.T) {
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(ProductStoreE2ESuite))
}

// doRequest issues an HTTP request against the test server and returns the response with its body read.
func (s *ProductStoreE2ESuite) doRequest(method, path, contentType string, body string) (*http.Response, []byte) {
	s.T().Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, reader)
	require.NoError(s.T(), err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, data
}

// createProduct is a helper that seeds one product through the API and returns its wire form.
func (s *ProductStoreE2ESuite) createProduct(name, description, price string, available bool, category string) productJSON {
	s.T().Helper()
	payload := fmt.Sprintf(`{"name":%q,"description":%q,"price":%q,"available":%t,"category":%q}`,
		name, description, price, available, category)
	resp, body := s.doRequest(http.MethodPost, productURL, "application/json", payload)
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode, "seed create should succeed: %s", string(body))
	var created productJSON
	require.NoError(s.T(), json.Unmarshal(body, &created))
	return created
}

func (s *ProductStoreE2ESuite) TestHealthEndpoint() {
	resp, body := s.doRequest(http.MethodGet, "/health", "", "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.JSONEq(s.T(), `{"status":200,"message":"OK"}`, string(body))
}

func (s *ProductStoreE2ESuite) TestLandingPage() {
	resp, body := s.doRequest(http.MethodGet, "/", "", "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Contains(s.T(), resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(s.T(), string(body), "Product Store")
}

func (s *ProductStoreE2ESuite) TestCreateProduct() {
	payload := `{"name":"Fedora","description":"A red hat","price":"12.50","available":true,"category":"CLOTHS"}`
	resp, body := s.doRequest(http.MethodPost, productURL, "application/json", payload)

	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	var created productJSON
	require.NoError(s.T(), json.Unmarshal(body, &created))
	assert.Positive(s.T(), created.ID, "assigned ID should be a positive integer")
	assert.Equal(s.T(), "Fedora", created.Name)
	assert.Equal(s.T(), "A red hat", created.Description)
	assert.Equal(s.T(), "12.5", created.Price)
	assert.True(s.T(), created.Available)
	assert.Equal(s.T(), "CLOTHS", created.Category)

	location := resp.Header.Get("Location")
	require.NotEmpty(s.T(), location, "Location header should be present")
	assert.True(s.T(), strings.HasSuffix(location, fmt.Sprintf("%s/%d", productURL, created.ID)))

	// The Location URL resolves to the created resource
	resp, body = s.doRequest(http.MethodGet, location, "", "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var fetched productJSON
	require.NoError(s.T(), json.Unmarshal(body, &fetched))
	assert.Equal(s.T(), created, fetched)
}

func (s *ProductStoreE2ESuite) TestCreateProduct_ContentTypeEnforcement() {
	payload := `{"name":"Fedora","description":"A red hat","price":"12.50","available":true,"category":"CLOTHS"}`

	// Missing Content-Type is rejected before the body is parsed
	resp, _ := s.doRequest(http.MethodPost, productURL, "", payload)
	assert.Equal(s.T(), http.StatusUnsupportedMediaType, resp.StatusCode)

	// A different media type is rejected too, even with a valid body
	resp, _ = s.doRequest(http.MethodPost, productURL, "text/plain", payload)
	assert.Equal(s.T(), http.StatusUnsupportedMediaType, resp.StatusCode)
}

func (s *ProductStoreE2ESuite) TestCreateProduct_BadPayload() {
	// Missing required keys
	resp, _ := s.doRequest(http.MethodPost, productURL, "application/json", `{"description":"no name"}`)
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)

	// Unknown category label
	resp, body := s.doRequest(http.MethodPost, productURL, "application/json",
		`{"name":"Fedora","description":"","price":"12.50","available":true,"category":"GADGETS"}`)
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Contains(s.T(), string(body), "category")
}

func (s *ProductStoreE2ESuite) TestGetProduct_NotFound() {
	resp, _ := s.doRequest(http.MethodGet, productURL+"/0", "", "")
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}

func (s *ProductStoreE2ESuite) TestUpdateProduct_FullReplace() {
	created := s.createProduct("Fedora", "A red hat", "12.50", true, "CLOTHS")

	// Replace every field; description is deliberately emptied
	payload := `{"name":"Fedora XL","description":"","price":"20.00","available":false,"category":"HOUSEWARES"}`
	resp, body := s.doRequest(http.MethodPut, fmt.Sprintf("%s/%d", productURL, created.ID), "application/json", payload)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var updated productJSON
	require.NoError(s.T(), json.Unmarshal(body, &updated))
	assert.Equal(s.T(), created.ID, updated.ID, "ID is immutable across updates")
	assert.Equal(s.T(), "Fedora XL", updated.Name)
	assert.Empty(s.T(), updated.Description, "omitted or empty fields take the new payload's values")
	assert.Equal(s.T(), "20", updated.Price)
	assert.False(s.T(), updated.Available)
	assert.Equal(s.T(), "HOUSEWARES", updated.Category)

	// A subsequent fetch reflects exactly the replaced fields
	resp, body = s.doRequest(http.MethodGet, fmt.Sprintf("%s/%d", productURL, created.ID), "", "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var fetched productJSON
	require.NoError(s.T(), json.Unmarshal(body, &fetched))
	assert.Equal(s.T(), updated, fetched)
}

func (s *ProductStoreE2ESuite) TestUpdateProduct_NotFound() {
	payload := `{"name":"Ghost","description":"","price":"1.00","available":true,"category":"UNKNOWN"}`
	resp, _ := s.doRequest(http.MethodPut, productURL+"/12345", "application/json", payload)
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}

func (s *ProductStoreE2ESuite) TestDeleteProduct_Idempotent() {
	created := s.createProduct("Fedora", "A red hat", "12.50", true, "CLOTHS")
	path := fmt.Sprintf("%s/%d", productURL, created.ID)

	// First delete removes the product
	resp, body := s.doRequest(http.MethodDelete, path, "", "")
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)
	assert.Empty(s.T(), body)

	resp, _ = s.doRequest(http.MethodGet, path, "", "")
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)

	// Second delete of the same ID still returns 204
	resp, _ = s.doRequest(http.MethodDelete, path, "", "")
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)
}

func (s *ProductStoreE2ESuite) TestListProducts() {
	s.createProduct("Fedora", "A red hat", "12.50", true, "CLOTHS")
	s.createProduct("Hammer", "Claw hammer", "9.99", true, "TOOLS")

	resp, body := s.doRequest(http.MethodGet, productURL, "", "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var products []productJSON
	require.NoError(s.T(), json.Unmarshal(body, &products))
	assert.Len(s.T(), products, 2)
}

func (s *ProductStoreE2ESuite) TestListProducts_EmptyStore() {
	resp, body := s.doRequest(http.MethodGet, productURL, "", "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.JSONEq(s.T(), `[]`, string(body), "empty store lists as an empty array")
}

func (s *ProductStoreE2ESuite) TestListProducts_ByCategory() {
	for i := range 5 {
		s.createProduct(fmt.Sprintf("Food %d", i), "groceries", "3.50", true, "FOOD")
	}
	s.createProduct("Fedora", "A red hat", "12.50", true, "CLOTHS")
	s.createProduct("Hammer", "Claw hammer", "9.99", true, "TOOLS")

	resp, body := s.doRequest(http.MethodGet, productURL+"?category=FOOD", "", "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var products []productJSON
	require.NoError(s.T(), json.Unmarshal(body, &products))
	require.Len(s.T(), products, 5)
	for _, p := range products {
		assert.Equal(s.T(), "FOOD", p.Category)
	}
}

func (s *ProductStoreE2ESuite) TestListProducts_FilterPrecedence() {
	s.createProduct("Fedora", "A red hat", "12.50", true, "CLOTHS")
	s.createProduct("Apples", "groceries", "3.50", true, "FOOD")

	// name and category supplied together: only the name filter applies
	resp, body := s.doRequest(http.MethodGet, productURL+"?name=Fedora&category=FOOD", "", "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var products []productJSON
	require.NoError(s.T(), json.Unmarshal(body, &products))
	require.Len(s.T(), products, 1)
	assert.Equal(s.T(), "Fedora", products[0].Name)
	assert.Equal(s.T(), "CLOTHS", products[0].Category)
}

func (s *ProductStoreE2ESuite) TestListProducts_ByAvailability() {
	s.createProduct("Fedora", "A red hat", "12.50", true, "CLOTHS")
	s.createProduct("Sold out", "gone", "1.00", false, "FOOD")

	resp, body := s.doRequest(http.MethodGet, productURL+"?available=false", "", "")
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var products []productJSON
	require.NoError(s.T(), json.Unmarshal(body, &products))
	require.Len(s.T(), products, 1)
	assert.Equal(s.T(), "Sold out", products[0].Name)
}

func (s *ProductStoreE2ESuite) TestListProducts_UnknownCategory() {
	resp, _ := s.doRequest(http.MethodGet, productURL+"?category=GADGETS", "", "")
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
}
