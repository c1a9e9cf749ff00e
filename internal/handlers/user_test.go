package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/crm-api/internal/config"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/policy"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/services"
	"gorm.io/gorm"
)

// UserHandlerTestSuite defines the test suite for UserHandler
type UserHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repos   *repository.Repositories
	handler *UserHandler
	viewer  uint64
}

// SetupTest runs before each test
func (suite *UserHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = database.Connect(config.DBConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, zerolog.Nop())
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(context.Background(), suite.db, config.DriverSQLite))

	suite.repos = repository.New(suite.db)
	names := make([]string, 0, len(policy.Roles))
	for _, role := range policy.Roles {
		names = append(names, string(role))
	}
	suite.Require().NoError(suite.repos.Roles.EnsureRoles(context.Background(), names))

	role, err := suite.repos.Roles.FindByName(context.Background(), string(policy.RoleViewer))
	suite.Require().NoError(err)
	suite.viewer = role.ID

	suite.handler = NewUserHandler(services.NewUserService(suite.repos))
}

// TearDownTest runs after each test
func (suite *UserHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create a context carrying a principal
func (suite *UserHandlerTestSuite) createAuthContext(method, url string, body any, role policy.Role) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyPrincipal, policy.Principal{UserID: 1, Username: "tester", Role: role})

	return c, w
}

func (suite *UserHandlerTestSuite) createUser(username, email string) uint64 {
	c, w := suite.createAuthContext("POST", "/api/users", map[string]any{
		"username":  username,
		"password":  "Password1",
		"firstName": "Test",
		"email":     email,
		"roleId":    suite.viewer,
	}, policy.RoleAdmin)

	suite.handler.CreateUser(c)

	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uint64 `json:"id"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	return created.ID
}

// TestCreateUser_Success tests user creation without leaking the hash
func (suite *UserHandlerTestSuite) TestCreateUser_Success() {
	id := suite.createUser("alice", "Alice@Example.com")
	assert.NotZero(suite.T(), id)

	c, w := suite.createAuthContext("GET", "/api/users/"+strconv.FormatUint(id, 10), nil, policy.RoleViewer)
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}

	suite.handler.GetUser(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"email":"alice@example.com"`)
	assert.Contains(suite.T(), w.Body.String(), `"role":"Viewer"`)
	assert.NotContains(suite.T(), w.Body.String(), "passwordHash")
}

// TestCreateUser_Validation tests field-level validation details
func (suite *UserHandlerTestSuite) TestCreateUser_Validation() {
	c, w := suite.createAuthContext("POST", "/api/users", map[string]any{
		"username": "bob",
		"password": "short",
		"email":    "not-an-email",
		"roleId":   suite.viewer,
	}, policy.RoleAdmin)

	suite.handler.CreateUser(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	var body struct {
		Details map[string]string `json:"details"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(suite.T(), body.Details, "email")
	assert.Contains(suite.T(), body.Details, "firstName")
}

// TestCreateUser_DuplicateEmail tests active-only uniqueness
func (suite *UserHandlerTestSuite) TestCreateUser_DuplicateEmail() {
	suite.createUser("alice", "alice@example.com")

	c, w := suite.createAuthContext("POST", "/api/users", map[string]any{
		"username":  "alice2",
		"password":  "Password1",
		"firstName": "Alice",
		"email":     "alice@example.com",
		"roleId":    suite.viewer,
	}, policy.RoleAdmin)

	suite.handler.CreateUser(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

// TestArchiveUser_Forbidden tests that viewers cannot archive
func (suite *UserHandlerTestSuite) TestArchiveUser_Forbidden() {
	id := suite.createUser("alice", "alice@example.com")

	c, w := suite.createAuthContext("DELETE", "/api/users/"+strconv.FormatUint(id, 10), nil, policy.RoleViewer)
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}

	suite.handler.ArchiveUser(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestArchiveAndRestoreUser tests the archive/restore round trip
func (suite *UserHandlerTestSuite) TestArchiveAndRestoreUser() {
	id := suite.createUser("alice", "alice@example.com")
	params := gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}

	c, w := suite.createAuthContext("DELETE", "/api/users/"+params[0].Value, nil, policy.RoleManager)
	c.Params = params
	suite.handler.ArchiveUser(c)
	c.Writer.WriteHeaderNow()
	suite.Require().Equal(http.StatusNoContent, w.Code)

	c, w = suite.createAuthContext("GET", "/api/users/"+params[0].Value, nil, policy.RoleManager)
	c.Params = params
	suite.handler.GetUser(c)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	c, w = suite.createAuthContext("POST", "/api/users/"+params[0].Value+"/restore", nil, policy.RoleManager)
	c.Params = params
	suite.handler.RestoreUser(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), `"active":true`)

	c, w = suite.createAuthContext("POST", "/api/users/"+params[0].Value+"/restore", nil, policy.RoleManager)
	c.Params = params
	suite.handler.RestoreUser(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetUser_InvalidID tests id parsing
func (suite *UserHandlerTestSuite) TestGetUser_InvalidID() {
	c, w := suite.createAuthContext("GET", "/api/users/abc", nil, policy.RoleViewer)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	suite.handler.GetUser(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestListRoles tests the fixed role listing
func (suite *UserHandlerTestSuite) TestListRoles() {
	c, w := suite.createAuthContext("GET", "/api/roles", nil, policy.RoleViewer)

	suite.handler.ListRoles(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var body struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(suite.T(), body.Data, 4)
}

// TestUserHandlerTestSuite runs the test suite
func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}
