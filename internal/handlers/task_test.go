package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	suite.handler = NewTaskHandler(services.NewTaskService(taskRepo, userRepo))

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
		Roles:        []string{string(models.RoleMember)},
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creatorID, assigneeID string) *models.Task {
	task := &models.Task{
		Title:       title,
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		AssigneeID:  assigneeID,
		CreatedByID: creatorID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Set(constants.ContextKeyRoles, user.Roles)

	return c, w
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	user := suite.createTestUser("creator@example.com")
	assignee := suite.createTestUser("assignee@example.com")

	body, _ := json.Marshal(gin.H{
		"title":       "Review deployment",
		"assignee_id": assignee.ID,
		"priority":    "high",
		"tags":        []string{"ops"},
	})
	c, w := suite.createAuthContext("POST", "/api/tasks", body, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Review deployment", response["title"])
	assert.Equal(suite.T(), "todo", response["status"])
	assert.Equal(suite.T(), "high", response["priority"])

	assigneeRef := response["assignee"].(map[string]interface{})
	assert.Equal(suite.T(), assignee.ID, assigneeRef["id"])
}

func (suite *TaskHandlerTestSuite) TestCreateTaskMissingAssignee() {
	user := suite.createTestUser("creator@example.com")

	body, _ := json.Marshal(gin.H{"title": "Floating task"})
	c, w := suite.createAuthContext("POST", "/api/tasks", body, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasksFilters() {
	user := suite.createTestUser("creator@example.com")
	other := suite.createTestUser("other@example.com")

	suite.createTestTask("Visible one", user.ID, user.ID)
	suite.createTestTask("Visible two", other.ID, user.ID)
	suite.createTestTask("Hidden", other.ID, other.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user)
	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 2)

	pagination := response["pagination"].(map[string]interface{})
	assert.Equal(suite.T(), float64(2), pagination["total"])
	assert.Equal(suite.T(), float64(20), pagination["limit"])

	// Invalid filter values are rejected
	c, w = suite.createAuthContext("GET", "/api/tasks?status=bogus", nil, user)
	suite.handler.ListTasks(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTaskVisibility() {
	user := suite.createTestUser("creator@example.com")
	other := suite.createTestUser("other@example.com")

	task := suite.createTestTask("Private", other.ID, other.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/"+task.ID, nil, user)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}
	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTaskExplicitNull() {
	user := suite.createTestUser("creator@example.com")

	project := &models.Project{Name: "Parent", CreatedByID: user.ID, Status: models.ProjectStatusActive}
	suite.Require().NoError(suite.db.Create(project).Error)

	task := &models.Task{
		Title:       "Detach me",
		Status:      models.TaskStatusTodo,
		Priority:    models.TaskPriorityMedium,
		AssigneeID:  user.ID,
		ProjectID:   &project.ID,
		CreatedByID: user.ID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	c, w := suite.createAuthContext("PUT", "/api/tasks/"+task.ID, []byte(`{"project_id":null,"status":"in_progress"}`), user)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}
	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Nil(suite.T(), response["project_id"])
	assert.Equal(suite.T(), "in_progress", response["status"])
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	user := suite.createTestUser("creator@example.com")
	assignee := suite.createTestUser("assignee@example.com")

	task := suite.createTestTask("Retire", user.ID, assignee.ID)

	// The assignee cannot delete, and cannot learn the task exists as a deletable thing
	c, w := suite.createAuthContext("DELETE", "/api/tasks/"+task.ID, nil, assignee)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}
	suite.handler.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	c, w = suite.createAuthContext("DELETE", "/api/tasks/"+task.ID, nil, user)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}
	suite.handler.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTaskStats() {
	user := suite.createTestUser("creator@example.com")

	suite.createTestTask("One", user.ID, user.ID)
	suite.createTestTask("Two", user.ID, user.ID)
	done := suite.createTestTask("Three", user.ID, user.ID)
	suite.Require().NoError(suite.db.Model(done).Updates(map[string]interface{}{"status": "completed", "priority": "high"}).Error)

	c, w := suite.createAuthContext("GET", "/api/tasks/stats", nil, user)
	suite.handler.GetTaskStats(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))

	statusStats := response["statusStats"].([]interface{})
	counts := map[string]float64{}
	for _, raw := range statusStats {
		entry := raw.(map[string]interface{})
		counts[entry["_id"].(string)] = entry["count"].(float64)
	}
	assert.Equal(suite.T(), float64(2), counts["todo"])
	assert.Equal(suite.T(), float64(1), counts["completed"])

	priorityStats := response["priorityStats"].([]interface{})
	assert.NotEmpty(suite.T(), priorityStats)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
