package handlers

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/docstore"
	"github.com/yukikurage/taskboard-api/internal/dto"
	apierrors "github.com/yukikurage/taskboard-api/internal/errors"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	server testServer
	ana    *http.Cookie
	bob    *http.Cookie
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	store := docstore.NewMemory()
	suite.server = newTestServer(suite.T(), store, store, services.TaskPolicy{
		RejectPastDueDate: true,
		StrictOwnership:   true,
	}, 0, 0)
	suite.ana = suite.server.login(suite.T(), "ana")
	suite.bob = suite.server.login(suite.T(), "bob")
}

func (suite *TaskHandlerTestSuite) do(method, path string, body any, sessionCookie *http.Cookie) (int, []byte) {
	w := suite.server.do(suite.T(), method, path, body, sessionCookie)
	return w.Code, w.Body.Bytes()
}

func (suite *TaskHandlerTestSuite) createTask(title, description, dueDate string, sessionCookie *http.Cookie) dto.TaskDTO {
	w := suite.server.do(suite.T(), http.MethodPost, "/api/tasks", map[string]string{
		"title":       title,
		"description": description,
		"due_date":    dueDate,
	}, sessionCookie)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	response := decodeBody[dto.TaskMutationResponse](suite.T(), w)
	suite.Require().NotNil(response.Task)
	return *response.Task
}

// TestEndToEnd walks a task through its whole life over HTTP
func (suite *TaskHandlerTestSuite) TestEndToEnd() {
	draft := map[string]string{"title": "Buy milk", "description": "2%", "due_date": "01/01/2099"}

	code, _ := suite.do(http.MethodPost, "/api/tasks", draft, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, code)

	w := suite.server.do(suite.T(), http.MethodPost, "/api/tasks", draft, suite.ana)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[dto.TaskMutationResponse](suite.T(), w)
	suite.Require().NotNil(created.Task)
	task := *created.Task
	suite.Require().NotNil(task.DueDate)
	assert.Equal(suite.T(), "01/01/2099", *task.DueDate)
	assert.Equal(suite.T(), "TODO", task.Status.String())
	suite.Require().Len(created.Tasks, 1)

	me := decodeBody[dto.UserDTO](suite.T(), suite.server.do(suite.T(), http.MethodGet, "/api/auth/me", nil, suite.ana))
	assert.Equal(suite.T(), me.ID, task.OwnerID)

	w = suite.server.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]string{"status": "DONE"}, suite.ana)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody[dto.TaskMutationResponse](suite.T(), w)
	suite.Require().Len(updated.Tasks, 1)
	assert.Equal(suite.T(), "DONE", updated.Tasks[0].Status.String())

	w = suite.server.do(suite.T(), http.MethodGet, "/api/tasks", nil, suite.ana)
	list := decodeBody[dto.TaskListResponse](suite.T(), w)
	suite.Require().Len(list.Tasks, 1)
	assert.Equal(suite.T(), "DONE", list.Tasks[0].Status.String())

	w = suite.server.do(suite.T(), http.MethodDelete, "/api/tasks/"+task.ID, nil, suite.ana)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Empty(suite.T(), decodeBody[dto.TaskMutationResponse](suite.T(), w).Tasks)

	code, _ = suite.do(http.MethodGet, "/api/tasks/"+task.ID, nil, suite.ana)
	assert.Equal(suite.T(), http.StatusNotFound, code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_IgnoresOwnerInBody() {
	w := suite.server.do(suite.T(), http.MethodPost, "/api/tasks", map[string]string{
		"title":       "Buy milk",
		"description": "2%",
		"owner_id":    "someone-else",
	}, suite.ana)
	suite.Require().Equal(http.StatusCreated, w.Code)

	task := decodeBody[dto.TaskMutationResponse](suite.T(), w).Task
	suite.Require().NotNil(task)
	assert.NotEqual(suite.T(), "someone-else", task.OwnerID)
	assert.Nil(suite.T(), task.DueDate)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Validation() {
	cases := map[string]struct {
		body  map[string]string
		field string
	}{
		"missing title":       {map[string]string{"description": "d"}, "title"},
		"missing description": {map[string]string{"title": "t"}, "description"},
		"bad date":            {map[string]string{"title": "t", "description": "d", "due_date": "31/02/2099"}, "due_date"},
		"past date":           {map[string]string{"title": "t", "description": "d", "due_date": "01/01/2000"}, "due_date"},
	}

	for name, tc := range cases {
		suite.Run(name, func() {
			w := suite.server.do(suite.T(), http.MethodPost, "/api/tasks", tc.body, suite.ana)
			suite.Require().Equal(http.StatusBadRequest, w.Code)

			apiErr := decodeBody[apierrors.APIError](suite.T(), w)
			assert.Equal(suite.T(), apierrors.ErrCodeInvalidInput, apiErr.Code)
			assert.Equal(suite.T(), map[string]any{"field": tc.field}, apiErr.Details)
		})
	}

	list := decodeBody[dto.TaskListResponse](suite.T(), suite.server.do(suite.T(), http.MethodGet, "/api/tasks", nil, suite.ana))
	assert.Empty(suite.T(), list.Tasks)
}

func (suite *TaskHandlerTestSuite) TestListTasks_LoggedOutIsEmpty() {
	suite.createTask("Buy milk", "2%", "", suite.ana)

	w := suite.server.do(suite.T(), http.MethodGet, "/api/tasks", nil, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	list := decodeBody[dto.TaskListResponse](suite.T(), w)
	assert.Empty(suite.T(), list.Tasks)
	assert.Equal(suite.T(), 0, list.TotalCount)
}

func (suite *TaskHandlerTestSuite) TestListTasks_ScopedAndFiltered() {
	milk := suite.createTask("Buy milk", "2%", "", suite.ana)
	report := suite.createTask("Write report", "quarterly", "09/03/2099", suite.ana)
	suite.createTask("Buy bread", "rye", "", suite.bob)

	code, _ := suite.do(http.MethodPatch, "/api/tasks/"+report.ID+"/status", map[string]int{"status": 2}, suite.ana)
	suite.Require().Equal(http.StatusOK, code)

	list := decodeBody[dto.TaskListResponse](suite.T(), suite.server.do(suite.T(), http.MethodGet, "/api/tasks", nil, suite.ana))
	suite.Require().Len(list.Tasks, 2)
	assert.Equal(suite.T(), milk.ID, list.Tasks[0].ID)
	assert.Equal(suite.T(), report.ID, list.Tasks[1].ID)

	list = decodeBody[dto.TaskListResponse](suite.T(), suite.server.do(suite.T(), http.MethodGet, "/api/tasks?q=BUY", nil, suite.ana))
	suite.Require().Len(list.Tasks, 1)
	assert.Equal(suite.T(), milk.ID, list.Tasks[0].ID)

	list = decodeBody[dto.TaskListResponse](suite.T(), suite.server.do(suite.T(), http.MethodGet, "/api/tasks?q=03/2099", nil, suite.ana))
	suite.Require().Len(list.Tasks, 1)
	assert.Equal(suite.T(), report.ID, list.Tasks[0].ID)

	list = decodeBody[dto.TaskListResponse](suite.T(), suite.server.do(suite.T(), http.MethodGet, "/api/tasks?status=todo", nil, suite.ana))
	suite.Require().Len(list.Tasks, 1)
	assert.Equal(suite.T(), milk.ID, list.Tasks[0].ID)

	list = decodeBody[dto.TaskListResponse](suite.T(), suite.server.do(suite.T(), http.MethodGet, "/api/tasks?limit=1&page=2", nil, suite.ana))
	suite.Require().Len(list.Tasks, 1)
	assert.Equal(suite.T(), report.ID, list.Tasks[0].ID)
	assert.Equal(suite.T(), 2, list.TotalCount)
	assert.Equal(suite.T(), 2, list.TotalPages)

	code, _ = suite.do(http.MethodGet, "/api/tasks?status=later", nil, suite.ana)
	assert.Equal(suite.T(), http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestBoard() {
	suite.createTask("Buy milk", "2%", "", suite.ana)
	done := suite.createTask("Pay rent", "bank", "", suite.ana)
	code, _ := suite.do(http.MethodPatch, "/api/tasks/"+done.ID+"/status", map[string]string{"status": "DONE"}, suite.ana)
	suite.Require().Equal(http.StatusOK, code)

	board := decodeBody[dto.BoardDTO](suite.T(), suite.server.do(suite.T(), http.MethodGet, "/api/tasks/board", nil, suite.ana))
	assert.Len(suite.T(), board.Todo, 1)
	suite.Require().Len(board.Done, 1)
	assert.Equal(suite.T(), done.ID, board.Done[0].ID)

	board = decodeBody[dto.BoardDTO](suite.T(), suite.server.do(suite.T(), http.MethodGet, "/api/tasks/board?q=milk", nil, suite.ana))
	assert.Len(suite.T(), board.Todo, 1)
	assert.Empty(suite.T(), board.Done)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask() {
	task := suite.createTask("Buy milk", "2%", "", suite.ana)
	code, _ := suite.do(http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]string{"status": "DONE"}, suite.ana)
	suite.Require().Equal(http.StatusOK, code)

	w := suite.server.do(suite.T(), http.MethodPut, "/api/tasks/"+task.ID, map[string]string{
		"title":       "Buy oat milk",
		"description": "1l",
		"due_date":    "02/02/2099",
	}, suite.ana)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	response := decodeBody[dto.TaskMutationResponse](suite.T(), w)
	suite.Require().NotNil(response.Task)
	assert.Equal(suite.T(), "Buy oat milk", response.Task.Title)
	assert.Equal(suite.T(), "DONE", response.Task.Status.String())
	suite.Require().Len(response.Tasks, 1)
	assert.Equal(suite.T(), "Buy oat milk", response.Tasks[0].Title)

	code, _ = suite.do(http.MethodPut, "/api/tasks/"+task.ID, map[string]string{"title": "x"}, suite.ana)
	assert.Equal(suite.T(), http.StatusBadRequest, code)

	code, _ = suite.do(http.MethodPut, "/api/tasks/"+task.ID, map[string]string{"title": "x", "description": "y"}, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, code)
}

func (suite *TaskHandlerTestSuite) TestUpdateStatus_InvalidBody() {
	task := suite.createTask("Buy milk", "2%", "", suite.ana)

	for _, body := range []any{map[string]string{"status": "LATER"}, map[string]int{"status": 3}, map[string]string{}} {
		code, _ := suite.do(http.MethodPatch, "/api/tasks/"+task.ID+"/status", body, suite.ana)
		assert.Equal(suite.T(), http.StatusBadRequest, code)
	}
}

func (suite *TaskHandlerTestSuite) TestTaskID() {
	code, _ := suite.do(http.MethodGet, "/api/tasks/not-a-uuid", nil, suite.ana)
	assert.Equal(suite.T(), http.StatusNotFound, code)

	code, _ = suite.do(http.MethodGet, "/api/tasks/%20", nil, suite.ana)
	assert.Equal(suite.T(), http.StatusBadRequest, code)

	code, _ = suite.do(http.MethodGet, "/api/tasks/"+docstore.NewID(), nil, suite.ana)
	assert.Equal(suite.T(), http.StatusNotFound, code)

	code, _ = suite.do(http.MethodDelete, "/api/tasks/"+docstore.NewID(), nil, suite.ana)
	assert.Equal(suite.T(), http.StatusNotFound, code)
}

func (suite *TaskHandlerTestSuite) TestForeignTasksLookMissing() {
	task := suite.createTask("Buy milk", "2%", "", suite.ana)

	code, _ := suite.do(http.MethodGet, "/api/tasks/"+task.ID, nil, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, code)

	code, _ = suite.do(http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]string{"status": "DONE"}, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, code)

	code, _ = suite.do(http.MethodDelete, "/api/tasks/"+task.ID, nil, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, code)

	code, _ = suite.do(http.MethodGet, "/api/tasks/"+task.ID, nil, suite.ana)
	assert.Equal(suite.T(), http.StatusOK, code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func TestTaskHandler_LegacyRecords(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, database.Migrate(db))

	store := docstore.NewSQL(db)
	server := newTestServer(t, store, store, services.TaskPolicy{StrictOwnership: true}, 0, 0)
	sessionCookie := server.login(t, "ana")
	me := decodeBody[dto.UserDTO](t, server.do(t, http.MethodGet, "/api/auth/me", nil, sessionCookie))

	w := server.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": "new", "description": "d"}, sessionCookie)
	require.Equal(t, http.StatusCreated, w.Code)

	// imported rows keep their own ids and the three column status codes
	legacyID := "XyZlegacyFirestoreId20"
	require.NoError(t, db.Table(repository.TasksCollection).Create(map[string]any{
		"id":        legacyID,
		"title":     "old",
		"usuarioId": me.ID,
		"status":    3,
	}).Error)

	w = server.do(t, http.MethodGet, "/api/tasks", nil, sessionCookie)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[dto.TaskListResponse](t, w)
	require.Len(t, list.Tasks, 2)

	board := decodeBody[dto.BoardDTO](t, server.do(t, http.MethodGet, "/api/tasks/board", nil, sessionCookie))
	assert.Len(t, board.Todo, 1)
	require.Len(t, board.Done, 1)
	assert.Equal(t, legacyID, board.Done[0].ID)

	w = server.do(t, http.MethodGet, "/api/tasks/"+legacyID, nil, sessionCookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "DONE", decodeBody[dto.TaskDTO](t, w).Status.String())

	w = server.do(t, http.MethodPatch, "/api/tasks/"+legacyID+"/status", map[string]string{"status": "TODO"}, sessionCookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBody[dto.TaskMutationResponse](t, w).Tasks, 2)

	w = server.do(t, http.MethodDelete, "/api/tasks/"+legacyID, nil, sessionCookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[dto.TaskMutationResponse](t, w).Tasks, 1)
}

func TestTaskHandler_StoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() {
		client.Close()
	})

	server := newTestServer(t, docstore.NewMemory(), docstore.NewRedis(client, "test:"), services.TaskPolicy{}, 0, 0)
	sessionCookie := server.login(t, "ana")

	w := server.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": "t", "description": "d"}, sessionCookie)
	assert.Equal(t, http.StatusCreated, w.Code)

	mr.Close()

	w = server.do(t, http.MethodGet, "/api/tasks", nil, sessionCookie)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apierrors.ErrCodeServiceUnavailable, decodeBody[apierrors.APIError](t, w).Code)
}
