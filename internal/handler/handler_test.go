package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/UsersAPI/internal/database/storagetest"
	"github.com/GoArmGo/UsersAPI/internal/domain"
	"github.com/GoArmGo/UsersAPI/internal/handler"
	"github.com/GoArmGo/UsersAPI/internal/logger"
	"github.com/GoArmGo/UsersAPI/internal/usecase"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type userBody struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

type testAPI struct {
	router http.Handler
	users  *storagetest.UserStore
	admin  domain.Role
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := logger.Discard()
	users := storagetest.NewUserStore()
	admin := domain.Role{ID: uuid.New(), Name: "admin", CreatedAt: time.Now()}
	roles := storagetest.NewRoleStore(admin)

	router := handler.NewRouter(
		handler.NewUserHandler(usecase.NewUserUseCase(users, nil, log), log),
		handler.NewRoleHandler(usecase.NewRoleUseCase(roles, users), log),
		handler.NewHealthHandler(users, log),
		5*time.Second,
		log,
	)
	return &testAPI{router: router, users: users, admin: admin}
}

func (a *testAPI) do(t *testing.T, method, path, body string) (int, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	a.router.ServeHTTP(w, req)

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return w.Code, resp
}

func (a *testAPI) createUser(t *testing.T, first, last, email string) userBody {
	t.Helper()
	code, resp := a.do(t, http.MethodPost, "/users",
		`{"firstName":"`+first+`","lastName":"`+last+`","email":"`+email+`"}`)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var u userBody
	require.NoError(t, json.Unmarshal(resp.Data, &u))
	return u
}

func assertErrorEnvelope(t *testing.T, resp apiResponse, message string) {
	t.Helper()
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, message, resp.Message)
	assert.JSONEq(t, `{}`, string(resp.Data))
}

func TestCreateUser(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, http.MethodPost, "/users", `{"firstName":"Ana","lastName":"Diaz","email":"ana@x.com"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "User created successfully", resp.Message)

	var u userBody
	require.NoError(t, json.Unmarshal(resp.Data, &u))
	assert.Equal(t, "ana@x.com", u.Email)
	assert.Equal(t, "Ana", u.FirstName)
	assert.Equal(t, "Diaz", u.LastName)
	assert.Nil(t, u.UpdatedAt)
	assert.Contains(t, string(resp.Data), `"updated_at":null`)

	_, err := time.Parse(domain.TimestampLayout, u.CreatedAt)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.CreatedAt, "Z"), u.CreatedAt)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	api.createUser(t, "Ana", "Diaz", "ana@x.com")

	code, resp := api.do(t, http.MethodPost, "/users", `{"firstName":"Ana","lastName":"Diaz","email":"ana@x.com"}`)
	assert.Equal(t, http.StatusConflict, code)
	assertErrorEnvelope(t, resp, "User with email ana@x.com already exists")
}

func TestCreateUser_InvalidBody(t *testing.T) {
	cases := map[string]string{
		"empty body":     ``,
		"not an object":  `["Ana"]`,
		"missing email":  `{"firstName":"Ana","lastName":"Diaz"}`,
		"bad email":      `{"firstName":"Ana","lastName":"Diaz","email":"not-an-email"}`,
		"digits in name": `{"firstName":"An4","lastName":"Diaz","email":"ana@x.com"}`,
		"wrong type":     `{"firstName":1,"lastName":"Diaz","email":"ana@x.com"}`,
		"unknown field":  `{"firstName":"Ana","lastName":"Diaz","email":"ana@x.com","status":"active"}`,
		"trailing data":  `{"firstName":"Ana","lastName":"Diaz","email":"ana@x.com"} {}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			api := newTestAPI(t)
			code, resp := api.do(t, http.MethodPost, "/users", body)
			assert.Equal(t, http.StatusBadRequest, code)
			assertErrorEnvelope(t, resp, "Provided body is not valid")
			assert.Equal(t, 0, api.users.Len())
		})
	}
}

func TestCreateUser_AcceptsInternationalNames(t *testing.T) {
	api := newTestAPI(t)
	u := api.createUser(t, "José-María", "O'Connor", "jm@x.com")
	assert.Equal(t, "José-María", u.FirstName)
	assert.Equal(t, "O'Connor", u.LastName)
}

func TestGetUser(t *testing.T) {
	api := newTestAPI(t)
	created := api.createUser(t, "Ana", "Diaz", "ana@x.com")

	code, resp := api.do(t, http.MethodGet, "/users/"+created.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User with id "+created.ID+" retrieved successfully", resp.Message)

	var u userBody
	require.NoError(t, json.Unmarshal(resp.Data, &u))
	assert.Equal(t, created, u)
}

func TestGetUser_NotFound(t *testing.T) {
	api := newTestAPI(t)
	id := uuid.NewString()

	code, resp := api.do(t, http.MethodGet, "/users/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
	assertErrorEnvelope(t, resp, "User with id "+id+" not found")
}

func TestGetUser_InvalidID(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, http.MethodGet, "/users/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assertErrorEnvelope(t, resp, "Provided user id is not valid")
}

func TestGetUser_UppercaseID(t *testing.T) {
	api := newTestAPI(t)
	created := api.createUser(t, "Ana", "Diaz", "ana@x.com")
	upper := strings.ToUpper(created.ID)

	code, resp := api.do(t, http.MethodGet, "/users/"+upper, "")
	require.Equal(t, http.StatusOK, code, resp.Message)
	assert.Equal(t, "User with id "+upper+" retrieved successfully", resp.Message)

	var u userBody
	require.NoError(t, json.Unmarshal(resp.Data, &u))
	assert.Equal(t, created.ID, u.ID)
}

func TestGetUser_UppercaseIDNotFoundEchoesPath(t *testing.T) {
	api := newTestAPI(t)
	upper := strings.ToUpper(uuid.NewString())

	code, resp := api.do(t, http.MethodGet, "/users/"+upper, "")
	assert.Equal(t, http.StatusNotFound, code)
	assertErrorEnvelope(t, resp, "User with id "+upper+" not found")

	code, resp = api.do(t, http.MethodDelete, "/users/"+upper, "")
	assert.Equal(t, http.StatusNotFound, code)
	assertErrorEnvelope(t, resp, "User with id "+upper+" not found")
}

func TestListUsers(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(resp.Data))

	want := map[string]bool{}
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		want[api.createUser(t, "Ana", "Diaz", email).ID] = true
	}

	code, resp = api.do(t, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Users retrieved successfully", resp.Message)

	var users []userBody
	require.NoError(t, json.Unmarshal(resp.Data, &users))
	require.Len(t, users, len(want))
	for _, u := range users {
		assert.True(t, want[u.ID])
	}
}

func TestUpdateUser(t *testing.T) {
	api := newTestAPI(t)
	created := api.createUser(t, "Ana", "Diaz", "ana@x.com")

	code, resp := api.do(t, http.MethodPut, "/users/"+created.ID,
		`{"firstName":"Ana","lastName":"Lopez","email":"ana.lopez@x.com"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User with id "+created.ID+" updated successfully", resp.Message)

	var u userBody
	require.NoError(t, json.Unmarshal(resp.Data, &u))
	assert.Equal(t, "Lopez", u.LastName)
	assert.Equal(t, "ana.lopez@x.com", u.Email)
	require.NotNil(t, u.UpdatedAt)

	createdAt, err := time.Parse(domain.TimestampLayout, u.CreatedAt)
	require.NoError(t, err)
	updatedAt, err := time.Parse(domain.TimestampLayout, *u.UpdatedAt)
	require.NoError(t, err)
	assert.False(t, updatedAt.Before(createdAt))
}

func TestUpdateUser_EmptyFirstName(t *testing.T) {
	api := newTestAPI(t)
	created := api.createUser(t, "Ana", "Diaz", "ana@x.com")

	code, resp := api.do(t, http.MethodPut, "/users/"+created.ID,
		`{"firstName":"","lastName":"Diaz","email":"ana@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assertErrorEnvelope(t, resp, "Provided body is not valid")
}

func TestUpdateUser_Conflict(t *testing.T) {
	api := newTestAPI(t)
	ana := api.createUser(t, "Ana", "Diaz", "ana@x.com")
	api.createUser(t, "Bo", "Kim", "bo@x.com")

	code, resp := api.do(t, http.MethodPut, "/users/"+ana.ID,
		`{"firstName":"Ana","lastName":"Diaz","email":"bo@x.com"}`)
	assert.Equal(t, http.StatusConflict, code)
	assertErrorEnvelope(t, resp, "User with email bo@x.com already exists")
}

func TestUpdateUser_KeepsOwnEmail(t *testing.T) {
	api := newTestAPI(t)
	ana := api.createUser(t, "Ana", "Diaz", "ana@x.com")

	code, _ := api.do(t, http.MethodPut, "/users/"+ana.ID,
		`{"firstName":"Anna","lastName":"Diaz","email":"ana@x.com"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestUpdateUser_NotFoundBeforeConflict(t *testing.T) {
	api := newTestAPI(t)
	api.createUser(t, "Bo", "Kim", "bo@x.com")
	id := uuid.NewString()

	code, resp := api.do(t, http.MethodPut, "/users/"+id,
		`{"firstName":"Ana","lastName":"Diaz","email":"bo@x.com"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assertErrorEnvelope(t, resp, "User with id "+id+" not found")
}

func TestDeleteUser_Twice(t *testing.T) {
	api := newTestAPI(t)
	created := api.createUser(t, "Ana", "Diaz", "ana@x.com")

	code, resp := api.do(t, http.MethodDelete, "/users/"+created.ID, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "User with id "+created.ID+" deleted successfully", resp.Message)
	assert.JSONEq(t, `{}`, string(resp.Data))

	code, resp = api.do(t, http.MethodDelete, "/users/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
	assertErrorEnvelope(t, resp, "User with id "+created.ID+" not found")
}

func TestPersistenceErrorIsGeneric(t *testing.T) {
	api := newTestAPI(t)
	api.users.Err = domain.NewPersistenceError(errors.New(`pq: relation "users" does not exist`))

	code, resp := api.do(t, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assertErrorEnvelope(t, resp, "Database Error")
}

func TestUserRoles(t *testing.T) {
	api := newTestAPI(t)
	user := api.createUser(t, "Ana", "Diaz", "ana@x.com")
	rolePath := "/users/" + user.ID + "/roles/" + api.admin.ID.String()

	code, resp := api.do(t, http.MethodPut, rolePath, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Role "+api.admin.ID.String()+" assigned to user with id "+user.ID, resp.Message)

	code, resp = api.do(t, http.MethodGet, "/users/"+user.ID+"/roles", "")
	require.Equal(t, http.StatusOK, code)
	var roles []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &roles))
	require.Len(t, roles, 1)
	assert.Equal(t, "admin", roles[0].Name)

	code, _ = api.do(t, http.MethodDelete, rolePath, "")
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(t, http.MethodDelete, rolePath, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUserRoles_InvalidRoleID(t *testing.T) {
	api := newTestAPI(t)
	user := api.createUser(t, "Ana", "Diaz", "ana@x.com")

	code, resp := api.do(t, http.MethodPut, "/users/"+user.ID+"/roles/admin", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assertErrorEnvelope(t, resp, "Provided role id is not valid")
}

func TestListRoles(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, http.MethodGet, "/roles", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Roles retrieved successfully", resp.Message)
	assert.Contains(t, string(resp.Data), `"name":"admin"`)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, http.MethodGet, "/accounts", "")
	assert.Equal(t, http.StatusNotFound, code)
	assertErrorEnvelope(t, resp, "Route not found")

	code, resp = api.do(t, http.MethodPatch, "/users", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assertErrorEnvelope(t, resp, "Method not allowed")
}

func TestMethodCheckedBeforeUserID(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, http.MethodPost, "/users/not-a-uuid", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assertErrorEnvelope(t, resp, "Method not allowed")

	code, resp = api.do(t, http.MethodGet, "/users/not-a-uuid/roles", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assertErrorEnvelope(t, resp, "Provided user id is not valid")
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "ok", resp.Message)

	api.users.Err = errors.New("connection refused")
	code, resp = api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assertErrorEnvelope(t, resp, "Database Error")
}
