package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/gym/internal/logger"
	"github.com/nkiryanov/gym/internal/models"
	"github.com/nkiryanov/gym/internal/repository"
	"github.com/nkiryanov/gym/internal/repository/postgres"
	"github.com/nkiryanov/gym/internal/service/auth"
	"github.com/nkiryanov/gym/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/gym/internal/service/trainee"
	"github.com/nkiryanov/gym/internal/service/trainer"
	"github.com/nkiryanov/gym/internal/service/training"
	"github.com/nkiryanov/gym/internal/service/user"
	"github.com/nkiryanov/gym/internal/testutil"
)

type apiClient struct {
	t       *testing.T
	url     string
	users   *user.UserService
	storage repository.Storage
}

// Send request to the API. Empty token means anonymous request
func (c *apiClient) do(method string, path string, token string, body string) (int, string) {
	c.t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(c.t.Context(), method, c.url+"/api"+path, r)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, string(data)
}

func (c *apiClient) login(username string, password string) authResponse {
	c.t.Helper()

	code, body := c.do(http.MethodPost, "/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equalf(c.t, http.StatusOK, code, "login failed: %s", body)

	var resp authResponse
	require.NoError(c.t, json.Unmarshal([]byte(body), &resp))
	return resp
}

func (c *apiClient) register(path string, body string) credentialsResponse {
	c.t.Helper()

	code, resp := c.do(http.MethodPost, path, "", body)
	require.Equalf(c.t, http.StatusCreated, code, "registration failed: %s", resp)

	var creds credentialsResponse
	require.NoError(c.t, json.Unmarshal([]byte(resp), &creds))
	return creds
}

func (c *apiClient) admin() string {
	c.t.Helper()

	u, err := c.users.CreateUnique(c.t.Context(), c.storage, models.User{Username: "admin", Active: true, Role: models.RoleAdmin}, "admin-password")
	require.NoError(c.t, err)
	return c.login(u.Username, "admin-password").AccessToken
}

func Test_Router(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run http server with production services on test transaction
	withServer := func(t *testing.T, fn func(c *apiClient)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			l := logger.NewNoOpLogger()
			storage := postgres.NewStorage(tx)

			tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"})
			require.NoError(t, err)
			users := user.NewService(user.BcryptHasher{Cost: 4}, storage)
			authService, err := auth.NewService(tokens, users, storage, l)
			require.NoError(t, err)

			router := NewRouter(Services{
				Auth:      authService,
				Users:     users,
				Trainees:  trainee.NewService(users, storage),
				Trainers:  trainer.NewService(users, storage),
				Trainings: training.NewService(storage),
			}, l)

			srv := httptest.NewServer(router)
			defer srv.Close()

			fn(&apiClient{t: t, url: srv.URL, users: users, storage: storage})
		})
	}

	t.Run("signup and login", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			code, body := c.do(http.MethodPost, "/auth/signup", "", `{"username":"coach","password":"StrongEnough"}`)
			require.Equalf(t, http.StatusOK, code, "signup failed: %s", body)

			var signup authResponse
			require.NoError(t, json.Unmarshal([]byte(body), &signup))
			assert.Equal(t, "coach.1", signup.Username)
			assert.NotEmpty(t, signup.AccessToken)
			assert.NotEmpty(t, signup.RefreshToken)
			assert.False(t, signup.ExpiresAt.IsZero())

			login := c.login("coach.1", "StrongEnough")
			assert.NotEqual(t, signup.AccessToken, login.AccessToken)

			code, _ = c.do(http.MethodGet, "/trainings/types", signup.AccessToken, "")
			assert.Equal(t, http.StatusOK, code, "login keeps previous sessions")
		})
	})

	t.Run("login errors", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			code, body := c.do(http.MethodPost, "/auth/login", "", `{"username":"ghost","password":"whatever"}`)
			assert.Equal(t, http.StatusNotFound, code)
			assert.JSONEq(t, `{"message": "User not found ghost"}`, body)

			code, _ = c.do(http.MethodPost, "/auth/signup", "", `{"username":"coach","password":"StrongEnough"}`)
			require.Equal(t, http.StatusOK, code)

			code, body = c.do(http.MethodPost, "/auth/login", "", `{"username":"coach.1","password":"wrong"}`)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.JSONEq(t, `{"message": "Failed to authenticate login"}`, body)

			code, body = c.do(http.MethodPost, "/auth/login", "", `{"username":"coach.1"}`)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.JSONEq(t, `{"message": "password: must not be blank"}`, body)
		})
	})

	t.Run("authenticate revokes previous tokens", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			code, _ := c.do(http.MethodPost, "/auth/signup", "", `{"username":"coach","password":"StrongEnough"}`)
			require.Equal(t, http.StatusOK, code)
			first := c.login("coach.1", "StrongEnough")

			code, body := c.do(http.MethodPost, "/auth/authenticate", "", `{"username":"coach.1","password":"StrongEnough"}`)
			require.Equalf(t, http.StatusOK, code, "authenticate failed: %s", body)
			var second authResponse
			require.NoError(t, json.Unmarshal([]byte(body), &second))

			code, _ = c.do(http.MethodGet, "/trainings/types", first.AccessToken, "")
			assert.Equal(t, http.StatusUnauthorized, code, "old access token has to be revoked")
			code, _ = c.do(http.MethodGet, "/trainings/types", second.AccessToken, "")
			assert.Equal(t, http.StatusOK, code)

			code, _ = c.do(http.MethodPost, "/auth/authenticate", "", `{"username":"coach.1","password":"wrong"}`)
			assert.Equal(t, http.StatusUnauthorized, code)
			code, _ = c.do(http.MethodGet, "/trainings/types", second.AccessToken, "")
			assert.Equal(t, http.StatusOK, code, "failed authentication revokes nothing")
		})
	})

	t.Run("refresh and logout", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			code, _ := c.do(http.MethodPost, "/auth/signup", "", `{"username":"coach","password":"StrongEnough"}`)
			require.Equal(t, http.StatusOK, code)
			login := c.login("coach.1", "StrongEnough")

			code, body := c.do(http.MethodPost, "/auth/refresh", login.RefreshToken, "")
			require.Equalf(t, http.StatusOK, code, "refresh failed: %s", body)
			var refreshed authResponse
			require.NoError(t, json.Unmarshal([]byte(body), &refreshed))
			assert.Equal(t, login.RefreshToken, refreshed.RefreshToken, "refresh token is echoed back")
			assert.NotEqual(t, login.AccessToken, refreshed.AccessToken)

			code, _ = c.do(http.MethodPost, "/auth/refresh", refreshed.AccessToken, "")
			assert.Equal(t, http.StatusUnauthorized, code, "access token can't be used to refresh")

			code, body = c.do(http.MethodPost, "/auth/refresh", "", "")
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.JSONEq(t, `{"message": "Invalid Token"}`, body)

			code, body = c.do(http.MethodPost, "/auth/logout", refreshed.AccessToken, "")
			assert.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `{"message": "Logout successful"}`, body)

			code, _ = c.do(http.MethodGet, "/trainings/types", refreshed.AccessToken, "")
			assert.Equal(t, http.StatusUnauthorized, code, "logged out token is revoked")

			code, body = c.do(http.MethodPost, "/auth/logout", "", "")
			assert.Equal(t, http.StatusOK, code, "logout without token is fine")
			assert.JSONEq(t, `{"message": "Logout successful"}`, body)
		})
	})

	t.Run("routing errors are json", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			code, body := c.do(http.MethodPatch, "/auth/login", "", "")
			assert.Equal(t, http.StatusMethodNotAllowed, code)
			assert.JSONEq(t, `{"message": "Request method 'PATCH' not supported"}`, body)

			code, body = c.do(http.MethodGet, "/nowhere", "", "")
			assert.Equal(t, http.StatusNotFound, code)
			assert.JSONEq(t, `{"message": "No endpoint GET /api/nowhere"}`, body)

			code, body = c.do(http.MethodGet, "/trainers", "", "")
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.JSONEq(t, `{"message": "Invalid Token"}`, body)
		})
	})

	t.Run("trainee profile", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			code, body := c.do(http.MethodPost, "/trainees", "", `{"lastName":"Lee","dateOfBirth":"17.05.1995"}`)
			require.Equal(t, http.StatusBadRequest, code)
			assert.JSONEq(t, `{"message": "dateOfBirth: must be a date in format YYYY-MM-DD, firstName: must not be blank"}`, body)

			creds := c.register("/trainees", `{"firstName":"Anna","lastName":"Lee","dateOfBirth":"1995-05-17","address":"Elm st."}`)
			assert.Equal(t, "Anna.Lee.1", creds.Username)
			assert.Len(t, creds.Password, 10)
			token := c.login(creds.Username, creds.Password).AccessToken

			code, body = c.do(http.MethodGet, "/trainees/Anna.Lee.1", token, "")
			require.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `{
				"username": "Anna.Lee.1",
				"firstName": "Anna",
				"lastName": "Lee",
				"dateOfBirth": "1995-05-17",
				"address": "Elm st.",
				"active": true,
				"trainers": []
			}`, body)

			code, body = c.do(http.MethodPut, "/trainees/Anna.Lee.1", token, `{"firstName":"Hanna","address":"Oak st."}`)
			require.Equal(t, http.StatusOK, code)
			var profile traineeProfileResponse
			require.NoError(t, json.Unmarshal([]byte(body), &profile))
			assert.Equal(t, "Hanna", profile.FirstName)
			assert.Equal(t, "Lee", profile.LastName)
			assert.Equal(t, "Oak st.", profile.Address)

			code, body = c.do(http.MethodPut, "/trainees/Anna.Lee.1", token, `{"firstName":" "}`)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.JSONEq(t, `{"message": "firstName: must not be blank"}`, body)

			code, _ = c.do(http.MethodGet, "/trainees", token, "")
			assert.Equal(t, http.StatusForbidden, code, "only admin lists trainees")

			code, body = c.do(http.MethodGet, "/trainees/ghost", c.admin(), "")
			assert.Equal(t, http.StatusNotFound, code)
			assert.JSONEq(t, `{"message": "Trainee not found ghost"}`, body)
		})
	})

	t.Run("trainee activation", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			creds := c.register("/trainees", `{"firstName":"Anna","lastName":"Lee"}`)
			token := c.login(creds.Username, creds.Password).AccessToken

			code, body := c.do(http.MethodPatch, "/trainees/Anna.Lee.1/active", token, "")
			assert.Equal(t, http.StatusBadRequest, code)
			assert.JSONEq(t, `{"message": "Required request parameter 'active' is not present"}`, body)

			code, _ = c.do(http.MethodPatch, "/trainees/Anna.Lee.1/active?active=maybe", token, "")
			assert.Equal(t, http.StatusBadRequest, code)

			code, body = c.do(http.MethodPatch, "/trainees/Anna.Lee.1/active?active=false", token, "")
			assert.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `{"username": "Anna.Lee.1", "active": false}`, body)

			code, body = c.do(http.MethodGet, "/trainees/Anna.Lee.1", token, "")
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.JSONEq(t, `{"message": "User is disabled"}`, body)
		})
	})

	t.Run("trainers and trainings", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			trainee := c.register("/trainees", `{"firstName":"Anna","lastName":"Lee"}`)
			coach := c.register("/trainers", `{"firstName":"Bob","lastName":"Stone","specialization":"Boxing"}`)
			_ = c.register("/trainers", `{"firstName":"Carl","lastName":"Moss","specialization":"Yoga"}`)

			traineeToken := c.login(trainee.Username, trainee.Password).AccessToken
			coachToken := c.login(coach.Username, coach.Password).AccessToken

			code, body := c.do(http.MethodGet, "/trainees/Anna.Lee.1/trainers/unassigned", traineeToken, "")
			require.Equal(t, http.StatusOK, code)
			var unassigned []trainerResponse
			require.NoError(t, json.Unmarshal([]byte(body), &unassigned))
			assert.Len(t, unassigned, 2)

			code, body = c.do(http.MethodPut, "/trainees/Anna.Lee.1/trainers", traineeToken, `{"trainers":["Bob.Stone.1"]}`)
			require.Equalf(t, http.StatusOK, code, "set trainers failed: %s", body)
			assert.JSONEq(t, `[{"username":"Bob.Stone.1","firstName":"Bob","lastName":"Stone","specialization":"Boxing","active":true}]`, body)

			code, _ = c.do(http.MethodPut, "/trainees/Anna.Lee.1/trainers", traineeToken, `{"trainers":["ghost"]}`)
			assert.Equal(t, http.StatusNotFound, code)

			training := `{"traineeUsername":"Anna.Lee.1","name":"Sparring","date":"2025-04-01","duration":1.5}`
			code, _ = c.do(http.MethodPost, "/trainings", traineeToken, training)
			assert.Equal(t, http.StatusForbidden, code, "trainee can't add trainings")

			code, body = c.do(http.MethodPost, "/trainings", coachToken, training)
			require.Equalf(t, http.StatusCreated, code, "add training failed: %s", body)
			assert.JSONEq(t, `{
				"name": "Sparring",
				"type": "Boxing",
				"date": "2025-04-01",
				"duration": "1.5",
				"traineeUsername": "Anna.Lee.1",
				"trainerUsername": "Bob.Stone.1"
			}`, body)

			code, body = c.do(http.MethodPost, "/trainings", coachToken, `{"traineeUsername":"Anna.Lee.1","name":"x","date":"2025-04-01","duration":0}`)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.JSONEq(t, `{"message": "duration: must be positive"}`, body)

			code, body = c.do(http.MethodGet, "/trainees/Anna.Lee.1/trainings?periodFrom=2025-04-01&periodTo=2025-04-01&trainingType=boxing", traineeToken, "")
			require.Equal(t, http.StatusOK, code)
			var trainings []trainingResponse
			require.NoError(t, json.Unmarshal([]byte(body), &trainings))
			assert.Len(t, trainings, 1)

			code, body = c.do(http.MethodGet, "/trainers/Bob.Stone.1/trainings?periodFrom=2025-04-02", coachToken, "")
			require.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `[]`, body)

			code, _ = c.do(http.MethodGet, "/trainers/Bob.Stone.1/trainings?periodFrom=01.04.2025", coachToken, "")
			assert.Equal(t, http.StatusBadRequest, code)

			code, body = c.do(http.MethodGet, "/trainers/Bob.Stone.1", traineeToken, "")
			require.Equal(t, http.StatusOK, code, "any authenticated user may see trainer")
			var trainerProfile trainerProfileResponse
			require.NoError(t, json.Unmarshal([]byte(body), &trainerProfile))
			require.Len(t, trainerProfile.Trainees, 1)
			assert.Equal(t, "Anna.Lee.1", trainerProfile.Trainees[0].Username)

			code, body = c.do(http.MethodGet, "/trainings/types", traineeToken, "")
			require.Equal(t, http.StatusOK, code)
			var types []trainingTypeResponse
			require.NoError(t, json.Unmarshal([]byte(body), &types))
			assert.Len(t, types, 2)
		})
	})

	t.Run("assign trainee", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			trainee := c.register("/trainees", `{"firstName":"Anna","lastName":"Lee"}`)
			coach := c.register("/trainers", `{"firstName":"Bob","lastName":"Stone","specialization":"Boxing"}`)
			traineeToken := c.login(trainee.Username, trainee.Password).AccessToken
			coachToken := c.login(coach.Username, coach.Password).AccessToken

			code, _ := c.do(http.MethodPost, "/trainers/trainees/Anna.Lee.1", traineeToken, "")
			assert.Equal(t, http.StatusForbidden, code)

			code, body := c.do(http.MethodPost, "/trainers/trainees/Anna.Lee.1", coachToken, "")
			assert.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `{"message": "Trainee assigned"}`, body)

			code, body = c.do(http.MethodPut, "/trainers/Bob.Stone.1", coachToken, `{"lastName":"Rock","active":true}`)
			require.Equal(t, http.StatusOK, code)
			var profile trainerProfileResponse
			require.NoError(t, json.Unmarshal([]byte(body), &profile))
			assert.Equal(t, "Rock", profile.LastName)
			assert.Equal(t, "Boxing", profile.Specialization)
			assert.Len(t, profile.Trainees, 1)
		})
	})

	t.Run("users", func(t *testing.T) {
		withServer(t, func(c *apiClient) {
			creds := c.register("/trainees", `{"firstName":"Anna","lastName":"Lee"}`)
			token := c.login(creds.Username, creds.Password).AccessToken
			adminToken := c.admin()

			code, body := c.do(http.MethodGet, "/users/Anna.Lee.1", token, "")
			require.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `{"username":"Anna.Lee.1","firstName":"Anna","lastName":"Lee","active":true,"role":"TRAINEE"}`, body)

			code, _ = c.do(http.MethodGet, "/users", token, "")
			assert.Equal(t, http.StatusForbidden, code)
			code, _ = c.do(http.MethodGet, "/users", adminToken, "")
			assert.Equal(t, http.StatusOK, code)

			code, _ = c.do(http.MethodPut, "/users/password", token, `{"username":"Anna.Lee.1","oldPassword":"wrong","newPassword":"NewPassword"}`)
			assert.Equal(t, http.StatusUnauthorized, code)
			code, body = c.do(http.MethodPut, "/users/password", token, `{"username":"Anna.Lee.1","oldPassword":"`+creds.Password+`","newPassword":"NewPassword"}`)
			assert.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `{"message": "Password changed"}`, body)
			_ = c.login("Anna.Lee.1", "NewPassword")

			code, _ = c.do(http.MethodDelete, "/users/Anna.Lee.1", token, "")
			assert.Equal(t, http.StatusForbidden, code, "only admin deletes users")
			code, _ = c.do(http.MethodDelete, "/users/Anna.Lee.1", adminToken, "")
			assert.Equal(t, http.StatusNoContent, code)

			code, _ = c.do(http.MethodGet, "/users/Anna.Lee.1", adminToken, "")
			assert.Equal(t, http.StatusNotFound, code)
		})
	})
}
