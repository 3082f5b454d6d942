package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/yukikurage/task-colab-api/internal/dto"
	apierrors "github.com/yukikurage/task-colab-api/internal/errors"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/testutil"
)

func (suite *HandlerTestSuite) TestRegister_Success() {
	w := suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "New Buyer",
		"email":    "New.Buyer@Example.com",
		"password": "supersecret",
		"role":     "buyer",
	}, nil)
	suite.requireStatus(w, http.StatusCreated)

	var result dto.AuthDTO
	body := suite.decode(w, &result)
	suite.True(body.Success)
	suite.NotEmpty(result.Token)
	suite.Equal("new.buyer@example.com", result.User.Email)
	suite.Equal(models.RoleBuyer, result.User.Role)
	suite.NotEmpty(w.Result().Cookies())
	suite.NotContains(w.Body.String(), "password")
}

func (suite *HandlerTestSuite) TestRegister_DuplicateEmail() {
	w := suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Copy",
		"email":    suite.buyer.Email,
		"password": "supersecret",
		"role":     "problem_solver",
	}, nil)
	suite.requireStatus(w, http.StatusConflict)

	body := suite.decode(w, nil)
	suite.False(body.Success)
	suite.Equal(apierrors.ErrCodeConflict, body.Code)
}

func (suite *HandlerTestSuite) TestRegister_ValidationSources() {
	w := suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Admin Wannabe",
		"email":    "not-an-email",
		"password": "supersecret",
		"role":     "admin",
	}, nil)
	suite.requireStatus(w, http.StatusBadRequest)

	body := suite.decode(w, nil)
	suite.Equal(apierrors.ErrCodeValidation, body.Code)
	paths := make([]string, 0, len(body.ErrorSources))
	for _, source := range body.ErrorSources {
		paths = append(paths, source.Path)
	}
	suite.ElementsMatch([]string{"Email", "Role"}, paths)
}

func (suite *HandlerTestSuite) TestRegister_ShortPassword() {
	w := suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Shorty",
		"email":    "shorty@example.com",
		"password": "short",
		"role":     "buyer",
	}, nil)
	suite.requireStatus(w, http.StatusBadRequest)
}

func (suite *HandlerTestSuite) TestLogin_SessionAuthenticatesFollowingRequests() {
	w := suite.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    suite.solver.Email,
		"password": testutil.Password,
	}, nil)
	suite.requireStatus(w, http.StatusOK)

	cookies := w.Result().Cookies()
	suite.Require().NotEmpty(cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	suite.router.ServeHTTP(me, req)
	suite.requireStatus(me, http.StatusOK)

	var user dto.UserDTO
	suite.decode(me, &user)
	suite.Equal(suite.solver.ID, user.ID)
	suite.NotNil(user.LastLoginAt)
}

func (suite *HandlerTestSuite) TestLogin_InvalidCredentials() {
	w := suite.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    suite.solver.Email,
		"password": "wrong-password",
	}, nil)
	suite.requireStatus(w, http.StatusUnauthorized)
}

func (suite *HandlerTestSuite) TestLogin_BlockedUser() {
	suite.Require().NoError(suite.db.Model(suite.other).Update("status", models.UserStatusBlocked).Error)

	w := suite.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    suite.other.Email,
		"password": testutil.Password,
	}, nil)
	suite.requireStatus(w, http.StatusForbidden)
}

func (suite *HandlerTestSuite) TestLogout_ClearsSession() {
	login := suite.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    suite.buyer.Email,
		"password": testutil.Password,
	}, nil)
	suite.requireStatus(login, http.StatusOK)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	logout := httptest.NewRecorder()
	suite.router.ServeHTTP(logout, req)
	suite.requireStatus(logout, http.StatusOK)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range logout.Result().Cookies() {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	suite.router.ServeHTTP(me, req)
	suite.requireStatus(me, http.StatusUnauthorized)
}

func (suite *HandlerTestSuite) TestMe_RequiresAuthentication() {
	w := suite.do(http.MethodGet, "/api/auth/me", nil, nil)
	suite.requireStatus(w, http.StatusUnauthorized)

	body := suite.decode(w, nil)
	suite.Equal(apierrors.ErrCodeUnauthorized, body.Code)
}

func (suite *HandlerTestSuite) TestMe_InvalidToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.requireStatus(w, http.StatusUnauthorized)
}

func (suite *HandlerTestSuite) TestMe_BlockedTokenHolder() {
	suite.Require().NoError(suite.db.Model(suite.other).Update("status", models.UserStatusBlocked).Error)

	w := suite.do(http.MethodGet, "/api/auth/me", nil, suite.other)
	suite.requireStatus(w, http.StatusForbidden)
}

func (suite *HandlerTestSuite) TestChangePassword() {
	w := suite.do(http.MethodPut, "/api/auth/change-password", map[string]string{
		"current_password": "wrong-password",
		"new_password":     "brand-new-secret",
	}, suite.buyer)
	suite.requireStatus(w, http.StatusBadRequest)

	w = suite.do(http.MethodPut, "/api/auth/change-password", map[string]string{
		"current_password": testutil.Password,
		"new_password":     "brand-new-secret",
	}, suite.buyer)
	suite.requireStatus(w, http.StatusOK)

	payload, err := json.Marshal(map[string]string{"email": suite.buyer.Email, "password": "brand-new-secret"})
	suite.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	login := httptest.NewRecorder()
	suite.router.ServeHTTP(login, req)
	suite.requireStatus(login, http.StatusOK)
}
