package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dailydiet/controllers"
	"dailydiet/middlewares"
	"dailydiet/repositories"
	"dailydiet/services"
	"dailydiet/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "sessionId"

type testApp struct {
	router *gin.Engine
	repo   *repositories.Memory
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := repositories.NewMemory()
	sessions := services.NewSessionService(repo, services.ConflictReuse)
	meals := services.NewMealService(repo, sessions)
	export := services.NewExportService(meals, nil)
	cookie := controllers.CookieSettings{Name: cookieName, MaxAge: 7 * 24 * 60 * 60}
	metrics := middlewares.NewMetrics()

	r := SetupRouter(Deps{
		Log:         log,
		Metrics:     metrics,
		CookieName:  cookieName,
		AdminSecret: "admin-secret",
		Meals:       controllers.NewMealController(meals, export, cookie, metrics, log),
		Sessions:    controllers.NewSessionController(sessions, cookie, log),
		Health:      controllers.NewHealthController(nil, log),
	})
	return &testApp{router: r, repo: repo}
}

func (a *testApp) do(t *testing.T, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: session})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

type mealJSON struct {
	ID          string `json:"id"`
	SessionID   string `json:"sessionId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsUnderDiet bool   `json:"isUnderDiet"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func meal(name, desc string, inDiet bool) map[string]any {
	return map[string]any{"name": name, "description": desc, "isUnderDiet": inDiet}
}

func TestCreateMeal_WithoutCookieBootstrapsSession(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/meals", "", meal("Lunch", "Chicken and rice", true))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.True(t, utils.IsWellFormedToken(c.Value))
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.True(t, c.HttpOnly)

	body := decode[struct{ Meal mealJSON }](t, w)
	assert.Equal(t, "Lunch", body.Meal.Name)
	assert.Equal(t, "Chicken and rice", body.Meal.Description)
	assert.True(t, body.Meal.IsUnderDiet)
	assert.Equal(t, c.Value, body.Meal.SessionID)
	assert.True(t, utils.IsWellFormedToken(body.Meal.ID))
}

func TestCreateMeal_WithCookieDoesNotResetIt(t *testing.T) {
	app := newTestApp(t)
	tok := utils.NewToken()

	w := app.do(t, http.MethodPost, "/meals", tok, meal("a", "b", false))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, sessionCookie(w))

	body := decode[struct{ Meal mealJSON }](t, w)
	assert.Equal(t, tok, body.Meal.SessionID)
	assert.False(t, body.Meal.IsUnderDiet)
}

func TestCreateMeal_MissingFields(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/meals", "", map[string]any{"name": "only"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[struct {
		Error  string
		Fields []string
	}](t, w)
	assert.Equal(t, []string{"description", "isUnderDiet"}, body.Fields)
	assert.Contains(t, body.Error, "description,isUnderDiet")
	assert.Nil(t, sessionCookie(w))
	assert.Equal(t, 0, app.repo.MealCount())

	w = app.do(t, http.MethodPost, "/meals", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"name", "description", "isUnderDiet"}, decode[struct{ Fields []string }](t, w).Fields)

	w = app.do(t, http.MethodPost, "/meals", "", map[string]any{"name": "a", "description": "b", "isUnderDiet": "yes"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"isUnderDiet"}, decode[struct{ Fields []string }](t, w).Fields)
}

func TestListMeals_RequiresSession(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/meals", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, decode[struct{ Error string }](t, w).Error)

	w = app.do(t, http.MethodGet, "/meals/metrics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListMeals_UnknownTokenIsEmptySession(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/meals", utils.NewToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"meals":[]}`, w.Body.String())
}

func TestListMeals_ScopedAndOrdered(t *testing.T) {
	app := newTestApp(t)
	a, b := utils.NewToken(), utils.NewToken()

	for _, step := range []struct{ tok, name string }{{a, "a1"}, {b, "b1"}, {a, "a2"}, {a, "a3"}} {
		require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/meals", step.tok, meal(step.name, "x", true)).Code)
	}

	w := app.do(t, http.MethodGet, "/meals", a, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct{ Meals []mealJSON }](t, w).Meals
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a1", "a2", "a3"}, []string{list[0].Name, list[1].Name, list[2].Name})
	for _, m := range list {
		assert.Equal(t, a, m.SessionID)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	tok := utils.NewToken()

	for _, flag := range []bool{true, true, false, true, true, true} {
		require.Equal(t, http.StatusCreated, app.do(t, http.MethodPost, "/meals", tok, meal("m", "d", flag)).Code)
	}

	w := app.do(t, http.MethodGet, "/meals/metrics", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"metrics":{"totalMeals":6,"mealsInsideOfDiet":5,"mealsOutsideOfDiet":1,"bestStreakInsideOfDiet":3,"dietAdherenceRatio":83.33}}`, w.Body.String())

	w = app.do(t, http.MethodGet, "/meals/metrics", utils.NewToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"metrics":{"totalMeals":0,"mealsInsideOfDiet":0,"mealsOutsideOfDiet":0,"bestStreakInsideOfDiet":0,"dietAdherenceRatio":0}}`, w.Body.String())
}

func TestGetMeal(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/meals", "", meal("Dinner", "Soup", true))
	created := decode[struct{ Meal mealJSON }](t, w).Meal

	// lookup by id is not session scoped
	w = app.do(t, http.MethodGet, "/meals/"+created.ID, utils.NewToken(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct{ Meal mealJSON }](t, w).Meal
	assert.Equal(t, created, got)

	w = app.do(t, http.MethodGet, "/meals/"+utils.NewToken(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"meal":null}`, w.Body.String())

	w = app.do(t, http.MethodGet, "/meals/not-a-uuid", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid ID"}`, w.Body.String())
}

func TestMealRoutes_RejectNonCanonicalIDs(t *testing.T) {
	app := newTestApp(t)
	id := utils.NewToken()

	for _, raw := range []string{
		"urn:uuid:" + id,
		"{" + id + "}",
		strings.ReplaceAll(id, "-", ""),
	} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			w := app.do(t, method, "/meals/"+raw, "", meal("a", "b", true))
			assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", method, raw)
		}
	}
}

func TestSessionCookie_NonCanonicalForms(t *testing.T) {
	app := newTestApp(t)
	tok := utils.NewToken()

	// braced and urn forms are not tokens: the caller is enrolled afresh
	w := app.do(t, http.MethodPost, "/meals", "urn:uuid:"+tok, meal("a", "b", true))
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, sessionCookie(w))
	assert.NotEqual(t, tok, decode[struct{ Meal mealJSON }](t, w).Meal.SessionID)

	// upper case is the same token as lower case
	w = app.do(t, http.MethodPost, "/meals", strings.ToUpper(tok), meal("c", "d", true))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, sessionCookie(w))
	assert.Equal(t, tok, decode[struct{ Meal mealJSON }](t, w).Meal.SessionID)

	w = app.do(t, http.MethodGet, "/meals", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct{ Meals []mealJSON }](t, w).Meals
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].Name)
}

func TestUpdateMeal(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/meals", "", meal("a", "b", true))
	created := decode[struct{ Meal mealJSON }](t, w).Meal

	w = app.do(t, http.MethodPut, "/meals/"+created.ID, "", meal("c", "d", false))
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[struct{ Meal mealJSON }](t, w).Meal
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.SessionID, updated.SessionID)
	assert.Equal(t, "c", updated.Name)
	assert.False(t, updated.IsUnderDiet)

	w = app.do(t, http.MethodPut, "/meals/"+created.ID, "", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPut, "/meals/bad-id", "", meal("c", "d", false))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMeal_UnknownIDChangesNothing(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPut, "/meals/"+utils.NewToken(), "", meal("c", "d", false))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, app.repo.MealCount())
}

func TestDeleteMeal_Idempotent(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/meals", "", meal("a", "b", true))
	created := decode[struct{ Meal mealJSON }](t, w).Meal

	for i := 0; i < 2; i++ {
		w = app.do(t, http.MethodDelete, "/meals/"+created.ID, "", nil)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Empty(t, w.Body.String())
	}
	assert.Equal(t, 0, app.repo.MealCount())

	w = app.do(t, http.MethodDelete, "/meals/123", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport_DisabledWithoutUploader(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/meals/export", "", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, app.do(t, http.MethodPost, "/meals/export", utils.NewToken(), nil).Code)
}

func TestSessions(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	c := sessionCookie(w)
	require.NotNil(t, c)

	// reuse policy: presenting the cookie returns the same session, no new cookie
	w = app.do(t, http.MethodPost, "/sessions", c.Value, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, sessionCookie(w))
	assert.Equal(t, c.Value, decode[struct{ Session struct{ ID string } }](t, w).Session.ID)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/sessions", "", nil).Code)

	tok, err := utils.GenerateAdminJWT("admin-secret", "ops", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct{ Sessions []struct{ ID string } }](t, w).Sessions, 1)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	app.do(t, http.MethodPost, "/meals", "", meal("a", "b", false))
	w = app.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dailydiet_meals_created_total{under_diet="false"} 1`)
}
