package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dbpkg "github.com/Tathya-Dixit/recipe-share/internal/db"
	"github.com/Tathya-Dixit/recipe-share/internal/middleware"
	"github.com/Tathya-Dixit/recipe-share/internal/service"
	"github.com/Tathya-Dixit/recipe-share/internal/storage"
	"github.com/Tathya-Dixit/recipe-share/internal/utils"
)

const testPassword = "hunter23"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	media  *storage.MemoryStore
}

// setupServer mounts every route over an in-memory SQLite database
func setupServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, dbpkg.AutoMigrate(db))

	cache := utils.NewMemoryCache()
	media := storage.NewMemoryStore()
	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:      db,
		Service: service.New(db, cache, media, 1<<20),
		Cache:   cache,
		Session: SessionConfig{Secret: "test-secret-key-32-characters-long", TTL: time.Hour},
		Media:   media,
	})
	return &testServer{router: r, media: media}
}

func (s *testServer) serve(req *http.Request, session string) *httptest.ResponseRecorder {
	if session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: session})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path, session string) *httptest.ResponseRecorder {
	return s.serve(httptest.NewRequest(http.MethodGet, path, nil), session)
}

func (s *testServer) postForm(path string, form url.Values, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.serve(req, session)
}

func (s *testServer) postJSON(path, body, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.serve(req, session)
}

func (s *testServer) postMultipart(t *testing.T, path string, fields map[string]string, fileField string, file []byte, session string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(fileField, "upload.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.serve(req, session)
}

// signup registers and logs in a user, returning the session token
func (s *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	w := s.postForm("/register", url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password1": {testPassword},
		"password2": {testPassword},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.postForm("/login", url.Values{"username": {username}, "password": {testPassword}}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			return ck.Value
		}
	}
	t.Fatal("login did not set a session cookie")
	return ""
}

func (s *testServer) createRecipe(t *testing.T, session, title string) uint {
	t.Helper()
	w := s.postMultipart(t, "/recipe/create", recipeFields(title), "image", pngBytes(t), session)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Recipe struct {
			ID uint `json:"id"`
		} `json:"recipe"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Recipe.ID
}

func recipeFields(title string) map[string]string {
	return map[string]string{
		"title":               title,
		"small_description":   "Comfort food",
		"estimated_prep_time": "40 Minutes",
		"ingredients_list":    "Lentils\nTurmeric",
		"process":             "Boil\nTemper",
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	s := setupServer(t)

	w := s.get("/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	s := setupServer(t)
	form := url.Values{
		"username":  {"chef01"},
		"email":     {"chef01@example.com"},
		"password1": {testPassword},
		"password2": {testPassword},
	}

	w := s.postForm("/register", form, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/login", decode(t, w)["redirect"])

	w = s.postForm("/register", form, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists!", decode(t, w)["error"])

	form.Set("password2", "different")
	w = s.postForm("/register", form, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Passwords don't match!", decode(t, w)["error"])

	w = s.postForm("/login", url.Values{"username": {"chef01"}, "password": {"wrong-pass"}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password!", decode(t, w)["error"])

	w = s.postForm("/login", url.Values{"username": {"chef01"}, "password": {testPassword}}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Welcome back, chef01!", body["message"])
	assert.NotEmpty(t, body["token"])
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// Logged-in users skip the login form
	w = s.postForm("/login", url.Values{"username": {"chef01"}, "password": {testPassword}}, cookies[0].Value)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Already logged in", decode(t, w)["message"])
}

func TestLogoutRevokesSession(t *testing.T) {
	s := setupServer(t)
	session := s.signup(t, "chef01")

	w := s.get("/profile", session)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.postForm("/logout", nil, session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "See you again!", decode(t, w)["message"])

	w = s.get("/profile", session)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Anonymous logout is harmless
	w = s.get("/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	s := setupServer(t)

	for _, path := range []string{"/profile", "/profile/edit", "/recipe/create", "/recipe/1/edit", "/recipe/1/delete"} {
		w := s.get(path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := s.postForm("/recipe/1/review", url.Values{"rating": {"5"}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecipeLifecycle(t *testing.T) {
	s := setupServer(t)
	chef := s.signup(t, "chef01")
	critic := s.signup(t, "critic1")

	w := s.get("/recipe/create", chef)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":{"required":true,"max_length":100}`)

	// Missing image is a field error
	w = s.postMultipart(t, "/recipe/create", recipeFields("Dal"), "", nil, chef)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"image": "This field is required."}, decode(t, w)["fields"])

	id := s.createRecipe(t, chef, "Dal")
	path := recipePath(id)

	w = s.get(path, "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)
	assert.Equal(t, []any{"Lentils", "Turmeric"}, detail["ingredients"])
	imageURL := detail["image_url"].(string)
	require.True(t, strings.HasPrefix(imageURL, "/media/recipe_images/"))

	w = s.get(imageURL, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	// Non-owners can neither edit nor delete
	w = s.get(path+"/edit", critic)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.postMultipart(t, path+"/edit", recipeFields("Stolen"), "", nil, critic)
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode(t, w)
	assert.Equal(t, "You can only edit your own recipes!", body["error"])
	assert.Equal(t, path, body["redirect"])
	w = s.postForm(path+"/delete", nil, critic)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.postMultipart(t, path+"/edit", recipeFields("Dal Tadka"), "", nil, chef)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Recipe updated successfully!", decode(t, w)["message"])

	w = s.get(path+"/delete", chef)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dal Tadka")

	w = s.postForm(path+"/delete", nil, chef)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", decode(t, w)["redirect"])

	w = s.get(path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, s.media.Len())
}

func TestRecipeDetail_BadID(t *testing.T) {
	s := setupServer(t)

	for _, path := range []string{"/recipe/abc", "/recipe/0", "/recipe/-3", "/recipe/42"} {
		w := s.get(path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Recipe not found!", decode(t, w)["error"], path)
	}
}

func TestReviews(t *testing.T) {
	s := setupServer(t)
	chef := s.signup(t, "chef01")
	critic := s.signup(t, "critic1")
	id := s.createRecipe(t, chef, "Dal")
	path := recipePath(id)

	w := s.postForm(path+"/review", url.Values{"rating": {"5"}}, chef)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You can not review your own recipe!", decode(t, w)["error"])

	w = s.postForm(path+"/review", url.Values{"review": {"no stars"}}, critic)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select rating before submission!", decode(t, w)["error"])

	w = s.postForm(path+"/review", url.Values{"rating": {"4"}, "review": {"Lovely"}}, critic)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Added Review Successfully!", decode(t, w)["message"])

	w = s.postForm(path+"/review", url.Values{"rating": {"2"}}, critic)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.get(path, critic)
	detail := decode(t, w)
	assert.Equal(t, true, detail["curr_user_reviewed"])
	assert.Equal(t, 4.0, detail["average_rating"])
	assert.Equal(t, 1.0, detail["total_reviews"])

	w = s.postForm(path+"/review/delete", nil, chef)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, path, decode(t, w)["redirect"])

	w = s.postForm(path+"/review/delete", nil, critic)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Review deleted successfully!", decode(t, w)["message"])
}

func TestFeedAndProfiles(t *testing.T) {
	s := setupServer(t)
	chef := s.signup(t, "chef01")
	s.createRecipe(t, chef, "Masala Dal")
	s.createRecipe(t, chef, "Tomato Soup")

	w := s.get("/?search=soup&page=abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode(t, w)
	assert.Equal(t, 1.0, feed["total"])
	assert.Equal(t, 1.0, feed["page"])
	assert.Equal(t, "soup", feed["search"])

	w = s.get("/profile/chef01", "")
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.Equal(t, 2.0, profile["total_recipes"])
	assert.Equal(t, false, profile["is_owner"])

	w = s.get("/profile/chef01", chef)
	assert.Equal(t, true, decode(t, w)["is_owner"])

	w = s.get("/profile/nobody", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditProfile(t *testing.T) {
	s := setupServer(t)
	chef := s.signup(t, "chef01")
	s.signup(t, "chef02")

	w := s.get("/profile/edit", chef)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chef01@example.com", decode(t, w)["email"])

	w = s.postMultipart(t, "/profile/edit", map[string]string{"email": "chef02@example.com", "bio": "hi"}, "", nil, chef)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"email": "User with this Email already exists."}, decode(t, w)["fields"])

	w = s.postMultipart(t, "/profile/edit", map[string]string{"email": "cook@example.com", "bio": "hi"}, "profile_pic", pngBytes(t), chef)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/profile", decode(t, w)["redirect"])

	w = s.get("/profile", chef)
	profile := decode(t, w)
	user := profile["user"].(map[string]any)
	assert.Equal(t, "cook@example.com", user["email"])
	assert.Equal(t, "hi", user["bio"])
	assert.NotContains(t, user, "password")
	assert.True(t, strings.HasPrefix(profile["profile_pic_url"].(string), "/media/profiles/"))
}

func TestReviews_JSONBody(t *testing.T) {
	s := setupServer(t)
	chef := s.signup(t, "chef01")
	critic := s.signup(t, "critic1")
	path := recipePath(s.createRecipe(t, chef, "Dal"))

	w := s.postJSON(path+"/review", `{"rating":"abc"}`, critic)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Rating must be between 1 and 5!", decode(t, w)["error"])

	w = s.postJSON(path+"/review", `{"review":"no stars"}`, critic)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select rating before submission!", decode(t, w)["error"])

	w = s.postJSON(path+"/review", `{"rating":5,"review":"great"}`, critic)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	review := decode(t, w)["review"].(map[string]any)
	assert.Equal(t, 5.0, review["rating"])
	reviewer := review["reviewer"].(map[string]any)
	assert.Equal(t, "critic1", reviewer["username"])
	assert.NotZero(t, reviewer["id"])
}
