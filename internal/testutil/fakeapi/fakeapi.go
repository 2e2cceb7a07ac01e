// Package fakeapi is an in-process stand-in for the social REST API used by
// tests. It keeps users and posts in memory and can be told to fail.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"feedctl/pkg/endpoint"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
)

const basePath = "/api/v1"

// Post is the wire shape of a post as the API returns it.
type Post struct {
	ID      int       `json:"id"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Media   string    `json:"media"`
	Tags    []string  `json:"tags"`
	Created string    `json:"created"`
	Updated string    `json:"updated"`
	Owner   string    `json:"owner"`
	Author  *Profile  `json:"author,omitempty"`
	created time.Time
}

type Profile struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

type user struct {
	Profile
	password string
}

type Server struct {
	mu       sync.Mutex
	users    map[string]user
	tokens   map[string]string
	posts    []Post
	nextID   int
	clock    time.Time
	requests map[string]int
	headers  map[string]http.Header
	faults   map[string]int

	srv *httptest.Server
}

// New starts a fake API and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		users:    make(map[string]user),
		tokens:   make(map[string]string),
		nextID:   1,
		clock:    time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC),
		requests: make(map[string]int),
		headers:  make(map[string]http.Header),
		faults:   make(map[string]int),
	}
	s.srv = httptest.NewServer(s.router())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base URL, the value for api.base_url.
func (s *Server) URL() string {
	return s.srv.URL + basePath
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.record())

	social := r.Group(basePath + "/social")
	social.POST("/auth/register", s.register)
	social.POST("/auth/login", s.login)

	posts := social.Group("/posts", s.bearer())
	posts.GET("", s.listPosts)
	posts.POST("", s.createPost)
	posts.PUT("/:id", s.updatePost)
	posts.DELETE("/:id", s.deletePost)
	return r
}

// record counts requests, keeps their headers and injects configured faults.
func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := routeKey(c.Request.Method, c.FullPath())

		s.mu.Lock()
		s.requests[key]++
		s.headers[key] = c.Request.Header.Clone()
		status, fail := s.faults[key]
		s.mu.Unlock()

		if fail {
			abort(c, status, "injected failure")
			return
		}
		c.Next()
	}
}

func (s *Server) bearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(endpoint.AuthorizationHeader)
		token, ok := strings.CutPrefix(header, endpoint.BearerPrefix)
		if !ok || token == "" {
			abort(c, http.StatusUnauthorized, "No authorization header was found")
			return
		}

		s.mu.Lock()
		email, known := s.tokens[token]
		s.mu.Unlock()
		if !known {
			abort(c, http.StatusUnauthorized, "Invalid authorization token")
			return
		}
		c.Set("email", email)
		c.Next()
	}
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Avatar   string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		abort(c, http.StatusBadRequest, "Profile already exists")
		return
	}
	u := user{Profile: Profile{Name: req.Name, Email: req.Email, Avatar: req.Avatar}, password: req.Password}
	s.users[req.Email] = u
	c.JSON(http.StatusCreated, gin.H{"id": len(s.users), "name": u.Name, "email": u.Email, "avatar": u.Avatar})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[req.Email]
	if !ok || u.password != req.Password {
		abort(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token := s.issueToken(u.Email)
	c.JSON(http.StatusOK, gin.H{"name": u.Name, "email": u.Email, "avatar": u.Avatar, "accessToken": token})
}

func (s *Server) listPosts(c *gin.Context) {
	withAuthor := c.Query(endpoint.AuthorQueryParam) == "true"

	s.mu.Lock()
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		if withAuthor {
			if u, ok := s.userByName(p.Owner); ok {
				author := u.Profile
				p.Author = &author
			}
		}
		p.Tags = append([]string{}, p.Tags...)
		out = append(out, p)
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) createPost(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Media string `json:"media"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" {
		abort(c, http.StatusBadRequest, "Title is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	owner := s.users[c.GetString("email")].Name
	p := s.insertLocked(owner, req.Title, req.Body, req.Media)
	c.JSON(http.StatusOK, p)
}

func (s *Server) updatePost(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Media string `json:"media"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.ownedPostLocked(c)
	if !ok {
		return
	}
	s.clock = s.clock.Add(time.Minute)
	s.posts[i].Title = req.Title
	s.posts[i].Body = req.Body
	s.posts[i].Media = req.Media
	s.posts[i].Updated = formatTime(s.clock)
	c.JSON(http.StatusOK, s.posts[i])
}

func (s *Server) deletePost(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.ownedPostLocked(c)
	if !ok {
		return
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (s *Server) ownedPostLocked(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		abort(c, http.StatusNotFound, "No post with such ID")
		return 0, false
	}
	for i, p := range s.posts {
		if p.ID != id {
			continue
		}
		if p.Owner != s.users[c.GetString("email")].Name {
			abort(c, http.StatusForbidden, "You do not own this post")
			return 0, false
		}
		return i, true
	}
	abort(c, http.StatusNotFound, "No post with such ID")
	return 0, false
}

func (s *Server) insertLocked(owner, title, body, media string) Post {
	s.clock = s.clock.Add(time.Minute)
	p := Post{
		ID:      s.nextID,
		Title:   title,
		Body:    body,
		Media:   media,
		Tags:    []string{},
		Created: formatTime(s.clock),
		Updated: formatTime(s.clock),
		Owner:   owner,
		created: s.clock,
	}
	s.nextID++
	// newest first, like the real feed
	s.posts = append([]Post{p}, s.posts...)
	return p
}

func (s *Server) issueToken(email string) string {
	token := fmt.Sprintf("token-%d-%s", len(s.tokens)+1, gofakeit.Numerify("######"))
	s.tokens[token] = email
	return token
}

func (s *Server) userByName(name string) (user, bool) {
	for _, u := range s.users {
		if u.Name == name {
			return u, true
		}
	}
	return user{}, false
}

// SeedUser registers a user and returns a valid access token for it.
func (s *Server) SeedUser(name, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = user{Profile: Profile{Name: name, Email: email}, password: password}
	return s.issueToken(email)
}

// SeedPosts adds n random posts owned by owner, which is created if needed.
func (s *Server) SeedPosts(owner string, n int) []Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userByName(owner); !ok {
		email := strings.ToLower(owner) + "@stud.noroff.no"
		s.users[email] = user{Profile: Profile{Name: owner, Email: email}, password: gofakeit.Password(true, true, true, false, false, 12)}
	}

	added := make([]Post, 0, n)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("%s in %s", gofakeit.FirstName(), gofakeit.City())
		body := fmt.Sprintf("%s %s says %s", gofakeit.FirstName(), gofakeit.LastName(),
			gofakeit.RandomString([]string{"hello", "good morning", "see you at the lake", "nice weather"}))
		media := ""
		if gofakeit.Bool() {
			media = fmt.Sprintf("https://picsum.photos/id/%d/600/400", gofakeit.Number(1, 1000))
		}
		added = append(added, s.insertLocked(owner, title, body, media))
	}
	return added
}

// AddPost inserts a post with fixed content owned by owner.
func (s *Server) AddPost(owner, title, body string) Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(owner, title, body, "")
}

// Posts returns the server-side posts, newest first.
func (s *Server) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Post(nil), s.posts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].created.After(out[j].created) })
	return out
}

// Fail makes every request to the route answer with status until Reset.
// Routes are written as gin paths, e.g. "/social/posts/:id".
func (s *Server) Fail(method, route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[routeKey(method, basePath+route)] = status
}

// Reset clears injected failures and request counters.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]int)
	s.requests = make(map[string]int)
	s.headers = make(map[string]http.Header)
}

// Requests is how many calls the route received.
func (s *Server) Requests(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[routeKey(method, basePath+route)]
}

// TotalRequests counts calls over all routes.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// LastHeader returns the headers of the latest call to the route.
func (s *Server) LastHeader(method, route string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[routeKey(method, basePath+route)]
}

func routeKey(method, path string) string {
	return method + " " + path
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"errors":     []gin.H{{"message": msg}},
		"status":     http.StatusText(status),
		"statusCode": status,
	})
}
