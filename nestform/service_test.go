package nestform

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/G-Node/nestform/nestform/db"
	"github.com/G-Node/nestform/nestform/form"
)

var accountDef = form.Form{
	Name: "Account",
	Elements: []form.Element{
		{Name: "username", Label: "User name", Required: true},
		{Name: "has_address", Label: "Add an address", Type: form.CheckboxInput},
	},
}

var addressDef = form.Form{
	Name: "Address",
	Elements: []form.Element{
		{Name: "city", Label: "City", Required: true, ErrorMessages: map[string]string{form.CodeRequired: "City is required"}},
	},
}

// saveRecord stores the cleaned values of b as a Record of the given kind.
func saveRecord(kind string, b *form.Bound, kwargs form.Kwargs) (*db.Record, error) {
	conn, ok := kwargs[KwargDB].(*db.Connection)
	if !ok {
		return nil, fmt.Errorf("no database in save arguments")
	}
	rec := &db.Record{Kind: kind, ValueMap: make(map[string]string)}
	rec.UserName, _ = kwargs[KwargUser].(string)
	if parent, ok := kwargs[form.SavedKey].(*db.Record); ok {
		rec.ParentID = parent.ID
	}
	for name, value := range b.CleanedData() {
		rec.ValueMap[name] = fmt.Sprint(value)
	}
	return rec, conn.InsertRecord(rec)
}

type accountForm struct {
	*form.Nested
	form.NestedBase
}

func (af *accountForm) SaveForm(kwargs form.Kwargs) (interface{}, error) {
	return saveRecord("account", af.Bound, kwargs)
}

func newAccountForm(data form.Values, prefix string) (form.Child, error) {
	af := new(accountForm)
	address := addressDef.Factory(func(b *form.Bound, kwargs form.Kwargs) (interface{}, error) {
		return saveRecord("address", b, kwargs)
	})
	nested, err := form.NewNested(form.Bind(&accountDef, data, prefix), af, []form.NestedConfig{
		{Class: address, Key: "address", FieldPrefix: "address", RequiredKey: "has_address", Post: true},
	})
	if err != nil {
		return nil, err
	}
	af.Nested = nested
	return af, nil
}

func newTestService(t *testing.T, action func(map[string][]string) ([]string, error)) *Service {
	dir, err := ioutil.TempDir("", "nestformtest")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %s", err.Error())
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	srv, err := NewService("Account", newAccountForm, action, Config{CookieName: "test-cookie", DBPath: filepath.Join(dir, "test.db"), Port: 4343})
	if err != nil {
		t.Fatalf("Failed to initialise service: %s", err.Error())
	}
	srv.SetLogger(log.New(ioutil.Discard, "", 0))
	return srv
}

func noopAction(values map[string][]string) ([]string, error) {
	return nil, nil
}

func echoAction(values map[string][]string) ([]string, error) {
	echo := make([]string, 0, len(values))
	for k, v := range values {
		echo = append(echo, fmt.Sprintf("%s:%s", k, strings.Join(v, ", ")))
	}

	sort.Strings(echo)
	return echo, nil
}

func TestServiceFailStart(t *testing.T) {
	if _, err := NewService("nil", nil, noopAction, Config{}); err == nil {
		t.Fatal("Service creation succeeded without form; should have failed")
	}

	colliding := func(data form.Values, prefix string) (form.Child, error) {
		return form.NewNested(form.Bind(&accountDef, data, prefix), nil, []form.NestedConfig{
			{Class: addressDef.Factory(nil), Key: "home"},
			{Class: addressDef.Factory(nil), Key: "work"},
		})
	}
	if _, err := NewService("colliding", colliding, noopAction, Config{}); !errors.Is(err, form.ErrPrefixCollision) {
		t.Fatalf("Service creation with colliding nested forms returned %v", err)
	}

	srv := newTestService(t, nil)
	defer srv.Close()
	if srv.Start() == nil {
		srv.Stop()
		t.Fatal("Service start succeeded without job action; should have failed")
	}
}

type LogBuffer struct {
	b   bytes.Buffer
	mux sync.Mutex
}

func (lb *LogBuffer) Write(b []byte) (int, error) {
	lb.mux.Lock()
	defer lb.mux.Unlock()
	return lb.b.Write(b)
}

func (lb *LogBuffer) String() string {
	lb.mux.Lock()
	defer lb.mux.Unlock()
	return lb.b.String()
}

func TestLoggers(t *testing.T) {
	srv := newTestService(t, noopAction)

	prefix := "[servicetest] "
	lb := new(LogBuffer)
	srv.SetLogger(log.New(lb, prefix, 0))

	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start service: %s", err.Error())
	}
	srv.Stop()

	logstring := lb.String()
	expMessages := []string{
		"Starting worker",
		"Worker started",
		"Starting web service",
		"Web server started",
		"Stopping web service",
		"Stopping worker queue",
		"Closing database connection",
		"Service stopped",
	}
	for _, msg := range expMessages {
		expmsg := fmt.Sprintf("%s%s", prefix, msg)
		if !strings.Contains(logstring, expmsg) {
			t.Fatalf("Expected message %q not found in log", expmsg)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "nestformconfig")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %s", err.Error())
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yml")
	content := "ginserver: https://gin.example.org\nport: 8080\nqueuelength: 5\nsessionmaxage: 2h\n"
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %s", err.Error())
	}

	os.Setenv("NESTFORM_PORT", "9090")
	defer os.Unsetenv("NESTFORM_PORT")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %s", err.Error())
	}
	expected := Config{
		GINServer:     "https://gin.example.org",
		Port:          9090,
		CookieName:    DefaultCookieName,
		DBPath:        DefaultDBPath,
		QueueLength:   5,
		SessionMaxAge: 2 * time.Hour,
	}
	if *cfg != expected {
		t.Fatalf("Unexpected config: %+v (expected %+v)", *cfg, expected)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yml")); err == nil {
		t.Fatal("Loading missing config file succeeded")
	}
}

func TestLoginRedirect(t *testing.T) {
	srv := newTestService(t, echoAction)
	defer srv.Close()
	lb := new(LogBuffer)
	srv.SetLogger(log.New(lb, "", 0))
	handler := srv.web.Handler

	check := func(method, route, cookie string) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(method, route, nil)
		if cookie != "" {
			req.Header.Add("Cookie", cookie)
		}
		handler.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusFound {
			t.Errorf("%s %s: handler returned wrong status code: got %v expected %v", method, route, status, http.StatusFound)
		}
	}

	expired := db.NewSession("old", "token")
	expired.Created = time.Now().Add(-30 * 24 * time.Hour)
	srv.db.InsertSession(expired)

	for _, cookie := range []string{"", "test-cookie=bad", "test-cookie=" + expired.ID} {
		check("GET", "/", cookie)
		check("POST", "/", cookie)
		check("GET", "/log", cookie)
		check("GET", "/log/42", cookie)
		check("GET", "/logout", cookie)
	}
	if _, err := srv.db.GetSession(expired.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("Expired session not deleted: %v", err)
	}
	if strings.Contains(lb.String(), "Failed to delete expired session") {
		t.Fatalf("Deleting expired session failed:\n%s", lb.String())
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/login", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Login without credentials returned %d", rr.Code)
	}
}

// login stores a session for the user and returns its cookie header.
func login(t *testing.T, srv *Service, username string) string {
	sess := db.NewSession(username, "test-token")
	if err := srv.db.InsertSession(sess); err != nil {
		t.Fatalf("Failed to insert session: %s", err.Error())
	}
	return fmt.Sprintf("test-cookie=%s", sess.ID)
}

func postForm(srv *Service, cookie string, values url.Values) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("Cookie", cookie)
	srv.web.Handler.ServeHTTP(rr, req)
	return rr
}

func TestFormRoutes(t *testing.T) {
	srv := newTestService(t, echoAction)
	defer srv.Close()
	cookie := login(t, srv, "alice")

	// Load the form
	rr := httptest.NewRecorder()
	getReq := httptest.NewRequest("GET", "/", nil)
	getReq.Header.Add("Cookie", cookie)
	srv.web.Handler.ServeHTTP(rr, getReq)
	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v expected %v", status, http.StatusOK)
	}
	if body := rr.Body.String(); !strings.Contains(body, `name="address_city"`) {
		t.Fatal("Nested form fields missing from rendered form")
	}

	// Send empty data to the form
	rr = postForm(srv, cookie, url.Values{})
	if status := rr.Code; status != http.StatusBadRequest {
		t.Fatalf("handler returned wrong status code: got %v expected %v", status, http.StatusBadRequest)
	}

	// Require the nested form without filling it in
	rr = postForm(srv, cookie, url.Values{"username": {"alice"}, "has_address": {"on"}})
	if status := rr.Code; status != http.StatusBadRequest {
		t.Fatalf("handler returned wrong status code: got %v expected %v", status, http.StatusBadRequest)
	}
	if body := rr.Body.String(); !strings.Contains(body, "City is required") {
		t.Fatal("Nested form error missing from rendered form")
	}
	if recs, _ := srv.db.RecordsByKind("account"); len(recs) != 0 {
		t.Fatalf("Invalid submission saved %d accounts", len(recs))
	}

	rr = postForm(srv, cookie, url.Values{"username": {"alice"}, "has_address": {"on"}, "address_city": {"Berlin"}})
	if status := rr.Code; status != http.StatusSeeOther {
		t.Fatalf("handler returned wrong status code: got %v expected %v", status, http.StatusSeeOther)
	}

	accounts, err := srv.db.RecordsByKind("account")
	if err != nil || len(accounts) != 1 {
		t.Fatalf("Unexpected accounts after submission: %+v (%v)", accounts, err)
	}
	if accounts[0].UserName != "alice" || accounts[0].ValueMap["username"] != "alice" {
		t.Fatalf("Unexpected account record: %+v", accounts[0])
	}
	children, err := srv.db.ChildRecords(accounts[0].ID)
	if err != nil || len(children) != 1 || children[0].ValueMap["city"] != "Berlin" {
		t.Fatalf("Address not saved with the account: %+v (%v)", children, err)
	}

	jobs, err := srv.db.GetUserJobs("alice")
	if err != nil || len(jobs) != 1 {
		t.Fatalf("Unexpected jobs after submission: %+v (%v)", jobs, err)
	}
	if jobs[0].RecordID != accounts[0].ID {
		t.Fatalf("Job not linked to the saved record: %+v", jobs[0])
	}

	// Without the flag the address is neither validated nor saved
	rr = postForm(srv, cookie, url.Values{"username": {"bob"}})
	if status := rr.Code; status != http.StatusSeeOther {
		t.Fatalf("handler returned wrong status code: got %v expected %v", status, http.StatusSeeOther)
	}
	if addrs, _ := srv.db.RecordsByKind("address"); len(addrs) != 1 {
		t.Fatalf("Unexpected number of addresses: %d", len(addrs))
	}
}

func TestLogRoutes(t *testing.T) {
	srv := newTestService(t, echoAction)
	defer srv.Close()
	cookie := login(t, srv, "alice")

	jobLabel := "TestJob"

	get := func(route string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", route, nil)
		req.Header.Add("Cookie", cookie)
		srv.web.Handler.ServeHTTP(rr, req)
		return rr
	}
	checkLogJobCount := func(nexpected int) {
		rr := get("/log")
		if status := rr.Code; status != http.StatusOK {
			t.Errorf("handler returned wrong status code: got %v expected %v", status, http.StatusOK)
		}
		if njobs := bytes.Count(rr.Body.Bytes(), []byte(jobLabel)); njobs != nexpected {
			t.Errorf("Job log returned %d, expected %d", njobs, nexpected)
		}
	}

	checkLogJobCount(0)

	srv.db.InsertJob(&db.Job{ID: 12, UserName: "alice", Label: jobLabel})
	checkLogJobCount(1)

	srv.db.InsertJob(&db.Job{ID: 16, UserName: "alice", Label: jobLabel, ValueMap: map[string][]string{"username": {"alice"}}, Messages: []string{"all done"}, EndTime: time.Now()})
	checkLogJobCount(2)

	srv.db.InsertJob(&db.Job{ID: 26, UserName: "bob", Label: jobLabel}) // other user
	checkLogJobCount(2)

	rr := get("/log/16")
	if rr.Code != http.StatusOK {
		t.Fatalf("Job page returned %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "all done") || !strings.Contains(body, `value="alice"`) {
		t.Fatalf("Job page misses submitted values or messages:\n%s", body)
	}

	if rr := get("/log/26"); rr.Code != http.StatusNotFound {
		t.Fatalf("Job of other user returned %d", rr.Code)
	}
	if rr := get("/log/1337"); rr.Code != http.StatusNotFound {
		t.Fatalf("Missing job returned %d", rr.Code)
	}
}

func TestSubmissionJob(t *testing.T) {
	srv := newTestService(t, echoAction)
	if err := srv.Start(); err != nil {
		t.Fatalf("Failed to start service: %s", err.Error())
	}
	defer srv.Stop()
	cookie := login(t, srv, "alice")

	if rr := postForm(srv, cookie, url.Values{"username": {"alice"}}); rr.Code != http.StatusSeeOther {
		t.Fatalf("Submission returned %d", rr.Code)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		jobs, err := srv.db.GetUserJobs("alice")
		if err != nil {
			t.Fatalf("Failed to read jobs: %s", err.Error())
		}
		if len(jobs) == 1 && jobs[0].IsFinished() {
			if len(jobs[0].Messages) != 1 || jobs[0].Messages[0] != "username:alice" {
				t.Fatalf("Unexpected job output messages: %+v", jobs[0].Messages)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Submission job not finished")
}
