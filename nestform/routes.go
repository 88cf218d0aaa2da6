// Common routes and pages
package nestform

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/G-Node/nestform/nestform/db"
	"github.com/G-Node/nestform/nestform/form"
	"github.com/G-Node/nestform/nestform/web"
	"github.com/G-Node/nestform/templates"
	"github.com/gogs/go-gogs-client"
	"github.com/gorilla/mux"
)

// authedHandler is a handler that requires an authenticated user
type authedHandler func(w http.ResponseWriter, r *http.Request, sess *db.Session)

// sectioned is implemented by the forms that can be rendered.
type sectioned interface {
	Sections() []form.Section
}

// reqLoginHandler acts as middleware to check if the user is logged in.
// Returns a function that matches 'authedHandler()'.
// Use for pages that require authentication (currently, everything except the login page).
func (srv *Service) reqLoginHandler(handler authedHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(srv.Config.CookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		sess, err := srv.db.GetSession(cookie.Value)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if sess.Expired(srv.Config.SessionMaxAge) {
			if err := srv.db.DeleteSession(sess.ID); err != nil {
				srv.log.Printf("Failed to delete expired session: %v", err)
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		handler(w, r, sess)
	}
}

// setupWebRoutes sets up the routes of the service.
//
// Login, Form (editable and read-only), and Job log pages
func (srv *Service) setupWebRoutes() {
	router := srv.web.Router
	router.StrictSlash(true)

	router.HandleFunc("/login", srv.renderLoginPage).Methods("GET")
	router.HandleFunc("/login", srv.userLoginPost).Methods("POST")
	router.HandleFunc("/logout", srv.reqLoginHandler(srv.logout)).Methods("GET")

	router.HandleFunc("/", srv.reqLoginHandler(srv.renderForm)).Methods("GET")
	router.HandleFunc("/", srv.reqLoginHandler(srv.processForm)).Methods("POST")
	router.HandleFunc("/log", srv.reqLoginHandler(srv.renderLog)).Methods("GET")
	router.HandleFunc("/log/{id:[0-9]+}", srv.reqLoginHandler(srv.showJob)).Methods("GET")

	router.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.Dir("./assets"))))
}

// render executes the layout with the given content template.  The page is
// rendered to a buffer first so that a template error can still be reported
// with an error page.
func (srv *Service) render(w http.ResponseWriter, status int, content string, data interface{}) {
	tmpl := template.New("layout")
	tmpl, err := tmpl.Parse(templates.Layout)
	if err == nil {
		tmpl, err = tmpl.Parse(content)
	}
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error parsing page template")
		return
	}
	page := new(bytes.Buffer)
	if err := tmpl.Execute(page, data); err != nil {
		srv.log.Printf("Failed to render page: %v", err)
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error rendering page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(page.Bytes())
}

func (srv *Service) renderLoginPage(w http.ResponseWriter, r *http.Request) {
	srv.render(w, http.StatusOK, templates.Login, nil)
}

func (srv *Service) userLoginPost(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		srv.web.ErrorResponse(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	client := gogs.NewClient(srv.Config.GINServer, "")
	tokens, err := client.ListAccessTokens(username, password)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	var userToken string
	if len(tokens) == 0 {
		token, err := client.CreateAccessToken(username, password, gogs.CreateAccessTokenOption{Name: srv.Config.CookieName})
		if err != nil {
			srv.web.ErrorResponse(w, http.StatusUnauthorized, "authentication failed")
			return
		}
		userToken = token.Sha1
	} else {
		userToken = tokens[0].Sha1
	}

	sess := db.NewSession(username, userToken)
	if err := srv.db.InsertSession(sess); err != nil {
		srv.log.Printf("Failed to store session for %q: %v", username, err)
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	cookie := http.Cookie{
		Name:     srv.Config.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.Created.Add(srv.Config.SessionMaxAge),
		HttpOnly: true,
	}

	http.SetCookie(w, &cookie)
	// Redirect to form
	http.Redirect(w, r, "/", http.StatusFound)
}

func (srv *Service) logout(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	if err := srv.db.DeleteSession(sess.ID); err != nil {
		srv.log.Printf("Failed to delete session: %v", err)
	}
	http.SetCookie(w, &http.Cookie{Name: srv.Config.CookieName, Value: "", Path: "/", Expires: time.Unix(0, 0)})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// formData builds the template data for rendering the form f.
func (srv *Service) formData(f form.Child) map[string]interface{} {
	data := make(map[string]interface{})
	data["name"] = srv.Name
	if s, ok := f.(sectioned); ok {
		data["sections"] = s.Sections()
	}
	return data
}

func (srv *Service) renderForm(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	f, err := srv.factory(nil, "")
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error constructing form")
		return
	}
	srv.render(w, http.StatusOK, templates.Form, srv.formData(f))
}

// countErrors adds the fields with errors of every section to the metrics.
func (srv *Service) countErrors(f form.Child) {
	s, ok := f.(sectioned)
	if !ok {
		return
	}
	for _, sec := range s.Sections() {
		n := 0
		for _, elem := range sec.Elements {
			if len(elem.Errors) > 0 {
				n++
			}
		}
		if n == 0 {
			continue
		}
		key := sec.Key
		if key == "" {
			key = "parent"
		}
		srv.web.Metrics.NestedErrors.WithLabelValues(key).Add(float64(n))
	}
}

func (srv *Service) processForm(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	if err := r.ParseForm(); err != nil {
		srv.log.Printf("Failed to parse form: %v", err)
		srv.web.ErrorResponse(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	postValues := r.PostForm

	f, err := srv.factory(postValues, "")
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error constructing form")
		return
	}
	if !f.IsValid() {
		srv.web.Metrics.Submissions.WithLabelValues(web.OutcomeInvalid).Inc()
		srv.countErrors(f)
		data := srv.formData(f)
		data["invalid"] = f.Errors().Len()
		srv.render(w, http.StatusBadRequest, templates.Form, data)
		return
	}

	saved, err := f.Save(form.Kwargs{KwargUser: sess.UserName, KwargDB: srv.db})
	if err != nil {
		srv.web.Metrics.Submissions.WithLabelValues(web.OutcomeFailed).Inc()
		srv.log.Printf("Failed to save form for %q: %v", sess.UserName, err)
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error saving form")
		return
	}
	srv.web.Metrics.Submissions.WithLabelValues(web.OutcomeSaved).Inc()

	newJob := new(db.Job)
	newJob.UserName = sess.UserName
	newJob.ValueMap = postValues
	if rec, ok := saved.(*db.Record); ok && rec != nil {
		newJob.RecordID = rec.ID
		newJob.Label = srv.Name + " #" + strconv.FormatInt(rec.ID, 10)
	}
	srv.worker.Enqueue(newJob)

	// redirect to job log
	http.Redirect(w, r, "/log", http.StatusSeeOther)
}

func (srv *Service) renderLog(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	joblog, err := srv.db.GetUserJobs(sess.UserName)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error reading jobs from DB")
		return
	}
	srv.render(w, http.StatusOK, templates.LogView, joblog)
}

func (srv *Service) showJob(w http.ResponseWriter, r *http.Request, sess *db.Session) {
	vars := mux.Vars(r)
	jobid, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	job, err := srv.db.GetJob(jobid)
	if err != nil || job.UserName != sess.UserName {
		srv.web.ErrorResponse(w, http.StatusNotFound, "No such job")
		return
	}

	// Bind the form to the submitted values and show it read-only
	f, err := srv.factory(form.Values(job.ValueMap), "")
	if err != nil {
		srv.web.ErrorResponse(w, http.StatusInternalServerError, "Error constructing form")
		return
	}
	data := srv.formData(f)

	// Add timestamps and messages to template data and set read-only
	timefmt := "15:04:05 Mon Jan 2 2006"
	data["submit_time"] = job.SubmitTime.Format(timefmt)
	if job.IsFinished() {
		data["end_time"] = job.EndTime.Format(timefmt)
	}
	data["messages"] = job.Messages
	if job.Error != "" {
		data["error"] = job.Error
	}
	data["readonly"] = true

	srv.render(w, http.StatusOK, templates.Form, data)
}
