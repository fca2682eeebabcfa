package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pyconsole/internal/app/console"
	domain "pyconsole/internal/domain/console"
)

const (
	sessionCookie = "pyconsole_session"
	pageTemplate  = "console.html"
)

type pageData struct {
	Session sessionView
	Result  *resultView
	Script  *scriptView
	Install *installView
	Error   string
}

// pageSession returns the session named by the cookie, starting a new one
// when the cookie is missing or the session expired.
func (h *handler) pageSession(c *gin.Context) *domain.Session {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if sess, err := h.console.Sessions().Get(id); err == nil {
			return sess
		}
	}

	sess := h.console.Sessions().Create()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.ID(), 0, "/", "", h.secureCookies, true)
	return sess
}

func (h *handler) render(c *gin.Context, status int, sess *domain.Session, data pageData) {
	data.Session = newSessionView(sess)
	if data.Result == nil {
		data.Result = data.Session.Last
	}
	c.HTML(status, pageTemplate, data)
}

func (h *handler) showPage(c *gin.Context) {
	h.render(c, http.StatusOK, h.pageSession(c), pageData{})
}

func (h *handler) pageRun(c *gin.Context) {
	sess := h.pageSession(c)

	source := c.PostForm("code")
	prompts := c.PostFormArray("prompt")
	values := c.PostFormArray("value")
	inputs := make(map[string]string, len(prompts))
	for i, prompt := range prompts {
		if i < len(values) {
			inputs[prompt] = values[i]
		}
	}

	res, err := h.console.Run(c.Request.Context(), sess, console.RunRequest{
		Source: &source,
		Inputs: inputs,
	})
	if err != nil {
		h.render(c, statusFromError(err), sess, pageData{Error: err.Error()})
		return
	}

	view := newResultView(res)
	h.render(c, http.StatusOK, sess, pageData{Result: &view})
}

func (h *handler) pageClear(c *gin.Context) {
	sess := h.pageSession(c)
	if err := h.console.Clear(c.Request.Context(), sess); err != nil {
		h.render(c, statusFromError(err), sess, pageData{Error: err.Error()})
		return
	}
	h.render(c, http.StatusOK, sess, pageData{})
}

func (h *handler) pageScript(c *gin.Context) {
	sess := h.pageSession(c)

	script, err := h.readUpload(c)
	if err != nil {
		h.render(c, statusFromError(err), sess, pageData{Error: err.Error()})
		return
	}
	res, err := h.console.RunScript(c.Request.Context(), script)
	if err != nil {
		h.render(c, statusFromError(err), sess, pageData{Error: err.Error()})
		return
	}

	view := newScriptView(script, res)
	h.render(c, http.StatusOK, sess, pageData{Script: &view})
}

func (h *handler) pageInstall(c *gin.Context) {
	sess := h.pageSession(c)

	res, err := h.console.Install(c.Request.Context(), sess.ID(), c.PostForm("package"))
	if err != nil {
		h.render(c, statusFromError(err), sess, pageData{Error: err.Error()})
		return
	}

	view := newInstallView(res)
	h.render(c, http.StatusOK, sess, pageData{Install: &view})
}
