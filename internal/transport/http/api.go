package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pyconsole/internal/app/console"
	domain "pyconsole/internal/domain/console"
	"pyconsole/internal/domain/execution"
)

// runRequest is the body of POST /api/v1/sessions/:id/run. A missing source
// reruns the stored session source.
type runRequest struct {
	Source *string           `json:"source"`
	Inputs map[string]string `json:"inputs"`
}

type runResponse struct {
	Result resultView     `json:"result"`
	Inputs []domain.Entry `json:"inputs"`
}

type installRequest struct {
	Name      string `json:"name" binding:"required"`
	SessionID string `json:"session_id"`
}

func (h *handler) createSession(c *gin.Context) {
	sess := h.console.Sessions().Create()
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID()})
}

func (h *handler) getSession(c *gin.Context) {
	sess, err := h.console.Sessions().Get(c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(sess))
}

func (h *handler) deleteSession(c *gin.Context) {
	if err := h.console.Sessions().Delete(c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) runSession(c *gin.Context) {
	sess, err := h.console.Sessions().Get(c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var req runRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, err)
			return
		}
	}

	res, err := h.console.Run(c.Request.Context(), sess, console.RunRequest{
		Source: req.Source,
		Inputs: req.Inputs,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, runResponse{
		Result: newResultView(res),
		Inputs: sess.Inputs().Entries(),
	})
}

func (h *handler) clearSession(c *gin.Context) {
	sess, err := h.console.Sessions().Get(c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if err := h.console.Clear(c.Request.Context(), sess); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(sess))
}

func (h *handler) runScript(c *gin.Context) {
	script, err := h.readUpload(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	res, err := h.console.RunScript(c.Request.Context(), script)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newScriptView(script, res))
}

func (h *handler) installPackage(c *gin.Context) {
	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	res, err := h.console.Install(c.Request.Context(), req.SessionID, req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newInstallView(res))
}

// readUpload extracts the multipart "script" file as a Script.
func (h *handler) readUpload(c *gin.Context) (execution.Script, error) {
	header, err := c.FormFile("script")
	if err != nil {
		return execution.Script{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if header.Size > h.maxUploadBytes {
		return execution.Script{}, fmt.Errorf("%w: %s exceeds %d bytes", errScriptTooLarge, header.Filename, h.maxUploadBytes)
	}

	file, err := header.Open()
	if err != nil {
		return execution.Script{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return execution.Script{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxUploadBytes {
		return execution.Script{}, fmt.Errorf("%w: %s exceeds %d bytes", errScriptTooLarge, header.Filename, h.maxUploadBytes)
	}

	return execution.Script{
		ID:     uuid.NewString(),
		Name:   filepath.Base(header.Filename),
		Source: string(data),
	}, nil
}
