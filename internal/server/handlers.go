package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/atlasprompt/internal/highlight"
	"github.com/ppiankov/atlasprompt/internal/pipeline"
	"github.com/ppiankov/atlasprompt/internal/style"
)

// pageData feeds templates/index.html
type pageData struct {
	Prompt string
	Places []pipeline.AnnotatedPlace
	Themes []style.Theme
	Legend []highlight.Category
}

type extractRequest struct {
	Prompt string `json:"prompt" form:"prompt"`
}

func (s *Server) page(prompt string, places []pipeline.AnnotatedPlace) pageData {
	return pageData{
		Prompt: prompt,
		Places: places,
		Themes: s.pipeline.Themes(),
		Legend: s.pipeline.Legend(),
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.page("", nil))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleExtract accepts a form post (HTML response) or a JSON body (JSON response)
func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBind(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	result, err := s.pipeline.Extract(c.Request.Context(), req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}

	places := s.pipeline.Annotate(result.Records)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"prompt": result.Prompt,
			"places": places,
			"scope":  style.ClassifyScope(result.Records),
			"model":  result.Model,
		})
		return
	}

	c.HTML(http.StatusOK, "index.html", s.page(result.Prompt, places))
}

// handleMap renders the current set. labels=1 (default) shows names, theme picks the palette.
func (s *Server) handleMap(c *gin.Context) {
	img, err := s.pipeline.RenderMap(c.Request.Context(), renderOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

func (s *Server) handleDownload(c *gin.Context) {
	records, err := s.pipeline.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="coordinates.json"`)
	c.IndentedJSON(http.StatusOK, records)
}

func (s *Server) handlePlaces(c *gin.Context) {
	records, err := s.pipeline.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"places": s.pipeline.Annotate(records),
		"scope":  style.ClassifyScope(records),
	})
}

// handleRenderRequest shows the request /map.png would send, with the key redacted
func (s *Server) handleRenderRequest(c *gin.Context) {
	req, err := s.pipeline.BuildRequest(c.Request.Context(), renderOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"params": req.Redacted().Params,
		"url":    s.pipeline.RenderURL(req),
	})
}

func renderOptions(c *gin.Context) pipeline.RenderOptions {
	labels := strings.ToLower(c.DefaultQuery("labels", "1"))
	return pipeline.RenderOptions{
		ShowNames: labels == "1" || labels == "true" || labels == "on",
		Theme:     c.Query("theme"),
	}
}

func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		return true
	}
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}
