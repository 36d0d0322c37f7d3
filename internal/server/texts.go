package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/apierr"
	"github.com/abhisek/lasi/internal/lang"
	"github.com/abhisek/lasi/internal/textstore"
)

// parseLang resolves a language name or code. Empty means the default.
func parseLang(s string) (lang.Language, error) {
	if s == "" {
		return lang.Default, nil
	}
	l, ok := lang.Parse(s)
	if !ok {
		return "", apierr.InvalidRequest("unsupported language %q", s)
	}
	return l, nil
}

func (s *Server) health(c *gin.Context) {
	RespondOK(c, api.Health{Status: "ok", Version: s.version})
}

func (s *Server) listTexts(c *gin.Context) {
	l, err := parseLang(c.Query("lang"))
	if err != nil {
		RespondError(c, err)
		return
	}
	texts, err := s.texts.List(c.Request.Context(), l)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, texts)
}

func (s *Server) textParts(c *gin.Context) {
	l, err := parseLang(c.Query("lang"))
	if err != nil {
		RespondError(c, err)
		return
	}
	parts, err := s.texts.Parts(c.Request.Context(), c.Param("name"), l)
	if err != nil {
		RespondError(c, err)
		return
	}
	if parts == nil {
		parts = api.Parts{}
	}
	RespondOK(c, parts)
}

func (s *Server) uploadText(c *gin.Context) {
	var req api.UploadTextRequest
	if !bind(c, &req) {
		return
	}
	l, err := parseLang(req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	autoSplit := true
	if req.AutoSplit != nil {
		autoSplit = *req.AutoSplit
	}
	if req.FragmentTargetTokens < 0 {
		RespondError(c, apierr.InvalidRequest("fragmentTargetTokens must not be negative"))
		return
	}

	t, err := s.texts.Upload(c.Request.Context(), textstore.UploadInput{
		Name:         req.Name,
		Language:     l,
		Text:         req.Text,
		AutoSplit:    autoSplit,
		TargetTokens: req.FragmentTargetTokens,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.UploadTextResponse{OK: true, Item: *t})
}

func (s *Server) deleteText(c *gin.Context) {
	l, err := parseLang(c.Query("lang"))
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := s.texts.Delete(c.Request.Context(), c.Param("name"), l); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) previewText(c *gin.Context) {
	var req api.PreviewRequest
	if !bind(c, &req) {
		return
	}
	if req.TargetTokens < 0 {
		RespondError(c, apierr.InvalidRequest("targetTokens must not be negative"))
		return
	}
	RespondOK(c, api.PreviewResponse{Fragments: s.texts.Preview(req.Text, req.TargetTokens)})
}
