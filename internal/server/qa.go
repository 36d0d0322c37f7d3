package server

import (
	"encoding/base64"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/lasi/internal/api"
	"github.com/abhisek/lasi/internal/apierr"
	"github.com/abhisek/lasi/internal/gateway"
)

func (s *Server) simplify(c *gin.Context) {
	var req api.SimplifyRequest
	if !bind(c, &req) {
		return
	}
	l, err := parseLang(req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	out, err := s.gw.Simplify(c.Request.Context(), req.Text, l, gateway.ParseLevel(req.Level))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, api.TextResponse{Text: out})
}

func (s *Server) format(c *gin.Context) {
	var req api.FormatRequest
	if !bind(c, &req) {
		return
	}
	l, err := parseLang(req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	out, err := s.gw.Format(c.Request.Context(), req.Text, l)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, api.TextResponse{Text: out})
}

func (s *Server) questions(c *gin.Context) {
	var req api.QuestionsRequest
	if !bind(c, &req) {
		return
	}
	l, err := parseLang(req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	qs, err := s.gw.Questions(c.Request.Context(), gateway.QuestionsInput{
		Fragment:          req.Fragment,
		PreviousQuestions: req.PreviousQuestions,
		Language:          l,
		Difficulty:        gateway.ParseDifficulty(req.Difficulty),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, qs)
}

func (s *Server) questionsBatch(c *gin.Context) {
	var req api.BatchQuestionsRequest
	if !bind(c, &req) {
		return
	}
	l, err := parseLang(req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	res, err := s.gw.QuestionsBatch(c.Request.Context(), gateway.BatchInput{
		TextName:   req.TextName,
		Fragments:  req.Fragments,
		Language:   l,
		Difficulty: gateway.ParseDifficulty(req.Difficulty),
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	byFragment := make(map[string][]string, len(res.ByFragment))
	for i, qs := range res.ByFragment {
		byFragment[strconv.Itoa(i)] = qs
	}
	RespondOK(c, api.BatchQuestionsResponse{
		QuestionsByFragment: byFragment,
		TotalFragments:      res.TotalFragments,
		TotalAPICalls:       res.TotalAPICalls,
	})
}

func (s *Server) evaluate(c *gin.Context) {
	var req api.EvaluateRequest
	if !bind(c, &req) {
		return
	}
	l, err := parseLang(req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	if req.Strictness != 0 && (req.Strictness < 1 || req.Strictness > 3) {
		RespondError(c, apierr.InvalidRequest("strictness must be 1-3, got %d", req.Strictness))
		return
	}

	ev, err := s.gw.Evaluate(c.Request.Context(), gateway.EvaluateInput{
		Fragment:   req.Fragment,
		Question:   req.Question,
		Answer:     req.Answer,
		Language:   l,
		UserID:     req.UserID,
		Strictness: gateway.ParseStrictness(req.Strictness),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, api.EvaluateResponse{
		Feedback:       ev.Feedback,
		CorrectSnippet: ev.CorrectSnippet,
		Correct:        ev.Correct,
		RateLimited:    ev.RateLimited,
		WaitTime:       ev.WaitTime,
	})
}

func (s *Server) audio(c *gin.Context) {
	var req api.AudioRequest
	if !bind(c, &req) {
		return
	}
	l, err := parseLang(req.Language)
	if err != nil {
		RespondError(c, err)
		return
	}
	clip, err := s.gw.Audio(c.Request.Context(), req.Text, l)
	if err != nil {
		RespondError(c, err)
		return
	}

	words := make([]api.WordTiming, len(clip.Words))
	for i, w := range clip.Words {
		words[i] = api.WordTiming{Word: w.Word, Start: w.Start, End: w.End}
	}
	RespondOK(c, api.AudioResponse{
		Audio: base64.StdEncoding.EncodeToString(clip.Audio),
		MIME:  clip.MIME,
		Words: words,
	})
}
