package controllers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"embeddingsqna/services"
	"embeddingsqna/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HelperFactory cuts a fresh helper for the session's prompt and temperature.
type HelperFactory interface {
	NewHelper(customPrompt string, temperature float64) services.Helper
}

type QAController struct {
	sessions  *SessionManager
	helpers   HelperFactory
	qa        *services.QAService
	languages *services.LanguageCache
	logger    *zap.Logger
}

func NewQAController(sessions *SessionManager, helpers HelperFactory, qa *services.QAService, languages *services.LanguageCache, logger *zap.Logger) *QAController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QAController{sessions: sessions, helpers: helpers, qa: qa, languages: languages, logger: logger}
}

// pageResult carries what the request produced besides the stored state.
type pageResult struct {
	warnings    []string
	diagnostics []services.DiagnosticResult
	err         error
}

func (qc *QAController) Index(c *gin.Context) {
	st, ok := qc.load(c)
	if !ok {
		return
	}
	qc.finish(c, st, pageResult{})
}

func (qc *QAController) Ask(c *gin.Context) {
	st, ok := qc.load(c)
	if !ok {
		return
	}
	text, found := c.GetPostForm(st.InputName())
	if !found {
		text = c.PostForm("question")
	}
	*st = session.Transition(*st, session.SubmitQuestion{Text: text})
	qc.process(c, st)
}

func (qc *QAController) Followup(c *gin.Context) {
	st, ok := qc.load(c)
	if !ok {
		return
	}
	*st = session.Transition(*st, session.SelectFollowup{Text: c.PostForm("question")})
	qc.process(c, st)
}

func (qc *QAController) process(c *gin.Context, st *session.State) {
	h := qc.helpers.NewHelper(st.CustomPrompt, st.CustomTemperature)
	_, err := qc.qa.Process(c.Request.Context(), h, st)
	qc.finish(c, st, pageResult{err: err})
}

// Settings commits the settings panel. The prompt is only validated when it
// changed, and an empty prompt means "use the default".
func (qc *QAController) Settings(c *gin.Context) {
	st, ok := qc.load(c)
	if !ok {
		return
	}
	var res pageResult

	if v, found := c.GetPostForm("custom_temperature"); found {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(t) {
			res.warnings = append(res.warnings, fmt.Sprintf("Temperature %q is not a number, keeping %.1f.", v, st.CustomTemperature))
		} else {
			st.CustomTemperature = session.ClampTemperature(t)
		}
	}

	if prompt, found := c.GetPostForm("custom_prompt"); found && prompt != st.CustomPrompt {
		if prompt == "" {
			st.CustomPrompt = ""
		} else {
			st.CustomPrompt, res.warnings = services.ValidatePrompt(prompt)
		}
	}

	if lang, found := c.GetPostForm("translation_language"); found {
		st.TranslationLanguage = lang
	}

	qc.finish(c, st, res)
}

func (qc *QAController) CheckDeployment(c *gin.Context) {
	st, ok := qc.load(c)
	if !ok {
		return
	}
	newHelper := func() services.Helper {
		return qc.helpers.NewHelper(st.CustomPrompt, st.CustomTemperature)
	}
	results := services.NewDiagnostics(newHelper, qc.logger).Run(c.Request.Context())
	qc.finish(c, st, pageResult{diagnostics: results})
}

func (qc *QAController) load(c *gin.Context) (*session.State, bool) {
	st, err := qc.sessions.Load(c)
	if err != nil {
		qc.logger.Error("load session failed", zap.Error(err))
		renderError(c, http.StatusInternalServerError, fmt.Sprintf("%+v", err))
		return nil, false
	}
	return st, true
}

// finish saves st and renders it. A failed save is shown with the page
// rather than replacing it.
func (qc *QAController) finish(c *gin.Context, st *session.State, res pageResult) {
	ctx := c.Request.Context()
	h := qc.helpers.NewHelper(st.CustomPrompt, st.CustomTemperature)

	languages, langErr := qc.languages.Get(ctx, h)
	if langErr != nil {
		languages = map[string]string{}
	}
	if _, known := languages[st.TranslationLanguage]; !known && langErr == nil {
		st.TranslationLanguage = ""
	}

	saveErr := qc.sessions.Save(c, st)

	page := BuildPage(ctx, h, st, languages)
	page.Warnings = append(page.Warnings, res.warnings...)
	page.Diagnostics = res.diagnostics
	for _, err := range []error{res.err, langErr, saveErr} {
		if err != nil {
			page.Errors = append(page.Errors, fmt.Sprintf("%+v", err))
		}
	}
	c.HTML(http.StatusOK, "index.tmpl", page)
}

type QARequest struct {
	Question string `json:"question" binding:"required"`
}

type QAResponse struct {
	Question          string              `json:"question"`
	Answer            string              `json:"answer"`
	Sources           []string            `json:"sources"`
	Context           map[string][]string `json:"context"`
	FollowupQuestions []string            `json:"followup_questions"`
}

// AnswerQuestion is the stateless JSON variant of Ask.
func (qc *QAController) AnswerQuestion(c *gin.Context) {
	var req QARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h := qc.helpers.NewHelper("", qc.sessions.defaultTemperature)
	st, err := qc.qa.AnswerQuestion(c.Request.Context(), h, req.Question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	linked := h.GetLinksFilenames(st.Response, st.Sources)
	c.JSON(http.StatusOK, QAResponse{
		Question:          st.Question,
		Answer:            linked.Response,
		Sources:           linked.Sources,
		Context:           st.Context,
		FollowupQuestions: st.FollowupQuestions,
	})
}
