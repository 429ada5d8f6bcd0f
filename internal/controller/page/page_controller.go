package page

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/platebank/config"
	"github.com/lshigami/platebank/internal/controller"
	"github.com/lshigami/platebank/internal/service"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templatesFS embed.FS

// PageController serves the HTML admin page. Every action is a plain form post
// followed by a redirect back to "/" carrying a flash message in the query string.
type PageController struct {
	questionService service.QuestionService
	maxUploadBytes  int64
}

func NewPageController(questionService service.QuestionService, cfg *config.Config) *PageController {
	return &PageController{questionService: questionService, maxUploadBytes: cfg.Storage.MaxUploadMB << 20}
}

func (p *PageController) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	router.GET("/", p.Index)
	router.POST("/questions", p.Create)
	router.POST("/questions/:id/delete", p.Delete)
	router.POST("/images/cleanup", p.Cleanup)
}

func (p *PageController) Index(ctx *gin.Context) {
	data := gin.H{
		"Message": ctx.Query("msg"),
		"Error":   ctx.Query("err"),
	}

	questions, err := p.questionService.ListQuestions()
	if err != nil {
		log.Error().Err(err).Msg("Page Index: failed to list questions")
		data["Error"] = "Failed to load the question bank: " + err.Error()
	}
	data["Questions"] = questions

	if raw := ctx.Query("reveal"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			if answer, err := p.questionService.RevealAnswer(uint(id)); err == nil {
				data["RevealID"] = answer.ID
				data["RevealAnswer"] = answer.CorrectAnswer
			}
		}
	}
	ctx.HTML(http.StatusOK, "index.html", data)
}

func (p *PageController) Create(ctx *gin.Context) {
	answer := ctx.PostForm("correct_answer")

	switch ctx.PostForm("source") {
	case "url":
		imageURL := ctx.PostForm("image_url")
		if imageURL == "" || answer == "" {
			redirect(ctx, "", "Please provide an image URL and the correct answer.")
			return
		}
		if _, err := p.questionService.CreateFromURL(ctx.Request.Context(), imageURL, answer); err != nil {
			redirect(ctx, "", describe(err))
			return
		}
	default:
		fh, err := ctx.FormFile("image")
		if err != nil || answer == "" {
			redirect(ctx, "", "Please upload an image and enter the correct answer.")
			return
		}
		data, err := controller.ReadUpload(fh, p.maxUploadBytes)
		if err != nil {
			redirect(ctx, "", describe(err))
			return
		}
		if _, err := p.questionService.CreateFromUpload(data, fh.Filename, answer); err != nil {
			redirect(ctx, "", describe(err))
			return
		}
	}
	redirect(ctx, "Saved.", "")
}

func (p *PageController) Delete(ctx *gin.Context) {
	id, err := controller.ParseID(ctx)
	if err != nil {
		redirect(ctx, "", describe(err))
		return
	}
	resp, err := p.questionService.DeleteQuestion(id)
	if err != nil {
		redirect(ctx, "", describe(err))
		return
	}
	if !resp.FileRemoved {
		redirect(ctx, "", fmt.Sprintf("Question #%d deleted, but its image file could not be removed: %s", id, resp.FileError))
		return
	}
	redirect(ctx, fmt.Sprintf("Question #%d deleted.", id), "")
}

func (p *PageController) Cleanup(ctx *gin.Context) {
	report, err := p.questionService.CleanupOrphans()
	if err != nil {
		redirect(ctx, "", describe(err))
		return
	}
	msg := "No unused image files found."
	if len(report.Removed) > 0 {
		msg = fmt.Sprintf("Removed %d unused image file(s).", len(report.Removed))
	}
	errMsg := ""
	if len(report.Failed) > 0 {
		errMsg = fmt.Sprintf("%d file(s) could not be removed, first failure: %s", len(report.Failed), report.Failed[0].Error)
	}
	redirect(ctx, msg, errMsg)
}

func describe(err error) string {
	switch controller.StatusFor(err) {
	case http.StatusConflict:
		return "A question with the same answer already exists in the bank."
	case http.StatusUnprocessableEntity:
		return "Could not load the image: " + err.Error()
	case http.StatusNotFound:
		return "Question not found."
	default:
		return err.Error()
	}
}

func redirect(ctx *gin.Context, msg, errMsg string) {
	q := url.Values{}
	if msg != "" {
		q.Set("msg", msg)
	}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	ctx.Redirect(http.StatusSeeOther, target)
}
