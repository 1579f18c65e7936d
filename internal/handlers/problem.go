package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rickgao0917/quantrooms/internal/models"
	"github.com/rickgao0917/quantrooms/internal/services"
)

type ProblemHandler struct {
	problemService *services.ProblemService
}

func NewProblemHandler(problemService *services.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: problemService}
}

type ImportProblemsRequest struct {
	Problems []ProblemInput `json:"problems" binding:"required,min=1,dive"`
}

type ProblemInput struct {
	Title      string `json:"title" binding:"required,max=255"`
	Slug       string `json:"slug" binding:"required,max=150"`
	URL        string `json:"url" binding:"required,url"`
	Difficulty string `json:"difficulty" binding:"required,oneof=easy medium hard"`
}

// ListProblems godoc
// @Summary      List the problem catalog
// @Tags         problems
// @Produce      json
// @Success      200 {array} models.Problem
// @Router       /api/v1/problems [get]
func (h *ProblemHandler) ListProblems(c *gin.Context) {
	problems, err := h.problemService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, problems)
}

// ImportProblems godoc
// @Summary      Import or update catalog problems
// @Tags         problems
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body ImportProblemsRequest true "Problems"
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/problems/import [post]
func (h *ProblemHandler) ImportProblems(c *gin.Context) {
	var req ImportProblemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	problems := make([]models.Problem, len(req.Problems))
	for i, p := range req.Problems {
		problems[i] = models.Problem{
			Title:      p.Title,
			Slug:       p.Slug,
			URL:        p.URL,
			Difficulty: p.Difficulty,
		}
	}

	created, err := h.problemService.Import(problems)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created, "total": len(problems)})
}
