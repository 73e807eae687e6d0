package http

import (
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/model"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupJournal(base *echo.Group) {
	daily := base.Group("/v1/journal/daily")
	{
		daily.GET("", h.listDailyReviews)
		daily.PUT("", h.saveDailyReview)
		daily.GET("/:date", h.getDailyReview)
		daily.DELETE("/:date", h.deleteDailyReview)
	}

	weekly := base.Group("/v1/journal/weekly")
	{
		weekly.GET("", h.listWeeklyReviews)
		weekly.PUT("", h.saveWeeklyReview)
		weekly.GET("/:label", h.getWeeklyReview)
		weekly.DELETE("/:label", h.deleteWeeklyReview)
	}

	tags := base.Group("/v1/journal/tags")
	{
		tags.GET("", h.listTags)
		tags.POST("", h.createTag)
		tags.DELETE("/:id", h.deleteTag)
	}
}

func (h *HttpAPIHandler) listDailyReviews(c echo.Context) error {
	reviews, err := h.service.JournalService.ListDailyReviews(c.Request().Context(), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Daily reviews retrieved", reviews))
}

func (h *HttpAPIHandler) getDailyReview(c echo.Context) error {
	review, err := h.service.JournalService.GetDailyReview(c.Request().Context(), c.Param("date"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Daily review retrieved", review))
}

func (h *HttpAPIHandler) saveDailyReview(c echo.Context) error {
	req := new(dto.SaveDailyReviewRequest)
	if err := h.bind(c, req); err != nil {
		return h.respondBadRequest(c, err)
	}

	review, err := h.service.JournalService.SaveDailyReview(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Daily review saved", review))
}

func (h *HttpAPIHandler) deleteDailyReview(c echo.Context) error {
	if err := h.service.JournalService.DeleteDailyReview(c.Request().Context(), c.Param("date")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Daily review deleted", nil))
}

func (h *HttpAPIHandler) listWeeklyReviews(c echo.Context) error {
	reviews, err := h.service.JournalService.ListWeeklyReviews(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Weekly reviews retrieved", reviews))
}

func (h *HttpAPIHandler) getWeeklyReview(c echo.Context) error {
	review, err := h.service.JournalService.GetWeeklyReview(c.Request().Context(), c.Param("label"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Weekly review retrieved", review))
}

func (h *HttpAPIHandler) saveWeeklyReview(c echo.Context) error {
	req := new(dto.SaveWeeklyReviewRequest)
	if err := h.bind(c, req); err != nil {
		return h.respondBadRequest(c, err)
	}

	review, err := h.service.JournalService.SaveWeeklyReview(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Weekly review saved", review))
}

func (h *HttpAPIHandler) deleteWeeklyReview(c echo.Context) error {
	if err := h.service.JournalService.DeleteWeeklyReview(c.Request().Context(), c.Param("label")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Weekly review deleted", nil))
}

func (h *HttpAPIHandler) listTags(c echo.Context) error {
	tags, err := h.service.JournalService.ListTags(c.Request().Context(), model.TagKind(c.QueryParam("kind")))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Tags retrieved", tags))
}

func (h *HttpAPIHandler) createTag(c echo.Context) error {
	req := new(dto.CreateTagRequest)
	if err := h.bind(c, req); err != nil {
		return h.respondBadRequest(c, err)
	}

	tag, err := h.service.JournalService.CreateTag(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Tag created", tag))
}

func (h *HttpAPIHandler) deleteTag(c echo.Context) error {
	if err := h.service.JournalService.DeleteTag(c.Request().Context(), c.Param("id")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Tag deleted", nil))
}
