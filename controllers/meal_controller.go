package controllers

import (
	"errors"
	"net/http"

	"dailydiet/common"
	"dailydiet/middlewares"
	"dailydiet/services"
	"dailydiet/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MealController struct {
	Meals   *services.MealService
	Export  *services.ExportService
	Cookie  CookieSettings
	Metrics *middlewares.Metrics
	Log     logrus.FieldLogger
}

func NewMealController(meals *services.MealService, export *services.ExportService, cookie CookieSettings, metrics *middlewares.Metrics, log logrus.FieldLogger) *MealController {
	return &MealController{Meals: meals, Export: export, Cookie: cookie, Metrics: metrics, Log: log}
}

func (h *MealController) ListMeals(c *gin.Context) {
	sessionID, _ := middlewares.SessionID(c)

	meals, err := h.Meals.List(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *MealController) GetMeal(c *gin.Context) {
	id, ok := utils.CanonicalToken(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	meal, err := h.Meals.Get(c.Request.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"meal": nil})
		return
	}
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

func (h *MealController) GetMetrics(c *gin.Context) {
	sessionID, _ := middlewares.SessionID(c)

	metrics, err := h.Meals.Metrics(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

func (h *MealController) CreateMeal(c *gin.Context) {
	var body services.MealInput
	if err := bindJSON(c, &body); err != nil {
		h.badBody(c, err)
		return
	}

	sessionID, _ := middlewares.SessionID(c)
	meal, token, issued, err := h.Meals.Create(c.Request.Context(), sessionID, body)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	if issued {
		h.Cookie.set(c, token)
	}
	if h.Metrics != nil {
		h.Metrics.RecordMealCreated(meal.IsUnderDiet)
	}
	c.JSON(http.StatusCreated, gin.H{"meal": meal})
}

func (h *MealController) UpdateMeal(c *gin.Context) {
	id, ok := utils.CanonicalToken(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var body services.MealInput
	if err := bindJSON(c, &body); err != nil {
		h.badBody(c, err)
		return
	}

	meal, err := h.Meals.Update(c.Request.Context(), id, body)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

func (h *MealController) DeleteMeal(c *gin.Context) {
	id, ok := utils.CanonicalToken(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	if err := h.Meals.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *MealController) ExportMeals(c *gin.Context) {
	sessionID, _ := middlewares.SessionID(c)

	res, err := h.Export.Export(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"export": res})
}

func (h *MealController) badBody(c *gin.Context, err error) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
