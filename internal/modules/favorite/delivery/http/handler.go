package handler

import (
	"net/http"

	favorite "anoa.com/elearning/internal/modules/favorite/service"
	"anoa.com/elearning/pkg/response"
	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	service favorite.Service
}

func NewFavoriteHandler(service favorite.Service) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

func (h *FavoriteHandler) Favorite(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	fav, err := h.service.Favorite(c.Request.Context(), userID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, fav)
}

func (h *FavoriteHandler) Unfavorite(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Unfavorite(c.Request.Context(), userID, courseID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course removed from favorites"})
}

func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courses, err := h.service.GetFavorites(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}
