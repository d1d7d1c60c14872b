package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cbpricey/Motion-Industries/internal/http/response"
	"github.com/cbpricey/Motion-Industries/internal/pkg/ctxutil"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
	"github.com/cbpricey/Motion-Industries/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) List(c *gin.Context) {
	actor := ctxutil.GetRequestData(c.Request.Context()).Actor()
	users, err := uh.userService.ListUsers(c.Request.Context(), actor)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

func (uh *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	actor := ctxutil.GetRequestData(c.Request.Context()).Actor()
	user, err := uh.userService.CreateUser(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) Update(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFromError(c, apperrors.ErrInvalidArgument)
		return
	}
	var req services.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	actor := ctxutil.GetRequestData(c.Request.Context()).Actor()
	user, err := uh.userService.UpdateUser(c.Request.Context(), actor, userID, req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

func (uh *UserHandler) Delete(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFromError(c, apperrors.ErrInvalidArgument)
		return
	}
	actor := ctxutil.GetRequestData(c.Request.Context()).Actor()
	if err := uh.userService.DeleteUser(c.Request.Context(), actor, userID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
