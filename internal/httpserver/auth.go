package httpserver

import (
	"net/http"

	accountsvc "vatshop/internal/service/account"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	Email    string `json:"email" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *handlers) register(c *gin.Context) {
	var req accountsvc.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	acc, token, err := h.deps.AccountSvc.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.deps.AccountSvc.AccessTTLSeconds(),
		Account:     toAccountResponse(acc),
	})
}

// token accepts either a JSON body or an OAuth-style password grant form.
func (h *handlers) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		badRequest(c, "email and password are required")
		return
	}
	acc, token, err := h.deps.AccountSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.deps.AccountSvc.AccessTTLSeconds(),
		Account:     toAccountResponse(acc),
	})
}

func (h *handlers) getMe(c *gin.Context) {
	acc, err := h.deps.AccountSvc.Get(c.Request.Context(), *accountFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(acc))
}

func (h *handlers) updateMe(c *gin.Context) {
	var req accountsvc.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	acc, err := h.deps.AccountSvc.UpdateProfile(c.Request.Context(), *accountFrom(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(acc))
}
