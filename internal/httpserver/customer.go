package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	customersvc "pizzashack/internal/service/customer"
)

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func signupHandler(svc customerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in customersvc.SignupInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		cust, err := svc.Signup(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		cust.PasswordHash = ""
		c.JSON(http.StatusCreated, cust)
	}
}

func getCustomerHandler(svc customerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cust, err := svc.Get(c.Request.Context(), c.Param("phone"), bearerToken(c))
		if err != nil {
			respondError(c, err)
			return
		}
		cust.PasswordHash = ""
		c.JSON(http.StatusOK, cust)
	}
}

func updateCustomerHandler(svc customerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in customersvc.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		cust, err := svc.Update(c.Request.Context(), c.Param("phone"), bearerToken(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		cust.PasswordHash = ""
		c.JSON(http.StatusOK, cust)
	}
}

func deleteCustomerHandler(svc customerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("phone"), bearerToken(c)); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func loginHandler(svc customerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone and password required"})
			return
		}
		tokenID, expiresAt, err := svc.Login(c.Request.Context(), req.Phone, req.Password)
		if err != nil {
			if errors.Is(err, customersvc.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": tokenID, "phone": req.Phone, "expiresAt": expiresAt})
	}
}

func extendTokenHandler(svc customerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		expiresAt, err := svc.Extend(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "expiresAt": expiresAt})
	}
}

func logoutHandler(svc customerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
