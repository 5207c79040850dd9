package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzashack/internal/domain"
)

type createBasketRequest struct {
	Phone string `json:"phone"`
}

type updateBasketRequest struct {
	Items []domain.ItemInput `json:"items"`
}

func createBasketHandler(svc basketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createBasketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		b, err := svc.Create(c.Request.Context(), req.Phone, bearerToken(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, b)
	}
}

func getBasketHandler(svc basketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svc.Get(c.Request.Context(), c.Param("id"), bearerToken(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func updateBasketHandler(svc basketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateBasketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		b, err := svc.Update(c.Request.Context(), c.Param("id"), req.Items, bearerToken(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func deleteChoiceHandler(svc basketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		remaining, err := svc.DeleteChoice(
			c.Request.Context(),
			c.Param("id"),
			c.Param("itemID"),
			c.Param("choiceID"),
			bearerToken(c),
		)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": remaining})
	}
}

func checkoutHandler(svc basketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Checkout(c.Request.Context(), c.Param("id"), bearerToken(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func menuHandler(svc menuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Menu())
	}
}
