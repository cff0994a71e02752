package handlers

import (
	"net/http"
	"strconv"

	"ivm-inventory/internal/insightvm"

	"github.com/gin-gonic/gin"
)

// InsightVMStatus проверяет связь со сканером и отдаёт сведения о сервере.
func InsightVMStatus(client *insightvm.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := client.TestConnection(c.Request.Context())
		if err != nil {
			respondError(c, scannerErrorStatus(err), err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "connected",
			"server_info": info,
		})
	}
}

// InsightVMSites отдаёт страницу сайтов сканера как есть.
func InsightVMSites(client *insightvm.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
		if err != nil || page < 0 {
			respondError(c, http.StatusBadRequest, "invalid page")
			return
		}
		size, err := strconv.Atoi(c.DefaultQuery("size", "100"))
		if err != nil || size <= 0 {
			respondError(c, http.StatusBadRequest, "invalid size")
			return
		}

		sites, err := client.Sites(c.Request.Context(), page, size)
		if err != nil {
			respondError(c, scannerErrorStatus(err), err.Error())
			return
		}
		c.JSON(http.StatusOK, sites)
	}
}
