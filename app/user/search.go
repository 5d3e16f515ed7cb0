package user

import (
	"net/http"
	"strconv"

	"userhub/admin-api/internal"
	"userhub/admin-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Search lists accounts with substring matching on name and email, optional
// role and status filters, and offset pagination
func Search(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	q := d.DB.Model(model.User{})

	if query := c.Query("query"); query != "" {
		like := "%" + query + "%"
		q = q.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	if role := c.Query("role"); role != "" {
		if !model.Role(role).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "invalid role filter",
				"requestID": requestID,
			})
			return
		}
		q = q.Where("role = ?", role)
	}

	switch model.UserStatus(c.Query("status")) {
	case "":
	case model.StatusActive:
		q = q.Where("is_active = ?", true)
	case model.StatusInactive:
		q = q.Where("is_active = ?", false)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "invalid status filter",
			"requestID": requestID,
		})
		return
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to count users", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var users []model.User
	err := q.
		Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to search users", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	results := make([]model.PublicUser, len(users))
	for i := range users {
		results[i] = users[i].Public()
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	c.JSON(http.StatusOK, gin.H{
		"users":      results,
		"total":      total,
		"page":       page,
		"pageSize":   pageSize,
		"totalPages": totalPages,
		"requestID":  requestID,
	})
}
