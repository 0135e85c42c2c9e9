package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/mashtun/internal/catalog"
	"github.com/zulandar/mashtun/internal/recipe"
	"github.com/zulandar/mashtun/internal/session"
	"gorm.io/gorm"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	api := router.Group("/api")

	api.GET("/health", handleHealth())

	api.GET("/recipes", handleRecipeList(db))
	api.GET("/recipes/:id", handleRecipeDetail(db))
	api.POST("/recipes/:id/metrics", handleRecipeMetrics(db))
	api.POST("/recipes/:id/scale", handleRecipeScale(db))

	api.GET("/sessions", handleSessionList(db))
	api.GET("/sessions/:id", handleSessionDetail(db))

	api.GET("/ingredients", handleIngredientList(db))

	api.GET("/analytics/yeast", handleYeastStats(db))
}

// abortWithError maps service errors onto HTTP statuses. The service
// packages fold gorm's not-found into "...: not found: <id>" messages;
// everything else surfacing here failed validation.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if strings.Contains(err.Error(), "not found") {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleRecipeList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := RecipeList(db, recipe.ListFilters{
			Status: c.Query("status"),
			Style:  c.Query("style"),
			Name:   c.Query("name"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipes": rows})
	}
}

func handleRecipeDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := GetRecipeDetail(db, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func handleRecipeMetrics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := recipe.Recompute(db, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, metricsView(*m, nil))
	}
}

// scaleRequest is the body of POST /api/recipes/:id/scale. BatchSize is in
// the recipe's own batch unit.
type scaleRequest struct {
	BatchSize float64 `json:"batch_size"`
}

func handleRecipeScale(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req scaleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		preview, err := ScalePreview(db, c.Param("id"), req.BatchSize)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, preview)
	}
}

func handleSessionList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := SessionList(db, session.ListFilters{
			Status:   c.Query("status"),
			RecipeID: c.Query("recipe_id"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": rows})
	}
}

func handleSessionDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := GetSessionDetail(db, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func handleIngredientList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := IngredientList(db, catalog.ListFilters{
			Type: c.Query("type"),
			Name: c.Query("name"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ingredients": rows})
	}
}

func handleYeastStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := YeastStats(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"yeasts": rows})
	}
}
