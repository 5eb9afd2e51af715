package category

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"civicpulse/config"
	"civicpulse/dto"
	"civicpulse/middleware"
	"civicpulse/model"
	"civicpulse/services"
)

func CategoryController(router *gin.Engine, db *mongo.Database, cfg *config.Config, log *zap.Logger) {
	routes := router.Group("/categories", middleware.AccessTokenMiddleware(cfg))
	{
		routes.GET("", func(c *gin.Context) {
			ListCategories(c, db)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetCategory(c, db)
		})
		routes.POST("", middleware.AdminMiddleware(), func(c *gin.Context) {
			CreateCategory(c, db, log)
		})
		routes.PUT("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			UpdateCategory(c, db, log)
		})
		routes.DELETE("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			DeleteCategory(c, db, log)
		})
	}
}

func ListCategories(c *gin.Context, db *mongo.Database) {
	q := services.ParseQuery(c.Request.URL.Query(), services.OrgDefaults)
	ctx := c.Request.Context()
	col := db.Collection("categories")

	total, err := col.CountDocuments(ctx, q.Filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	cursor, err := col.Find(ctx, q.Filter, q.FindOptions())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	categories := []model.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OKList(categories, total, q.Pagination(total)))
}

func GetCategory(c *gin.Context, db *mongo.Database) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid category id"))
		return
	}
	var category model.Category
	err = db.Collection("categories").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, model.Fail("Category not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OK(category))
}

func CreateCategory(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	var request dto.CategoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	category := model.Category{
		Name:        request.Name,
		Description: request.Description,
		Icon:        request.Icon,
		CreatedAt:   time.Now(),
	}
	if request.Department != "" {
		dep, err := primitive.ObjectIDFromHex(request.Department)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.Fail("Invalid department id"))
			return
		}
		category.Department = &dep
	}

	res, err := db.Collection("categories").InsertOne(c.Request.Context(), category)
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusBadRequest, model.Fail("Category name already exists"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to create category"))
		return
	}
	category.ID = res.InsertedID.(primitive.ObjectID)

	log.Info("category created", zap.String("name", category.Name))
	c.JSON(http.StatusCreated, model.OK(category))
}

func UpdateCategory(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid category id"))
		return
	}
	var request dto.CategoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	set := bson.M{"name": request.Name}
	if request.Description != "" {
		set["description"] = request.Description
	}
	if request.Icon != "" {
		set["icon"] = request.Icon
	}
	if request.Department != "" {
		dep, err := primitive.ObjectIDFromHex(request.Department)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.Fail("Invalid department id"))
			return
		}
		set["department"] = dep
	}

	res, err := db.Collection("categories").UpdateByID(c.Request.Context(), id, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to update category"))
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, model.Fail("Category not found"))
		return
	}
	log.Info("category updated", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, model.OKMessage(nil, "Category updated"))
}

func DeleteCategory(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid category id"))
		return
	}
	res, err := db.Collection("categories").DeleteOne(c.Request.Context(), bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to delete category"))
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, model.Fail("Category not found"))
		return
	}
	log.Info("category deleted", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, model.OKMessage(nil, "Category deleted"))
}
