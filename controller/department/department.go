package department

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

func DepartmentController(router *gin.Engine, db *mongo.Database, cfg *config.Config, log *zap.Logger) {
	routes := router.Group("/departments", middleware.AccessTokenMiddleware(cfg))
	{
		routes.GET("", func(c *gin.Context) {
			ListDepartments(c, db)
		})
		routes.GET("/stats/all", middleware.RoleMiddleware(model.RoleOfficer, model.RoleAdmin), func(c *gin.Context) {
			DepartmentStats(c, db)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetDepartment(c, db)
		})
		routes.POST("", middleware.AdminMiddleware(), func(c *gin.Context) {
			CreateDepartment(c, db, log)
		})
		routes.PUT("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			UpdateDepartment(c, db, log)
		})
		routes.DELETE("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			DeleteDepartment(c, db, log)
		})
	}
}

func ListDepartments(c *gin.Context, db *mongo.Database) {
	q := services.ParseQuery(c.Request.URL.Query(), services.OrgDefaults)
	ctx := c.Request.Context()
	col := db.Collection("departments")

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
	departments := []model.Department{}
	if err := cursor.All(ctx, &departments); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OKList(departments, total, q.Pagination(total)))
}

func GetDepartment(c *gin.Context, db *mongo.Database) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid department id"))
		return
	}
	var department model.Department
	err = db.Collection("departments").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&department)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, model.Fail("Department not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OK(department))
}

func CreateDepartment(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	var request dto.DepartmentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	department := model.Department{
		Name:        request.Name,
		Description: request.Description,
		Email:       request.Email,
		Phone:       request.Phone,
		CreatedAt:   time.Now(),
	}
	res, err := db.Collection("departments").InsertOne(c.Request.Context(), department)
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusBadRequest, model.Fail("Department name already exists"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to create department"))
		return
	}
	department.ID = res.InsertedID.(primitive.ObjectID)

	log.Info("department created", zap.String("name", department.Name))
	c.JSON(http.StatusCreated, model.OK(department))
}

func UpdateDepartment(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid department id"))
		return
	}
	var request dto.DepartmentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	set := bson.M{"name": request.Name}
	if request.Description != "" {
		set["description"] = request.Description
	}
	if request.Email != "" {
		set["email"] = request.Email
	}
	if request.Phone != "" {
		set["phone"] = request.Phone
	}

	res, err := db.Collection("departments").UpdateByID(c.Request.Context(), id, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to update department"))
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, model.Fail("Department not found"))
		return
	}

	log.Info("department updated", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, model.OKMessage(nil, "Department updated"))
}

func DeleteDepartment(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid department id"))
		return
	}
	res, err := db.Collection("departments").DeleteOne(c.Request.Context(), bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to delete department"))
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, model.Fail("Department not found"))
		return
	}
	log.Info("department deleted", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, model.OKMessage(nil, "Department deleted"))
}

// DepartmentStats joins report counts onto each department: total reports
// and how many of them reached Resolved or Closed.
func DepartmentStats(c *gin.Context, db *mongo.Database) {
	ctx := c.Request.Context()
	cursor, err := db.Collection("departments").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "reports",
			"localField":   "_id",
			"foreignField": "department",
			"as":           "reports",
		}}},
		{{Key: "$project", Value: bson.M{
			"name":  1,
			"total": bson.M{"$size": "$reports"},
			"resolved": bson.M{"$size": bson.M{"$filter": bson.M{
				"input": "$reports",
				"as":    "r",
				"cond": bson.M{"$in": bson.A{
					"$$r.status",
					bson.A{model.StatusResolved, model.StatusClosed},
				}},
			}}},
		}}},
		{{Key: "$sort", Value: bson.M{"total": -1}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	stats := []bson.M{}
	if err := cursor.All(ctx, &stats); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OK(stats))
}
