package region

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

func RegionController(router *gin.Engine, db *mongo.Database, cfg *config.Config, log *zap.Logger) {
	routes := router.Group("/regions", middleware.AccessTokenMiddleware(cfg))
	{
		routes.GET("", func(c *gin.Context) {
			ListRegions(c, db)
		})
		routes.GET("/stats/all", middleware.RoleMiddleware(model.RoleOfficer, model.RoleAdmin), func(c *gin.Context) {
			RegionStats(c, db)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetRegion(c, db)
		})
		routes.POST("", middleware.AdminMiddleware(), func(c *gin.Context) {
			CreateRegion(c, db, log)
		})
		routes.PUT("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			UpdateRegion(c, db, log)
		})
		routes.DELETE("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			DeleteRegion(c, db, log)
		})
	}
}

func ListRegions(c *gin.Context, db *mongo.Database) {
	q := services.ParseQuery(c.Request.URL.Query(), services.OrgDefaults)
	ctx := c.Request.Context()
	col := db.Collection("regions")

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
	regions := []model.Region{}
	if err := cursor.All(ctx, &regions); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OKList(regions, total, q.Pagination(total)))
}

func GetRegion(c *gin.Context, db *mongo.Database) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid region id"))
		return
	}
	var region model.Region
	err = db.Collection("regions").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&region)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, model.Fail("Region not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OK(region))
}

func CreateRegion(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	var request dto.RegionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	region := model.Region{
		Name:        request.Name,
		City:        request.City,
		Description: request.Description,
		CreatedAt:   time.Now(),
	}
	res, err := db.Collection("regions").InsertOne(c.Request.Context(), region)
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusBadRequest, model.Fail("Region name already exists"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to create region"))
		return
	}
	region.ID = res.InsertedID.(primitive.ObjectID)

	log.Info("region created", zap.String("name", region.Name))
	c.JSON(http.StatusCreated, model.OK(region))
}

func UpdateRegion(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid region id"))
		return
	}
	var request dto.RegionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	set := bson.M{"name": request.Name}
	if request.City != "" {
		set["city"] = request.City
	}
	if request.Description != "" {
		set["description"] = request.Description
	}

	res, err := db.Collection("regions").UpdateByID(c.Request.Context(), id, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to update region"))
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, model.Fail("Region not found"))
		return
	}
	log.Info("region updated", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, model.OKMessage(nil, "Region updated"))
}

func DeleteRegion(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid region id"))
		return
	}
	res, err := db.Collection("regions").DeleteOne(c.Request.Context(), bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to delete region"))
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, model.Fail("Region not found"))
		return
	}
	log.Info("region deleted", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, model.OKMessage(nil, "Region deleted"))
}

// RegionStats mirrors the department rollup: report volume per region with
// the resolved share.
func RegionStats(c *gin.Context, db *mongo.Database) {
	ctx := c.Request.Context()
	cursor, err := db.Collection("regions").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "reports",
			"localField":   "_id",
			"foreignField": "region",
			"as":           "reports",
		}}},
		{{Key: "$project", Value: bson.M{
			"name":  1,
			"city":  1,
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
