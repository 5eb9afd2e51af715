package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"civicpulse/config"
	"civicpulse/dto"
	"civicpulse/middleware"
	"civicpulse/model"
	"civicpulse/services"
)

// UserController registers the admin-facing user management routes. The
// officers listing is also readable by officers, for assignment pickers.
func UserController(router *gin.Engine, db *mongo.Database, cfg *config.Config, log *zap.Logger) {
	routes := router.Group("/users", middleware.AccessTokenMiddleware(cfg))
	{
		routes.GET("/officers", middleware.RoleMiddleware(model.RoleOfficer, model.RoleAdmin), func(c *gin.Context) {
			ListOfficers(c, db)
		})
		routes.GET("", middleware.AdminMiddleware(), func(c *gin.Context) {
			ListUsers(c, db)
		})
		routes.GET("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			GetUser(c, db)
		})
		routes.POST("", middleware.AdminMiddleware(), func(c *gin.Context) {
			CreateUser(c, db, log)
		})
		routes.PUT("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			UpdateUser(c, db, log)
		})
		routes.DELETE("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			DeleteUser(c, db, log)
		})
	}
}

func ListUsers(c *gin.Context, db *mongo.Database) {
	q := services.ParseQuery(c.Request.URL.Query(), services.OrgDefaults)
	ctx := c.Request.Context()
	col := db.Collection("users")

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
	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OKList(users, total, q.Pagination(total)))
}

func ListOfficers(c *gin.Context, db *mongo.Database) {
	ctx := c.Request.Context()
	cursor, err := db.Collection("users").Find(ctx, bson.M{"role": model.RoleOfficer})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	officers := []model.User{}
	if err := cursor.All(ctx, &officers); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	count := int64(len(officers))
	c.JSON(http.StatusOK, model.OKList(officers, count, nil))
}

func GetUser(c *gin.Context, db *mongo.Database) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid user id"))
		return
	}
	var user model.User
	err = db.Collection("users").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, model.Fail("User not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OK(user))
}

// CreateUser is how officer and admin accounts come into existence;
// self-registration only ever produces citizens.
func CreateUser(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	var request dto.CreateUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}
	if request.Role != model.RoleCitizen && request.Role != model.RoleOfficer && request.Role != model.RoleAdmin {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid role"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to hash password"))
		return
	}

	user := model.User{
		Name:           request.Name,
		Email:          request.Email,
		HashedPassword: string(hashed),
		Role:           request.Role,
		Phone:          request.Phone,
		CreatedAt:      time.Now(),
	}
	if request.Department != "" {
		dep, err := primitive.ObjectIDFromHex(request.Department)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.Fail("Invalid department id"))
			return
		}
		user.Department = &dep
	}
	if request.Region != "" {
		reg, err := primitive.ObjectIDFromHex(request.Region)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.Fail("Invalid region id"))
			return
		}
		user.Region = &reg
	}

	res, err := db.Collection("users").InsertOne(c.Request.Context(), user)
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusBadRequest, model.Fail("Email is already registered"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to create user"))
		return
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	log.Info("user created", zap.String("email", user.Email), zap.String("role", user.Role))
	c.JSON(http.StatusCreated, model.OK(user))
}

func UpdateUser(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid user id"))
		return
	}
	var request dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	set := bson.M{}
	if request.Name != "" {
		set["name"] = request.Name
	}
	if request.Phone != "" {
		set["phone"] = request.Phone
	}
	if request.Role != "" {
		if request.Role != model.RoleCitizen && request.Role != model.RoleOfficer && request.Role != model.RoleAdmin {
			c.JSON(http.StatusBadRequest, model.Fail("Invalid role"))
			return
		}
		set["role"] = request.Role
	}
	for field, raw := range map[string]string{
		"department": request.Department,
		"region":     request.Region,
	} {
		if raw == "" {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.Fail("Invalid "+field+" id"))
			return
		}
		set[field] = oid
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, model.Fail("Nothing to update"))
		return
	}

	res, err := db.Collection("users").UpdateByID(c.Request.Context(), id, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to update user"))
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, model.Fail("User not found"))
		return
	}
	log.Info("user updated", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, model.OKMessage(nil, "User updated"))
}

func DeleteUser(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid user id"))
		return
	}
	if id == middleware.UserID(c) {
		c.JSON(http.StatusBadRequest, model.Fail("Cannot delete your own account"))
		return
	}
	res, err := db.Collection("users").DeleteOne(c.Request.Context(), bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to delete user"))
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, model.Fail("User not found"))
		return
	}
	log.Info("user deleted", zap.String("id", id.Hex()))
	c.JSON(http.StatusOK, model.OKMessage(nil, "User deleted"))
}
