package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"civicpulse/config"
	"civicpulse/dto"
	"civicpulse/middleware"
	"civicpulse/model"
)

func AuthController(router *gin.Engine, db *mongo.Database, cfg *config.Config, log *zap.Logger) {
	routes := router.Group("/auth")
	{
		routes.POST("/register", func(c *gin.Context) {
			Register(c, db, cfg, log)
		})
		routes.POST("/login", func(c *gin.Context) {
			Login(c, db, cfg, log)
		})
		routes.POST("/refresh", middleware.RefreshTokenMiddleware(cfg), func(c *gin.Context) {
			RefreshAccessToken(c, db, cfg)
		})
		routes.GET("/me", middleware.AccessTokenMiddleware(cfg), func(c *gin.Context) {
			Me(c, db)
		})
		routes.GET("/logout", middleware.AccessTokenMiddleware(cfg), func(c *gin.Context) {
			Logout(c)
		})
		routes.POST("/change-password", middleware.AccessTokenMiddleware(cfg), func(c *gin.Context) {
			ChangePassword(c, db, log)
		})
	}
}

func CreateAccessToken(cfg *config.Config, userID, role string) (string, error) {
	claims := &model.AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "civicpulse",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func CreateRefreshToken(cfg *config.Config, userID string) (string, error) {
	claims := &model.RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "civicpulse",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTRefreshSecret))
}

// Register creates a citizen account. Officer and admin accounts are
// provisioned through the admin user controller, never by self-signup.
func Register(c *gin.Context, db *mongo.Database, cfg *config.Config, log *zap.Logger) {
	var request dto.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	users := db.Collection("users")

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to hash password"))
		return
	}

	user := model.User{
		Name:           request.Name,
		Email:          request.Email,
		HashedPassword: string(hashed),
		Role:           model.RoleCitizen,
		Phone:          request.Phone,
		CreatedAt:      time.Now(),
	}
	// The unique email index is the duplicate check; a pre-insert count
	// would race with concurrent registrations.
	res, err := users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusBadRequest, model.Fail("Email is already registered"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to create user"))
		return
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	token, refresh, err := issueTokens(cfg, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to create token"))
		return
	}
	setSessionCookie(c, token)

	log.Info("user registered", zap.String("email", user.Email))
	c.JSON(http.StatusCreated, model.OKMessage(gin.H{"token": token, "refreshToken": refresh, "user": user}, "Registered"))
}

func Login(c *gin.Context, db *mongo.Database, cfg *config.Config, log *zap.Logger) {
	var request dto.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	users := db.Collection("users")

	var user model.User
	err := users.FindOne(ctx, bson.M{"email": request.Email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusUnauthorized, model.Fail("Invalid credentials"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(request.Password)) != nil {
		c.JSON(http.StatusUnauthorized, model.Fail("Invalid credentials"))
		return
	}

	// Remember the device token so status-change pushes can reach this user.
	if request.FCMToken != "" && request.FCMToken != user.FCMToken {
		_, _ = users.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{"fcmToken": request.FCMToken}})
	}

	token, refresh, err := issueTokens(cfg, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to create token"))
		return
	}
	setSessionCookie(c, token)

	log.Info("user logged in", zap.String("email", user.Email), zap.String("role", user.Role))
	c.JSON(http.StatusOK, model.OK(gin.H{"token": token, "refreshToken": refresh, "user": user}))
}

// RefreshAccessToken exchanges a valid refresh token for a new access
// token. Role comes from the stored user, not from any token claim.
func RefreshAccessToken(c *gin.Context, db *mongo.Database, cfg *config.Config) {
	var user model.User
	err := db.Collection("users").
		FindOne(c.Request.Context(), bson.M{"_id": middleware.UserID(c)}).
		Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusUnauthorized, model.Fail("User no longer exists"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	token, err := CreateAccessToken(cfg, user.ID.Hex(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to create token"))
		return
	}
	setSessionCookie(c, token)
	c.JSON(http.StatusOK, model.OK(gin.H{"token": token}))
}

func issueTokens(cfg *config.Config, user model.User) (access, refresh string, err error) {
	if access, err = CreateAccessToken(cfg, user.ID.Hex(), user.Role); err != nil {
		return "", "", err
	}
	if refresh, err = CreateRefreshToken(cfg, user.ID.Hex()); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func Me(c *gin.Context, db *mongo.Database) {
	var user model.User
	err := db.Collection("users").
		FindOne(c.Request.Context(), bson.M{"_id": middleware.UserID(c)}).
		Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, model.Fail("User not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	c.JSON(http.StatusOK, model.OK(user))
}

func Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, model.OKMessage(nil, "Logged out"))
}

func ChangePassword(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	var request dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	users := db.Collection("users")
	userID := middleware.UserID(c)

	var user model.User
	if err := users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, model.Fail("User not found"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(request.CurrentPassword)) != nil {
		c.JSON(http.StatusUnauthorized, model.Fail("Current password is incorrect"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to hash password"))
		return
	}
	if _, err := users.UpdateByID(ctx, userID, bson.M{"$set": bson.M{"hashedPassword": string(hashed)}}); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to update password"))
		return
	}

	log.Info("password changed", zap.String("userId", userID.Hex()))
	c.JSON(http.StatusOK, model.OKMessage(nil, "Password updated"))
}

func setSessionCookie(c *gin.Context, token string) {
	c.SetCookie("token", token, int((24 * time.Hour).Seconds()), "/", "", false, true)
}
