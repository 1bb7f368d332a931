package app

import (
	"context"
	"fmt"
	"time"

	"tdls-api/app/friend"
	"tdls-api/app/root"
	"tdls-api/app/user"
	"tdls-api/app/verify"
	"tdls-api/aws"
	"tdls-api/db"
	_ "tdls-api/docs"
	"tdls-api/internal"
	"tdls-api/internal/friends"
	"tdls-api/internal/service"
	"tdls-api/internal/verification"
	"tdls-api/pkg/middleware"
	"tdls-api/pkg/security"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Swapped in tests to get at the connection NewRouter opens
var openDatabase = db.New

// NewRouter builds every dependency from the loaded config and returns the
// router along with a function releasing them on shutdown
func NewRouter() (*gin.Engine, func(), error) {
	if err := SetupLogger(viper.GetString("app.log_level")); err != nil {
		return nil, nil, err
	}

	database, err := openDatabase()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	// Undoes everything opened so far, in reverse order
	var closers []func()
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	closers = append(closers, func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store, err := newCodeStore()
	if err != nil {
		release()
		return nil, nil, err
	}

	closers = append(closers, func() {
		if err := store.Close(); err != nil {
			zap.L().Error("Failed to close verification store", zap.Error(err))
		}
	})

	storage, err := newObjectStorage()
	if err != nil {
		release()
		return nil, nil, err
	}

	d := &internal.Deps{
		DB:      database,
		Argon:   security.New(),
		Friends: friends.NewEngine(database),
		Storage: storage,
		Verifier: verification.New(store, service.NewSMTPMailer(),
			verification.WithWindow(viper.GetDuration("verification.window")),
			verification.WithMaxAttempts(viper.GetInt("verification.max_attempts")),
			verification.WithSendTimeout(viper.GetDuration("mail.timeout")),
		),
	}

	// Unverified accounts have days to verify, checking rarely is enough
	cleanup, err := service.StartAccountCleanup(viper.GetString("cleanup.schedule"), database, storage)
	if err != nil {
		release()
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := func() {
		cancel()
		<-cleanup.Stop().Done()
		release()
		zap.L().Sync()
	}

	return NewEngine(ctx, d), shutdown, nil
}

func newCodeStore() (verification.Store, error) {
	if viper.GetString("verification.store") != "redis" {
		return verification.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis, %w", err)
	}

	return verification.NewRedisStore(client), nil
}

func newObjectStorage() (service.ObjectStorage, error) {
	if viper.GetString("storage.type") != "s3" {
		return service.NoStorage{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s3, err := aws.NewS3(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}

	return s3, nil
}

// NewEngine attaches the middleware and every route to a fresh gin engine.
// Background work started for the engine stops when ctx is done.
func NewEngine(ctx context.Context, d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors"),
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 8 << 20

	// GET /swagger/index.html	-> API documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	rateLimit := viper.GetInt("security.rate_limit")
	avatarLimit := viper.GetInt64("storage.max_avatar_size")<<20 + 1<<20

	jwt := middleware.NewJWTMiddleware(d.DB, false)
	verified := middleware.NewJWTMiddleware(d.DB, true)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
		Done:              ctx.Done(),
	})

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a JWT token
		m.GET("/validate", jwt, root.Validate)
	}

	u := m.Group("/users")
	{
		// POST /api/users 		-> Registers a new user
		u.POST("", middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.UserRegister(c, d) })

		// GET /api/users/check		-> Checks if a user id, nickname or email is free
		u.GET("/check", func(c *gin.Context) { user.UserCheck(c, d) })

		// POST /api/users/login 	-> Logs in a user and returns a JWT token
		u.POST("/login", middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.UserLogin(c, d) })

		// POST /api/users/password/reset -> Sets a new password using an emailed code
		u.POST("/password/reset", middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.UserPasswordReset(c, d) })

		// GET /api/users/me		-> Returns the profile of the logged in user
		u.GET("/me", jwt, func(c *gin.Context) { user.UserFetchMe(c, d) })

		// PATCH /api/users/me		-> Updates password, nickname or email
		u.PATCH("/me", jwt, middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.UserUpdate(c, d) })

		// PUT /api/users/me/avatar	-> Uploads a new avatar
		u.PUT("/me/avatar", jwt, middleware.BodySizeLimiter(avatarLimit), func(c *gin.Context) { user.UserAvatar(c, d) })

		// DELETE /api/users/me 	-> Deletes the logged in account
		u.DELETE("/me", jwt, middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.UserDelete(c, d) })

		// GET /api/users/:id		-> Returns the public profile of a user
		u.GET("/:id", jwt, func(c *gin.Context) { user.UserFetch(c, d) })
	}

	v := m.Group("/verify", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/verify/send	-> Emails a verification code
		v.POST("/send", func(c *gin.Context) { verify.SendCode(c, d) })

		// POST /api/verify		-> Checks a verification code
		v.POST("", func(c *gin.Context) { verify.CheckCode(c, d) })
	}

	f := m.Group("/friends", verified)
	{
		// GET /api/friends		-> Lists accepted friends
		f.GET("", func(c *gin.Context) { friend.FriendList(c, d) })

		// GET /api/friends/requests	-> Lists pending requests, ?direction=incoming|outgoing
		f.GET("/requests", func(c *gin.Context) { friend.FriendRequests(c, d) })

		// GET /api/friends/blocked	-> Lists blocked relationships
		f.GET("/blocked", func(c *gin.Context) { friend.FriendBlocked(c, d) })

		// POST /api/friends/:id	-> Sends a friend request to :id
		f.POST("/:id", func(c *gin.Context) { friend.FriendRequest(c, d) })

		// POST /api/friends/:id/accept	-> Accepts the request sent by :id
		f.POST("/:id/accept", func(c *gin.Context) { friend.FriendAccept(c, d) })

		// POST /api/friends/:id/reject	-> Rejects the request sent by :id
		f.POST("/:id/reject", func(c *gin.Context) { friend.FriendReject(c, d) })

		// POST /api/friends/:id/cancel	-> Withdraws the request sent to :id
		f.POST("/:id/cancel", func(c *gin.Context) { friend.FriendCancel(c, d) })

		// POST /api/friends/:id/block	-> Blocks :id
		f.POST("/:id/block", func(c *gin.Context) { friend.FriendBlock(c, d) })
	}

	return router
}
