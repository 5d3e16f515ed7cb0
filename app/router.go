// Package app wires the middleware stack and every endpoint together
package app

import (
	"fmt"
	"strings"
	"time"

	"userhub/admin-api/app/auth"
	"userhub/admin-api/app/root"
	"userhub/admin-api/app/user"
	"userhub/admin-api/db"
	"userhub/admin-api/internal"
	"userhub/admin-api/internal/service"
	"userhub/admin-api/pkg/middleware"
	"userhub/admin-api/pkg/security"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	Deps   *internal.Deps
	Router *gin.Engine
	Sweeps *cron.Cron
}

func NewRouter() (*API, error) {
	makeLogger()

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	d := &internal.Deps{
		DB:     conn,
		Argon:  security.NewArgon(),
		Issuer: security.NewIssuer([]byte(viper.GetString("jwt.secret"))),
		Tokens: service.NewTokens(conn),
		Mailer: service.NewSMTPMailer(
			time.Duration(viper.GetInt("tokens.resend_cooldown_minutes")) * time.Minute),
	}

	a := &API{Deps: d}

	router := gin.New()
	a.Router = router

	origins := strings.Split(viper.GetString("host.cors"), ",")

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
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

	rateLimiter := middleware.RateLimiter(newRateStore())
	userGate := middleware.NewAuthGate(conn, d.Issuer, middleware.AccessUser)
	adminGate := middleware.NewAuthGate(conn, d.Issuer, middleware.AccessAdmin)

	m := router.Group("/api", rateLimiter, middleware.BodySizeLimiter(1<<20))
	{
		// HEAD /api/heartbeat 			-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate			-> Validates a session token against the live account
		m.GET("/validate", userGate, root.Validate)
	}

	au := m.Group("/auth")
	{
		// POST /api/auth/login			-> Logs in a user and returns a session token
		au.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /api/auth/logout		-> Ends the session
		au.POST("/logout", userGate, func(c *gin.Context) { auth.Logout(c, d) })

		// GET /api/auth/me			-> Returns the authenticated user
		au.GET("/me", userGate, func(c *gin.Context) { auth.Me(c, d) })

		// POST /api/auth/verify/request	-> Mails a fresh email verification link
		au.POST("/verify/request", func(c *gin.Context) { auth.RequestVerification(c, d) })

		// POST /api/auth/verify		-> Redeems an email verification token
		au.POST("/verify", func(c *gin.Context) { auth.Verify(c, d) })

		// POST /api/auth/password/forgot	-> Mails a password reset link
		au.POST("/password/forgot", func(c *gin.Context) { auth.RequestReset(c, d) })

		// POST /api/auth/password/reset	-> Redeems a reset token and sets the new password
		au.POST("/password/reset", func(c *gin.Context) { auth.Reset(c, d) })

		// POST /api/auth/password/change	-> Rotates the password of the authenticated user
		au.POST("/password/change", userGate, func(c *gin.Context) { auth.ChangePassword(c, d) })
	}

	u := m.Group("/users", adminGate)
	{
		// GET /api/users			-> Searches accounts with filters and pagination
		u.GET("", func(c *gin.Context) { user.Search(c, d) })

		// POST /api/users			-> Creates an account with a mailed temporary password
		u.POST("", func(c *gin.Context) { user.Create(c, d) })

		// GET /api/users/:id			-> Returns a single account
		u.GET("/:id", func(c *gin.Context) { user.Fetch(c, d) })

		// PATCH /api/users/:id			-> Partially updates an account
		u.PATCH("/:id", func(c *gin.Context) { user.Update(c, d) })

		// POST /api/users/:id/deactivate	-> Soft-deletes an account
		u.POST("/:id/deactivate", func(c *gin.Context) { user.Deactivate(c, d) })

		// POST /api/users/:id/reactivate	-> Re-enables an account
		u.POST("/:id/reactivate", func(c *gin.Context) { user.Reactivate(c, d) })

		// POST /api/users/:id/reset-password	-> Sets and mails a temporary password
		u.POST("/:id/reset-password", func(c *gin.Context) { user.ResetPassword(c, d) })
	}

	sweeps, err := service.StartSweeps(conn, d.Tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to start maintenance sweeps, %w", err)
	}
	a.Sweeps = sweeps

	return a, nil
}

// newRateStore picks the limiter backend: a shared redis counter when
// configured, the process-local bucket map otherwise
func newRateStore() middleware.RateStore {
	limit := viper.GetInt("security.rate_limit")

	if viper.GetBool("redis.enabled") {
		client := redis.NewClient(&redis.Options{
			Addr: viper.GetString("redis.addr"),
		})

		zap.L().Info("Using redis-backed rate limiting", zap.String("addr", viper.GetString("redis.addr")))
		return middleware.NewRedisStore(client, limit)
	}

	return middleware.NewMemoryStore(limit, limit*2, 3*time.Minute, time.Minute)
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
