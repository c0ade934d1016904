package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/logger"
	"rollcall/internal/mailer"
	"rollcall/internal/metrics"
	"rollcall/internal/qr"
	"rollcall/internal/queue"
	"rollcall/internal/roster"
	"rollcall/internal/schedule"
	"rollcall/internal/session"
	"rollcall/internal/stats"
	"rollcall/internal/store"
	"rollcall/internal/user"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	slogger := logger.SetupDefault(os.Stdout)

	if cfg.MigrateOnStart {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			return err
		}
	}

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		slogger.Warn("db not reachable", "err", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:events")
	}

	mc := metrics.NewCollector(prometheus.DefaultRegisterer)

	var mail mailer.Mailer
	if cfg.SendgridAPIKey != "" {
		mail = mailer.NewSendgrid(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFrom)
		slogger.Info("sendgrid mailer configured", "from", cfg.MailFrom)
	} else {
		mail = mailer.NewConsole(slogger)
		slogger.Info("sendgrid not configured, using console mailer")
	}

	userRepo := user.NewRepository(db.Client)
	users := user.NewService(userRepo, mail, slogger)
	schedRepo := schedule.NewRepository(db.Client)
	sched := schedule.NewService(schedRepo)
	sessRepo := session.NewRepository(db.Client)
	sessions := session.NewService(sessRepo, sched)
	versions := stats.NewVersions(redisClient.Client)
	blacklist := auth.NewBlacklist(redisClient.Client)
	attRepo := attendance.NewRepository(db.Client)
	checkins := attendance.NewService(attRepo, versions, q, mc, slogger)
	statsSvc := stats.NewService(stats.NewRepository(db.Client), versions, cfg.CollationLocale)
	broker := roster.NewBroker(mc)

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Bridge roster updates into this instance's broker. With the
	// in-memory queue the fan-out worker cannot run as a separate
	// process, so consume locally instead of listening on Redis.
	if cfg.QueueBackend == "memory" {
		go localFanout(appCtx, q, sessRepo, broker, slogger)
	} else {
		go roster.Listen(appCtx, redisClient.Client, broker, slogger)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/auth/register", func(c *gin.Context) {
		var req struct {
			Email       string `json:"email" binding:"required"`
			Password    string `json:"password" binding:"required"`
			DisplayName string `json:"display_name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := users.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
		if err != nil {
			apiError(c, err)
			return
		}
		tokens, err := auth.Issue(p.ID, p.Role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"user":          p,
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	r.POST("/v1/auth/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := users.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			apiError(c, err)
			return
		}
		tokens, err := auth.Issue(p.ID, p.Role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user":          p,
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	r.POST("/v1/auth/refresh", func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims, err := auth.Parse(req.RefreshToken, cfg.JWTSigningKey, cfg.JWTIssuer)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if revoked, err := blacklist.Revoked(c.Request.Context(), req.RefreshToken); err == nil && revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}
		// role may have changed since the refresh token was issued
		p, err := users.Get(c.Request.Context(), claims.Subject)
		if err != nil {
			apiError(c, err)
			return
		}
		tokens, err := auth.Issue(p.ID, p.Role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	r.POST("/v1/auth/logout", func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims, err := auth.Parse(req.RefreshToken, cfg.JWTSigningKey, cfg.JWTIssuer)
		if err != nil {
			// expired or malformed tokens need no revocation
			c.JSON(http.StatusOK, gin.H{"status": "logged out"})
			return
		}
		if err := blacklist.Revoke(c.Request.Context(), req.RefreshToken, claims.ExpiresAt.Time); err != nil {
			slogger.Error("token revocation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "logged out"})
	})

	authed := r.Group("/v1", auth.UserAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authed.GET("/me", func(c *gin.Context) {
		p, err := users.Get(c.Request.Context(), auth.ClaimsFrom(c).Subject)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	authed.PUT("/me", func(c *gin.Context) {
		var req struct {
			DisplayName    string  `json:"display_name" binding:"required"`
			Phone          *string `json:"phone"`
			SecondaryEmail *string `json:"secondary_email"`
			SemesterStatus string  `json:"semester_status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := users.UpdateProfile(c.Request.Context(), auth.ClaimsFrom(c).Subject,
			req.DisplayName, req.Phone, req.SecondaryEmail, req.SemesterStatus)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	authed.POST("/auth/password", func(c *gin.Context) {
		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := users.ChangePassword(c.Request.Context(), auth.ClaimsFrom(c).Subject,
			req.CurrentPassword, req.NewPassword); err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "password changed"})
	})

	authed.POST("/auth/email", func(c *gin.Context) {
		var req struct {
			CurrentPassword string `json:"current_password"`
			NewEmail        string `json:"new_email" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := users.ChangeEmail(c.Request.Context(), auth.ClaimsFrom(c).Subject,
			req.CurrentPassword, req.NewEmail); err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "email changed"})
	})

	authed.POST("/attendance", auth.RequireRole(auth.RoleStudent), func(c *gin.Context) {
		var req struct {
			Code    string `json:"code"`
			Scanned string `json:"scanned"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		code := req.Code
		if code == "" && req.Scanned != "" {
			extracted, ok := attendance.ExtractCode(req.Scanned)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": attendance.ErrInvalidCode.Error(), "code": "invalid_code"})
				return
			}
			code = extracted
		}
		p, err := users.Get(c.Request.Context(), auth.ClaimsFrom(c).Subject)
		if err != nil {
			apiError(c, err)
			return
		}
		name, err := checkins.Register(c.Request.Context(), code, attendance.Student{
			ID:    p.ID,
			Name:  p.DisplayName,
			Email: p.Email,
		})
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"session_name": name, "status": attendance.StatusPresent})
	})

	authed.GET("/stats", auth.RequireRole(auth.RoleStudent), func(c *gin.Context) {
		p, err := users.Get(c.Request.Context(), auth.ClaimsFrom(c).Subject)
		if err != nil {
			apiError(c, err)
			return
		}
		term := c.Query("term")
		if term == "" && p.Term != nil {
			term = *p.Term
		}
		if term == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no term assigned"})
			return
		}
		overview, err := statsSvc.Compute(c.Request.Context(), p.ID, term)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	})

	teach := authed.Group("", auth.RequireRole(auth.RoleTeacher))

	teach.POST("/sessions", func(c *gin.Context) {
		var req struct {
			TimeID string `json:"time_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sess, err := sessions.Open(c.Request.Context(), auth.ClaimsFrom(c).Subject, req.TimeID)
		if err != nil {
			apiError(c, err)
			return
		}
		mc.RecordSessionOpened()
		c.JSON(http.StatusCreated, sess)
	})

	teach.POST("/sessions/:id/close", func(c *gin.Context) {
		sess, ok := ownedSession(c, sessions)
		if !ok {
			return
		}
		if err := sessions.Close(c.Request.Context(), sess.ID); err != nil {
			apiError(c, err)
			return
		}
		mc.RecordSessionClosed()
		c.JSON(http.StatusOK, gin.H{"id": sess.ID, "is_open": false})
	})

	teach.GET("/sessions", func(c *gin.Context) {
		limit := 50
		if v := c.Query("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}
		res, err := sessions.List(c.Request.Context(), auth.ClaimsFrom(c).Subject, limit)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": res})
	})

	teach.GET("/sessions/:id/roster", func(c *gin.Context) {
		sess, ok := ownedSession(c, sessions)
		if !ok {
			return
		}
		records, err := sessions.Roster(c.Request.Context(), sess.ID)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "records": records})
	})

	teach.GET("/sessions/:id/roster/stream", func(c *gin.Context) {
		sess, ok := ownedSession(c, sessions)
		if !ok {
			return
		}
		streamRoster(c, sess.ID, sessions, broker)
	})

	teach.GET("/sessions/:id/qr", func(c *gin.Context) {
		sess, ok := ownedSession(c, sessions)
		if !ok {
			return
		}
		size := 256
		if v := c.Query("size"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				size = parsed
			}
		}
		png, err := qr.PNG(sess.Code, size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "qr render failed"})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	admin := authed.Group("/admin", auth.RequireRole(auth.RoleAdmin))

	admin.GET("/terms", func(c *gin.Context) {
		res, err := sched.Terms(c.Request.Context())
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"terms": res})
	})

	admin.PUT("/terms/:id", func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := sched.SaveTerm(c.Request.Context(), c.Param("id"), req.Name); err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "name": req.Name})
	})

	admin.DELETE("/terms/:id", func(c *gin.Context) {
		if err := sched.RemoveTerm(c.Request.Context(), c.Param("id")); err != nil {
			apiError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	admin.GET("/times", func(c *gin.Context) {
		res, err := sched.Slots(c.Request.Context(), c.Query("term"))
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"times": res})
	})

	admin.POST("/times", func(c *gin.Context) {
		var req struct {
			Name         string `json:"name" binding:"required"`
			Category     string `json:"category" binding:"required"`
			Term         string `json:"term" binding:"required"`
			DisplayOrder int    `json:"display_order"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slot, err := sched.CreateSlot(c.Request.Context(), schedule.Slot{
			Name: req.Name, Category: req.Category, Term: req.Term, DisplayOrder: req.DisplayOrder,
		})
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusCreated, slot)
	})

	admin.PUT("/times/:id", func(c *gin.Context) {
		var req struct {
			Name         string `json:"name" binding:"required"`
			Category     string `json:"category" binding:"required"`
			Term         string `json:"term" binding:"required"`
			DisplayOrder int    `json:"display_order"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		err := sched.UpdateSlot(c.Request.Context(), schedule.Slot{
			ID: c.Param("id"), Name: req.Name, Category: req.Category, Term: req.Term, DisplayOrder: req.DisplayOrder,
		})
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	admin.DELETE("/times/:id", func(c *gin.Context) {
		if err := sched.RemoveSlot(c.Request.Context(), c.Param("id")); err != nil {
			apiError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	admin.GET("/requirements", func(c *gin.Context) {
		res, err := sched.Requirements(c.Request.Context(), c.Query("term"))
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"requirements": res})
	})

	admin.POST("/requirements", func(c *gin.Context) {
		var req struct {
			Term          string `json:"term" binding:"required"`
			Category      string `json:"category" binding:"required"`
			RequiredCount int    `json:"required_count" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		requirement, err := sched.CreateRequirement(c.Request.Context(), schedule.Requirement{
			Term: req.Term, Category: req.Category, RequiredCount: req.RequiredCount,
		})
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusCreated, requirement)
	})

	admin.PUT("/requirements/:id", func(c *gin.Context) {
		var req struct {
			RequiredCount int `json:"required_count" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := sched.UpdateRequirement(c.Request.Context(), c.Param("id"), req.RequiredCount); err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	admin.DELETE("/requirements/:id", func(c *gin.Context) {
		if err := sched.RemoveRequirement(c.Request.Context(), c.Param("id")); err != nil {
			apiError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	admin.GET("/users", func(c *gin.Context) {
		res, err := users.List(c.Request.Context())
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": res})
	})

	admin.PUT("/users/:id", func(c *gin.Context) {
		var req struct {
			Role         string   `json:"role" binding:"required"`
			Term         *string  `json:"term"`
			AllowedTerms []string `json:"allowed_terms"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := users.UpdateAccess(c.Request.Context(), c.Param("id"), req.Role, req.Term, req.AllowedTerms)
		if err != nil {
			apiError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // roster streams are long-lived
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slogger.Info("starting server", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slogger.Info("shutting down server")
	appCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slogger.Warn("server forced shutdown", "err", err)
	}

	slogger.Info("server exited")
	return nil
}

// ownedSession loads the :id session and enforces that the caller opened
// it (admins pass). Writes the error response itself when ok is false.
func ownedSession(c *gin.Context, sessions *session.Service) (session.Session, bool) {
	sess, err := sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apiError(c, err)
		return session.Session{}, false
	}
	claims := auth.ClaimsFrom(c)
	if claims.Role != auth.RoleAdmin && sess.CreatedBy != claims.Subject {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
		return session.Session{}, false
	}
	return sess, true
}

// streamRoster sends the current roster immediately, then a snapshot per
// registration until the client disconnects. The broker subscription is
// released on every exit path.
func streamRoster(c *gin.Context, sessionID string, sessions *session.Service, broker *roster.Broker) {
	updates, cancelSub := broker.Subscribe(sessionID)
	defer cancelSub()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	records, err := sessions.Roster(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "roster load failed"})
		return
	}
	first := &roster.Snapshot{SessionID: sessionID, Records: records}

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		if first != nil {
			c.SSEvent("roster", *first)
			first = nil
			return true
		}
		select {
		case <-clientGone:
			return false
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("roster", snap)
			return true
		}
	})
}

// localFanout replaces the worker process when the in-memory queue is in
// use: registration events are consumed in-process and pushed straight
// into the broker.
func localFanout(ctx context.Context, q queue.Queue, sessRepo *session.Repository, broker *roster.Broker, slogger *slog.Logger) {
	messages, err := q.Consume(ctx)
	if err != nil {
		slogger.Error("local fanout consume failed", "err", err)
		return
	}
	for msg := range messages {
		if msg.Type != queue.TypeRegistration {
			continue
		}
		var evt queue.RegistrationEvent
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			slogger.Warn("bad registration event", "err", err)
			continue
		}
		records, err := sessRepo.Roster(ctx, evt.SessionID)
		if err != nil {
			slogger.Warn("roster load failed", "session_id", evt.SessionID, "err", err)
			continue
		}
		broker.Publish(roster.Snapshot{SessionID: evt.SessionID, Records: records})
	}
}

// apiError maps service errors to HTTP responses with stable codes.
func apiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_code"})
	case errors.Is(err, attendance.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "session_not_found"})
	case errors.Is(err, attendance.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "already_registered"})
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrTimeNotFound),
		errors.Is(err, schedule.ErrNotFound), errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
	case errors.Is(err, user.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "email_in_use"})
	case errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "weak_password"})
	case errors.Is(err, user.ErrWrongPassword):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "wrong_password"})
	case errors.Is(err, user.ErrReauthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "requires_recent_login"})
	case errors.Is(err, user.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "invalid_credentials"})
	case errors.Is(err, user.ErrInvalidSemesterStat), errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, schedule.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
	case errors.Is(err, schedule.ErrRequirementExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "requirement_exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
