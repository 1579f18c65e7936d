package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rickgao0917/quantrooms/internal/arena"
	"github.com/rickgao0917/quantrooms/internal/config"
	"github.com/rickgao0917/quantrooms/internal/database"
	"github.com/rickgao0917/quantrooms/internal/handlers"
	"github.com/rickgao0917/quantrooms/internal/matchmaking"
	"github.com/rickgao0917/quantrooms/internal/middleware"
	"github.com/rickgao0917/quantrooms/internal/services"
	"github.com/rickgao0917/quantrooms/internal/ws"
)

// @title           QuantRooms API
// @version         1.0
// @description     Competitive coding rooms: timed sessions, problem voting, Elo ratings and matchmaking
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	roomService := services.NewRoomService(db)
	problemService := services.NewProblemService(db)
	matchService := services.NewMatchService(db)

	if err := problemService.SeedDefaults(); err != nil {
		log.Warn().Err(err).Msg("failed to seed default problems")
	}

	registry := arena.NewRegistry(arena.DefaultConfig(), problemService, matchService, hub, log.Logger)

	// Matchmade groups get a fresh room and an immediate session; the
	// ready check still runs inside it.
	queue := matchmaking.NewQueue(matchmaking.MaxGroupSize, func(group []matchmaking.Request) {
		roster := make([]arena.RosterEntry, len(group))
		for i, r := range group {
			roster[i] = arena.RosterEntry{UserID: r.UserID, Username: r.Username, Rating: r.Rating}
		}
		room, err := roomService.CreateMatchRoom(roster, "any")
		if err != nil {
			log.Error().Err(err).Msg("failed to create room for matched group")
			return
		}
		if _, err := registry.StartSession(room.ID, room.Difficulty, roster); err != nil {
			log.Error().Err(err).Uint("room_id", room.ID).Msg("failed to start matchmade session")
		}
	}, log.Logger)

	authHandler := handlers.NewAuthHandler(authService)
	roomHandler := handlers.NewRoomHandler(roomService, authService, registry, hub)
	problemHandler := handlers.NewProblemHandler(problemService)
	matchmakingHandler := handlers.NewMatchmakingHandler(queue, authService, roomService)
	leaderboardHandler := handlers.NewLeaderboardHandler(matchService)
	wsHandler := handlers.NewWSHandler(hub, registry, authService, roomService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/room/:id", wsHandler.HandleRoomWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.JWTAuth(authService), authHandler.Me)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", roomHandler.ListRooms)
			rooms.GET("/:id", roomHandler.GetRoom)
			rooms.GET("/:id/session", roomHandler.GetSession)

			authed := rooms.Use(middleware.JWTAuth(authService))
			authed.POST("", roomHandler.CreateRoom)
			authed.POST("/join", roomHandler.JoinRoom)
			authed.POST("/:id/leave", roomHandler.LeaveRoom)
			authed.POST("/:id/close", roomHandler.CloseRoom)
			authed.POST("/:id/start", roomHandler.StartSession)
		}

		problems := api.Group("/problems")
		{
			problems.GET("", problemHandler.ListProblems)
			problems.POST("/import", middleware.JWTAuth(authService), problemHandler.ImportProblems)
		}

		mm := api.Group("/matchmaking")
		mm.Use(middleware.JWTAuth(authService))
		{
			mm.POST("/queue", matchmakingHandler.Enqueue)
			mm.DELETE("/queue", matchmakingHandler.Dequeue)
			mm.GET("/status", matchmakingHandler.Status)
		}

		api.GET("/leaderboard", leaderboardHandler.Leaderboard)
		api.GET("/matches/history", middleware.JWTAuth(authService), leaderboardHandler.MyHistory)
	}

	log.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
