package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/CoinClashFun/flipoff-backend/internal/auth"
	"github.com/CoinClashFun/flipoff-backend/internal/config"
	"github.com/CoinClashFun/flipoff-backend/internal/database"
	"github.com/CoinClashFun/flipoff-backend/internal/flip"
	"github.com/CoinClashFun/flipoff-backend/internal/handler"
	"github.com/CoinClashFun/flipoff-backend/internal/hub"
	"github.com/CoinClashFun/flipoff-backend/internal/oracle"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "github.com/CoinClashFun/flipoff-backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           FlipOff API
// @version         1.0
// @description     Escrowed peer-vs-peer coin-flip wagering, settled by a verifiable-randomness oracle.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.AppConfig

	// Connect to the database
	database.Connect(cfg.DatabaseURL)

	if err := flip.EnsureProtocolState(database.DB, cfg.FeeBps); err != nil {
		log.Fatalf("Failed to seed protocol state: %v", err)
	}

	eventHub := hub.NewHub()
	oracleClient := oracle.NewHTTPClient(cfg.OracleURL, cfg.OracleSecret)
	flipService := flip.New(database.DB, oracleClient, eventHub, flip.Params{
		MinBet:      cfg.MinBet,
		VoidAfter:   cfg.VoidAfter,
		CallbackGas: cfg.CallbackGas,
	}, nil)
	handler.Init(flipService, eventHub)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("/me", handler.GetMe)
		}

		// Lobby routes (protected)
		lobbyRoutes := apiV1.Group("/lobbies")
		lobbyRoutes.Use(auth.AuthMiddleware())
		{
			lobbyRoutes.POST("", handler.CreateLobby)
			lobbyRoutes.GET("", handler.SearchLobbies)
			lobbyRoutes.GET("/:id", handler.GetLobbyByID)
			lobbyRoutes.POST("/:id/join", handler.JoinLobby)
			lobbyRoutes.POST("/:id/cancel", handler.CancelLobby)
			lobbyRoutes.POST("/:id/void", handler.VoidLobby)
			lobbyRoutes.GET("/:id/can-void", handler.CanVoid)
			lobbyRoutes.POST("/:id/start", handler.StartGame)
			lobbyRoutes.POST("/:id/next-round", handler.RequestNextRound)
			lobbyRoutes.POST("/:id/claim", handler.ClaimWinnings)
			lobbyRoutes.POST("/:id/withdraw", handler.WithdrawVoid)
			lobbyRoutes.GET("/:id/players", handler.GetLobbyPlayers)
			lobbyRoutes.GET("/:id/players/:userID", handler.GetPlayerInfo)
			lobbyRoutes.GET("/:id/rounds", handler.GetLobbyRounds)
			lobbyRoutes.GET("/:id/events", handler.StreamLobbyEvents)
		}

		// Protocol routes (protected)
		protocolRoutes := apiV1.Group("")
		protocolRoutes.Use(auth.AuthMiddleware())
		{
			protocolRoutes.GET("/entropy-fee", handler.GetEntropyFee)
			protocolRoutes.GET("/stats", handler.GetStats)
			protocolRoutes.POST("/fees/sweep", handler.SweepFees)
		}

		// Oracle callback (verified by shared secret, not user auth)
		oracleRoutes := apiV1.Group("/oracle")
		oracleRoutes.Use(auth.OracleMiddleware())
		{
			oracleRoutes.POST("/callback", handler.OracleCallback)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.PUT("/fee", handler.SetFee)
			adminRoutes.PUT("/treasury", handler.SetTreasury)
			adminRoutes.POST("/users/:id/credit", handler.CreditUser)
		}
	}

	fmt.Printf("Server is running on %s\n", cfg.ListenAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(cfg.ListenAddr))
}
