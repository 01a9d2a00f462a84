package router

import (
	"flashdeck/internal/api"
	"flashdeck/internal/handlers"
	"flashdeck/internal/middleware"

	"github.com/gin-gonic/gin"
	cors "github.com/rs/cors/wrapper/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	homeHandler := handlers.NewHomeHandler()
	collectionHandler := handlers.NewCollectionHandler()
	setHandler := handlers.NewSetHandler()

	// Public routes
	r.GET("/", homeHandler.Index)
	r.GET("/collections", collectionHandler.List)
	r.GET("/collections/:id", collectionHandler.Detail)
	r.GET("/sets/:id", setHandler.Detail)

	r.GET("/signup", authHandler.ShowRegister)
	r.POST("/signup", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/collections/new", collectionHandler.ShowCreate)
		authorized.POST("/collections", collectionHandler.Create)
		authorized.GET("/collections/:id/edit", collectionHandler.ShowEdit)
		authorized.POST("/collections/:id/edit", collectionHandler.Update)
		authorized.POST("/collections/:id/delete", collectionHandler.Delete)

		authorized.POST("/sets", setHandler.Create)
		authorized.POST("/sets/:id/delete", setHandler.Delete)
		authorized.POST("/sets/:id/cards", setHandler.AddCard)
		authorized.POST("/sets/:id/comments", setHandler.AddComment)
		authorized.POST("/sets/:id/reviews", setHandler.AddReview)
	}

	registerAPIRoutes(r)
}

func registerAPIRoutes(r *gin.Engine) {
	g := r.Group("/api")
	g.Use(cors.AllowAll())
	g.Use(middleware.LoadAPIUser())

	// Open endpoints
	g.GET("/version", api.GetVersion)
	g.POST("/auth/token", api.CreateToken)
	g.POST("/users", api.CreateUser)
	g.GET("/reviews", api.ListReviews)
	g.GET("/reviews/:id", api.GetReview)

	auth := g.Group("")
	auth.Use(middleware.APIAuthRequired())
	{
		auth.GET("/collections", api.ListCollections)
		auth.GET("/collections/:id", api.GetCollection)
		auth.POST("/collections", api.CreateCollection)
		auth.PUT("/collections/:id", api.UpdateCollection)
		auth.DELETE("/collections/:id", api.DeleteCollection)

		auth.GET("/sets", api.ListSets)
		auth.GET("/sets/:id", api.GetSet)
		auth.POST("/sets", api.CreateSet)
		auth.PUT("/sets/:id", api.UpdateSet)
		auth.DELETE("/sets/:id", api.DeleteSet)

		auth.GET("/cards", api.ListCards)
		auth.GET("/cards/:id", api.GetCard)
		auth.POST("/cards", api.CreateCard)
		auth.PUT("/cards/:id", api.UpdateCard)
		auth.DELETE("/cards/:id", api.DeleteCard)

		auth.GET("/comments", api.ListComments)
		auth.GET("/comments/:id", api.GetComment)
		auth.POST("/comments", api.CreateComment)
		auth.PUT("/comments/:id", api.UpdateComment)
		auth.DELETE("/comments/:id", api.DeleteComment)

		auth.POST("/reviews", api.CreateReview)
		auth.PUT("/reviews/:id", api.UpdateReview)
		auth.DELETE("/reviews/:id", api.DeleteReview)

		auth.PUT("/users/:id", api.UpdateUser)
		auth.DELETE("/users/:id", api.DeleteUser)

		admin := auth.Group("/users")
		admin.Use(middleware.SuperuserRequired())
		{
			admin.GET("", api.ListUsers)
			admin.GET("/:id", api.GetUser)
		}
	}
}
