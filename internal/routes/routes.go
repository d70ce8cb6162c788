package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/handler"
	"github.com/pawmatch/pawmatch-backend/internal/middleware"
	"github.com/pawmatch/pawmatch-backend/pkg/jwt"
	"github.com/redis/go-redis/v9"
)

// swipesPerMinute caps swipes per user on top of the global limit
const swipesPerMinute = 60

// Handlers groups the HTTP handlers mounted by Setup
type Handlers struct {
	Feed   *handler.FeedHandler
	Match  *handler.MatchHandler
	Pet    *handler.PetHandler
	Social *handler.SocialHandler
	Post   *handler.PostHandler
	Story  *handler.StoryHandler
	WS     *handler.WSHandler
}

// Setup configures all API routes. redisClient may be nil, which disables
// the per-user swipe limit.
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager, redisClient *redis.Client) {
	auth := middleware.JWTAuth(jwtManager)
	api := router.Group("/api/v1", auth)

	api.GET("/feed", h.Feed.GetFeed)

	pets := api.Group("/pets")
	pets.POST("", h.Pet.CreatePet)
	pets.GET("/me", h.Pet.ListMyPets)
	pets.GET("/:id", h.Pet.GetPet)
	pets.PATCH("/:id", h.Pet.UpdatePet)
	pets.DELETE("/:id", h.Pet.DeletePet)

	matches := api.Group("/matches")
	matches.GET("/swipe/candidates", h.Match.GetSwipeCandidates)
	matches.POST("/swipe", middleware.RateLimitPerUser(redisClient, swipesPerMinute), h.Match.Swipe)
	matches.POST("", h.Match.RequestMatch)
	matches.GET("", h.Match.ListMatches)
	matches.GET("/:id", h.Match.GetMatch)
	matches.PATCH("/:id", h.Match.UpdateMatchStatus)

	users := api.Group("/users/:id")
	users.POST("/follow", h.Social.Follow)
	users.DELETE("/follow", h.Social.Unfollow)
	users.POST("/block", h.Social.Block)
	users.DELETE("/block", h.Social.Unblock)
	users.GET("/followers", h.Social.Followers)
	users.GET("/following", h.Social.Following)

	posts := api.Group("/posts")
	posts.POST("", h.Post.CreatePost)
	posts.GET("/:id", h.Post.GetPost)
	posts.PATCH("/:id", h.Post.UpdatePost)
	posts.DELETE("/:id", h.Post.DeletePost)
	posts.POST("/:id/sponsor", h.Post.SponsorPost)
	posts.POST("/:id/like", h.Post.ToggleLike)
	posts.POST("/:id/comments", h.Post.AddComment)
	posts.GET("/:id/comments", h.Post.ListComments)

	stories := api.Group("/stories")
	stories.POST("", h.Story.CreateStory)
	stories.GET("", h.Story.ListStories)
	stories.DELETE("/:id", h.Story.DeleteStory)

	router.GET("/ws/notifications", auth, h.WS.Connect)
}
