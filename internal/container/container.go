package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/locallore/server/internal/bus"
	"github.com/locallore/server/internal/cache"
	"github.com/locallore/server/internal/config"
	"github.com/locallore/server/internal/models"
	"github.com/locallore/server/internal/recommend"
	"github.com/locallore/server/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client

	Changes *bus.ChangeBus
	Gateway *recommend.Gateway

	UserService        *services.UserService
	EventService       *services.EventService
	InteractionService *services.InteractionService
	DiscoveryService   *services.DiscoveryService
	ActivityService    *services.ActivityService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	cloudinary *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	mongoRepo := models.MongodbNewRepo(mongoDBClient)

	changes := bus.New()
	mapCache := cache.New(nil)

	gateway := recommend.NewGateway(cfg.MLAPIURL, cfg.MLTimeout, supa, logger)
	aggregator := recommend.NewPreferenceAggregator(supa, supa, supa, logger)
	fallback := recommend.NewRuleBased(supa, nil, logger)
	assembler := recommend.NewAssembler(supa, aggregator, gateway, fallback, logger)

	userService := services.NewUserService(supa)
	eventService := services.NewEventService(supa, supa, supa, gateway, mapCache, changes, logger)
	interactionService := services.NewInteractionService(supa, supa, changes, logger)
	discoveryService := services.NewDiscoveryService(assembler, supa)
	activityService := services.NewActivityService(mongoRepo, changes, logger)

	return &Container{
		Logger:             logger,
		Cloudinary:         cloudinary,
		SupabaseClient:     supabaseClient,
		MongoDBClient:      mongoDBClient,
		Changes:            changes,
		Gateway:            gateway,
		UserService:        userService,
		EventService:       eventService,
		InteractionService: interactionService,
		DiscoveryService:   discoveryService,
		ActivityService:    activityService,
	}
}
